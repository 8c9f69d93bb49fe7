package seed

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/types"
)

// SeedData provisions a demo tenant for local development.
func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	log.Println("[Seed] Creating initial data...")

	// ============================================
	// CREATE USERS
	// ============================================
	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	alice := &repository.User{
		Email:          "alice@acme.test",
		EmailCanonical: "alice@acme.test",
		Password:       string(password),
		Name:           "Alice Martin",
	}
	repos.UserRepo.Create(ctx, alice)

	bob := &repository.User{
		Email:          "bob@acme.test",
		EmailCanonical: "bob@acme.test",
		Password:       string(password),
		Name:           "Bob Durand",
	}
	repos.UserRepo.Create(ctx, bob)

	guest := &repository.User{
		Email:          "guest@external.test",
		EmailCanonical: "guest@external.test",
		Password:       string(password),
		Name:           "External Guest",
	}
	repos.UserRepo.Create(ctx, guest)

	log.Printf("[Seed] Created 3 users: Alice (admin), Bob (member), Guest")

	// ============================================
	// CREATE COMPANY AND ROLES
	// ============================================
	company := &repository.Company{Name: "Acme"}
	repos.CompanyRepo.Create(ctx, company)

	repos.CompanyRepo.UpsertCompanyUser(ctx, &repository.CompanyUser{
		CompanyID: company.ID,
		UserID:    alice.ID,
		Role:      types.CompanyRoleAdmin,
	})
	repos.CompanyRepo.UpsertCompanyUser(ctx, &repository.CompanyUser{
		CompanyID: company.ID,
		UserID:    bob.ID,
		Role:      types.CompanyRoleMember,
	})
	repos.CompanyRepo.UpsertCompanyUser(ctx, &repository.CompanyUser{
		CompanyID: company.ID,
		UserID:    guest.ID,
		Role:      types.CompanyRoleGuest,
	})

	log.Printf("[Seed] Created company %s with 3 members", company.Name)

	// ============================================
	// CREATE DEFAULT APPLICATIONS
	// ============================================
	for _, name := range []string{"Messages", "Drive", "Calendar"} {
		app := &repository.Application{
			Name:      name,
			IsDefault: true,
		}
		repos.ApplicationRepo.Create(ctx, app)
	}

	log.Println("[Seed] Created default applications")
	log.Println("[Seed] Done. The first workspace access will provision the default Home workspace.")
}
