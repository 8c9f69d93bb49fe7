package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/4seer/Twake/internal/config"
	"github.com/4seer/Twake/internal/service"
)

var _ = Describe("AuthService", func() {
	var (
		svc      service.AuthService
		userRepo *mockUserRepo
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		userRepo = newMockUserRepo()
		svc = service.NewAuthService(&config.Config{
			JWTSecret: "test-secret",
			JWTExpiry: 24,
		}, userRepo)
	})

	Describe("Register", func() {
		It("should create the user and issue a token", func() {
			user, token, err := svc.Register(ctx, "Alice", "Alice@Acme.test", "password123")

			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).NotTo(BeEmpty())
			Expect(user.EmailCanonical).To(Equal("alice@acme.test"))
			Expect(user.Password).NotTo(Equal("password123"))
			Expect(token).NotTo(BeEmpty())
		})

		It("should reject a duplicate email regardless of case", func() {
			_, _, err := svc.Register(ctx, "Alice", "alice@acme.test", "password123")
			Expect(err).NotTo(HaveOccurred())

			_, _, err = svc.Register(ctx, "Alice Again", "ALICE@acme.test", "password456")
			Expect(err).To(MatchError(service.ErrUserExists))
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			_, _, err := svc.Register(ctx, "Alice", "alice@acme.test", "password123")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should authenticate with the right password", func() {
			user, token, err := svc.Login(ctx, "alice@acme.test", "password123")

			Expect(err).NotTo(HaveOccurred())
			Expect(user.Email).To(Equal("alice@acme.test"))
			Expect(token).NotTo(BeEmpty())
		})

		It("should reject a wrong password", func() {
			_, _, err := svc.Login(ctx, "alice@acme.test", "nope")
			Expect(err).To(MatchError(service.ErrInvalidCredentials))
		})

		It("should reject an unknown email", func() {
			_, _, err := svc.Login(ctx, "ghost@acme.test", "password123")
			Expect(err).To(MatchError(service.ErrInvalidCredentials))
		})
	})

	Describe("ValidateToken", func() {
		It("should round-trip the user ID through the token", func() {
			user, token, err := svc.Register(ctx, "Alice", "alice@acme.test", "password123")
			Expect(err).NotTo(HaveOccurred())

			parsed, err := svc.ValidateToken(token)
			Expect(err).NotTo(HaveOccurred())

			userID, err := svc.GetUserIDFromToken(parsed)
			Expect(err).NotTo(HaveOccurred())
			Expect(userID).To(Equal(user.ID))
		})

		It("should reject a tampered token", func() {
			_, token, err := svc.Register(ctx, "Alice", "alice@acme.test", "password123")
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.ValidateToken(token + "x")
			Expect(err).To(HaveOccurred())
		})
	})
})
