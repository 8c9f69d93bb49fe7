package service

import (
	"context"

	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/types"
)

// ============================================
// Application Service
// ============================================

type ApplicationService interface {
	ListDefaults(ctx context.Context) ([]*repository.Application, error)
	// InitWithDefaultApplications provisions every default marketplace
	// application for a company. Idempotent.
	InitWithDefaultApplications(ctx context.Context, companyID string, ec types.ExecutionContext) error
	ListForCompany(ctx context.Context, companyID string) ([]*repository.CompanyApplication, error)
	RemoveFromCompany(ctx context.Context, companyID, applicationID string) error
}

type applicationService struct {
	applicationRepo repository.ApplicationRepository
}

func NewApplicationService(applicationRepo repository.ApplicationRepository) ApplicationService {
	return &applicationService{applicationRepo: applicationRepo}
}

func (s *applicationService) ListDefaults(ctx context.Context) ([]*repository.Application, error) {
	return s.applicationRepo.ListDefaults(ctx)
}

func (s *applicationService) InitWithDefaultApplications(ctx context.Context, companyID string, ec types.ExecutionContext) error {
	defaults, err := s.applicationRepo.ListDefaults(ctx)
	if err != nil {
		return err
	}

	for _, app := range defaults {
		ca := &repository.CompanyApplication{
			CompanyID:     companyID,
			ApplicationID: app.ID,
		}
		if ec.User.ID != "" {
			addedBy := ec.User.ID
			ca.AddedBy = &addedBy
		}
		if err := s.applicationRepo.UpsertCompanyApplication(ctx, ca); err != nil {
			return err
		}
	}
	return nil
}

func (s *applicationService) ListForCompany(ctx context.Context, companyID string) ([]*repository.CompanyApplication, error) {
	return s.applicationRepo.ListCompanyApplications(ctx, companyID)
}

func (s *applicationService) RemoveFromCompany(ctx context.Context, companyID, applicationID string) error {
	return s.applicationRepo.RemoveCompanyApplication(ctx, companyID, applicationID)
}
