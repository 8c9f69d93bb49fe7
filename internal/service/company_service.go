package service

import (
	"context"

	"github.com/4seer/Twake/internal/repository"
)

// ============================================
// Company Service
// ============================================

type CompanyService interface {
	Create(ctx context.Context, name string, logo *string) (*repository.Company, error)
	GetByID(ctx context.Context, id string) (*repository.Company, error)
	GetCompanyUser(ctx context.Context, companyID, userID string) (*repository.CompanyUser, error)
	SetCompanyUser(ctx context.Context, companyID, userID, role string) error
	GetAllForUser(ctx context.Context, userID string) ([]*repository.Company, error)
}

type companyService struct {
	companyRepo repository.CompanyRepository
}

func NewCompanyService(companyRepo repository.CompanyRepository) CompanyService {
	return &companyService{companyRepo: companyRepo}
}

func (s *companyService) Create(ctx context.Context, name string, logo *string) (*repository.Company, error) {
	company := &repository.Company{Name: name, Logo: logo}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *companyService) GetByID(ctx context.Context, id string) (*repository.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrNotFound
	}
	return company, nil
}

func (s *companyService) GetCompanyUser(ctx context.Context, companyID, userID string) (*repository.CompanyUser, error) {
	return s.companyRepo.FindCompanyUser(ctx, companyID, userID)
}

func (s *companyService) SetCompanyUser(ctx context.Context, companyID, userID, role string) error {
	return s.companyRepo.UpsertCompanyUser(ctx, &repository.CompanyUser{
		CompanyID: companyID,
		UserID:    userID,
		Role:      role,
	})
}

func (s *companyService) GetAllForUser(ctx context.Context, userID string) ([]*repository.Company, error) {
	return s.companyRepo.FindCompaniesForUser(ctx, userID)
}
