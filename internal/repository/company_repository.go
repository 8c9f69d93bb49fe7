package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Company struct {
	ID        string
	Name      string
	Logo      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CompanyUser struct {
	CompanyID string
	UserID    string
	Role      string
	JoinedAt  time.Time
}

type CompanyRepository interface {
	Create(ctx context.Context, company *Company) error
	FindByID(ctx context.Context, id string) (*Company, error)
	FindCompanyUser(ctx context.Context, companyID, userID string) (*CompanyUser, error)
	UpsertCompanyUser(ctx context.Context, cu *CompanyUser) error
	FindCompaniesForUser(ctx context.Context, userID string) ([]*Company, error)
}

type pgCompanyRepository struct {
	pool *pgxpool.Pool
}

func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &pgCompanyRepository{pool: pool}
}

func (r *pgCompanyRepository) Create(ctx context.Context, company *Company) error {
	query := `
		INSERT INTO companies (name, logo)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query, company.Name, company.Logo).
		Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
}

func (r *pgCompanyRepository) FindByID(ctx context.Context, id string) (*Company, error) {
	query := `SELECT id, name, logo, created_at, updated_at FROM companies WHERE id = $1`
	c := &Company{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Logo, &c.CreatedAt, &c.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgCompanyRepository) FindCompanyUser(ctx context.Context, companyID, userID string) (*CompanyUser, error) {
	query := `
		SELECT company_id, user_id, role, joined_at
		FROM company_users WHERE company_id = $1 AND user_id = $2
	`
	cu := &CompanyUser{}
	err := r.pool.QueryRow(ctx, query, companyID, userID).Scan(
		&cu.CompanyID, &cu.UserID, &cu.Role, &cu.JoinedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cu, nil
}

func (r *pgCompanyRepository) UpsertCompanyUser(ctx context.Context, cu *CompanyUser) error {
	query := `
		INSERT INTO company_users (company_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, user_id) DO UPDATE SET role = $3
		RETURNING joined_at
	`
	return r.pool.QueryRow(ctx, query, cu.CompanyID, cu.UserID, cu.Role).Scan(&cu.JoinedAt)
}

func (r *pgCompanyRepository) FindCompaniesForUser(ctx context.Context, userID string) ([]*Company, error) {
	query := `
		SELECT c.id, c.name, c.logo, c.created_at, c.updated_at
		FROM companies c
		JOIN company_users cu ON c.id = cu.company_id
		WHERE cu.user_id = $1
		ORDER BY cu.joined_at
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*Company
	for rows.Next() {
		c := &Company{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Logo, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return companies, nil
}
