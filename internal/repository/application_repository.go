package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Application struct {
	ID          string
	Name        string
	Description *string
	IsDefault   bool
	CreatedAt   time.Time
}

type CompanyApplication struct {
	CompanyID     string
	ApplicationID string
	AddedBy       *string
	CreatedAt     time.Time
	Application   *Application
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	ListDefaults(ctx context.Context) ([]*Application, error)
	UpsertCompanyApplication(ctx context.Context, ca *CompanyApplication) error
	ListCompanyApplications(ctx context.Context, companyID string) ([]*CompanyApplication, error)
	RemoveCompanyApplication(ctx context.Context, companyID, applicationID string) error
}

type pgApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &pgApplicationRepository{pool: pool}
}

func (r *pgApplicationRepository) Create(ctx context.Context, app *Application) error {
	query := `
		INSERT INTO applications (name, description, is_default)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, app.Name, app.Description, app.IsDefault).
		Scan(&app.ID, &app.CreatedAt)
}

func (r *pgApplicationRepository) ListDefaults(ctx context.Context) ([]*Application, error) {
	query := `
		SELECT id, name, description, is_default, created_at
		FROM applications WHERE is_default ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		a := &Application{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *pgApplicationRepository) UpsertCompanyApplication(ctx context.Context, ca *CompanyApplication) error {
	query := `
		INSERT INTO company_applications (company_id, application_id, added_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, application_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, ca.CompanyID, ca.ApplicationID, ca.AddedBy)
	return err
}

func (r *pgApplicationRepository) ListCompanyApplications(ctx context.Context, companyID string) ([]*CompanyApplication, error) {
	query := `
		SELECT ca.company_id, ca.application_id, ca.added_by, ca.created_at,
		       a.id, a.name, a.description, a.is_default
		FROM company_applications ca
		JOIN applications a ON ca.application_id = a.id
		WHERE ca.company_id = $1
		ORDER BY a.name
	`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*CompanyApplication
	for rows.Next() {
		ca := &CompanyApplication{Application: &Application{}}
		if err := rows.Scan(
			&ca.CompanyID, &ca.ApplicationID, &ca.AddedBy, &ca.CreatedAt,
			&ca.Application.ID, &ca.Application.Name, &ca.Application.Description, &ca.Application.IsDefault,
		); err != nil {
			return nil, err
		}
		result = append(result, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *pgApplicationRepository) RemoveCompanyApplication(ctx context.Context, companyID, applicationID string) error {
	query := `DELETE FROM company_applications WHERE company_id = $1 AND application_id = $2`
	_, err := r.pool.Exec(ctx, query, companyID, applicationID)
	return err
}
