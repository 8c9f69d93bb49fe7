package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type User struct {
	ID             string
	Email          string
	EmailCanonical string
	Password       string
	Name           string
	Avatar         *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserCacheEntry is one row of the per-user company/workspace index kept in
// sync on every membership change.
type UserCacheEntry struct {
	UserID      string
	CompanyID   string
	WorkspaceID string
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	AddCacheEntry(ctx context.Context, entry *UserCacheEntry) error
	FindCacheEntries(ctx context.Context, userID string) ([]*UserCacheEntry, error)
}

type pgUserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepository{pool: pool}
}

func (r *pgUserRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, email_canonical, password, name, avatar)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		user.Email, user.EmailCanonical, user.Password, user.Name, user.Avatar,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, email_canonical, password, name, avatar, created_at, updated_at
		FROM users WHERE id = $1
	`
	u := &User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.EmailCanonical, &u.Password, &u.Name, &u.Avatar, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, email_canonical, password, name, avatar, created_at, updated_at
		FROM users WHERE email = $1 OR email_canonical = $1
	`
	u := &User{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.EmailCanonical, &u.Password, &u.Name, &u.Avatar, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *pgUserRepository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET email = $2, email_canonical = $3, name = $4, avatar = $5, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.EmailCanonical, user.Name, user.Avatar)
	return err
}

func (r *pgUserRepository) AddCacheEntry(ctx context.Context, entry *UserCacheEntry) error {
	query := `
		INSERT INTO user_cache_entries (user_id, company_id, workspace_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, company_id, workspace_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, entry.UserID, entry.CompanyID, entry.WorkspaceID)
	return err
}

func (r *pgUserRepository) FindCacheEntries(ctx context.Context, userID string) ([]*UserCacheEntry, error) {
	query := `SELECT user_id, company_id, workspace_id FROM user_cache_entries WHERE user_id = $1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*UserCacheEntry
	for rows.Next() {
		e := &UserCacheEntry{}
		if err := rows.Scan(&e.UserID, &e.CompanyID, &e.WorkspaceID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
