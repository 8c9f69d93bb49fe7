package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/4seer/Twake/internal/types"
)

type Workspace struct {
	ID         string
	CompanyID  string
	Name       string
	Logo       *string
	IsDefault  bool
	IsArchived bool
	IsDeleted  bool
	DateAdded  time.Time
}

type WorkspaceUser struct {
	WorkspaceID string
	UserID      string
	Role        string
	JoinedAt    time.Time
	User        *User
}

type WorkspacePendingUser struct {
	WorkspaceID string
	Email       string
	Role        string
	CompanyRole string
	CreatedAt   time.Time
}

type WorkspaceRepository interface {
	Save(ctx context.Context, workspace *Workspace) error
	FindByID(ctx context.Context, companyID, id string) (*Workspace, error)
	FindByWorkspaceID(ctx context.Context, id string) (*Workspace, error)
	List(ctx context.Context, companyID string, page types.Pagination) ([]*Workspace, string, error)
	Remove(ctx context.Context, companyID, id string) error

	UpsertUser(ctx context.Context, wu *WorkspaceUser) error
	FindUser(ctx context.Context, workspaceID, userID string) (*WorkspaceUser, error)
	FindUsers(ctx context.Context, workspaceID string, page types.Pagination) ([]*WorkspaceUser, string, error)
	RemoveUser(ctx context.Context, workspaceID, userID string) error
	CountUsers(ctx context.Context, workspaceID string) (int64, error)

	CreatePendingUser(ctx context.Context, pending *WorkspacePendingUser) error
	FindPendingUser(ctx context.Context, workspaceID, email string) (*WorkspacePendingUser, error)
	FindPendingUsers(ctx context.Context, workspaceID string) ([]*WorkspacePendingUser, error)
	RemovePendingUser(ctx context.Context, workspaceID, email string) error
	RemovePendingUsersBefore(ctx context.Context, cutoff time.Time) (int64, error)
	AllWorkspaceIDs(ctx context.Context) ([]string, error)
}

type pgWorkspaceRepository struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepository(pool *pgxpool.Pool) WorkspaceRepository {
	return &pgWorkspaceRepository{pool: pool}
}

func (r *pgWorkspaceRepository) Save(ctx context.Context, workspace *Workspace) error {
	query := `
		INSERT INTO workspaces (id, company_id, name, logo, is_default, is_archived, is_deleted, date_added)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id, id) DO UPDATE
		SET name = $3, logo = $4, is_default = $5, is_archived = $6, is_deleted = $7
	`
	_, err := r.pool.Exec(ctx, query,
		workspace.ID, workspace.CompanyID, workspace.Name, workspace.Logo,
		workspace.IsDefault, workspace.IsArchived, workspace.IsDeleted, workspace.DateAdded,
	)
	return err
}

func (r *pgWorkspaceRepository) FindByID(ctx context.Context, companyID, id string) (*Workspace, error) {
	query := `
		SELECT id, company_id, name, logo, is_default, is_archived, is_deleted, date_added
		FROM workspaces WHERE company_id = $1 AND id = $2
	`
	ws := &Workspace{}
	err := r.pool.QueryRow(ctx, query, companyID, id).Scan(
		&ws.ID, &ws.CompanyID, &ws.Name, &ws.Logo,
		&ws.IsDefault, &ws.IsArchived, &ws.IsDeleted, &ws.DateAdded,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// FindByWorkspaceID looks a workspace up without knowing its company.
// Workspace IDs are UUIDs, so at most one row matches in practice.
func (r *pgWorkspaceRepository) FindByWorkspaceID(ctx context.Context, id string) (*Workspace, error) {
	query := `
		SELECT id, company_id, name, logo, is_default, is_archived, is_deleted, date_added
		FROM workspaces WHERE id = $1
		LIMIT 1
	`
	ws := &Workspace{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ws.ID, &ws.CompanyID, &ws.Name, &ws.Logo,
		&ws.IsDefault, &ws.IsArchived, &ws.IsDeleted, &ws.DateAdded,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *pgWorkspaceRepository) List(ctx context.Context, companyID string, page types.Pagination) ([]*Workspace, string, error) {
	query := `
		SELECT id, company_id, name, logo, is_default, is_archived, is_deleted, date_added
		FROM workspaces WHERE company_id = $1
		ORDER BY date_added, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, companyID, page.PageLimit(), page.Offset())
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var workspaces []*Workspace
	for rows.Next() {
		ws := &Workspace{}
		if err := rows.Scan(
			&ws.ID, &ws.CompanyID, &ws.Name, &ws.Logo,
			&ws.IsDefault, &ws.IsArchived, &ws.IsDeleted, &ws.DateAdded,
		); err != nil {
			return nil, "", err
		}
		workspaces = append(workspaces, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	return workspaces, page.NextToken(len(workspaces)), nil
}

func (r *pgWorkspaceRepository) Remove(ctx context.Context, companyID, id string) error {
	query := `DELETE FROM workspaces WHERE company_id = $1 AND id = $2`
	_, err := r.pool.Exec(ctx, query, companyID, id)
	return err
}

func (r *pgWorkspaceRepository) UpsertUser(ctx context.Context, wu *WorkspaceUser) error {
	query := `
		INSERT INTO workspace_users (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (workspace_id, user_id) DO UPDATE SET role = $3
		RETURNING joined_at
	`
	return r.pool.QueryRow(ctx, query, wu.WorkspaceID, wu.UserID, wu.Role).Scan(&wu.JoinedAt)
}

func (r *pgWorkspaceRepository) FindUser(ctx context.Context, workspaceID, userID string) (*WorkspaceUser, error) {
	query := `
		SELECT workspace_id, user_id, role, joined_at
		FROM workspace_users WHERE workspace_id = $1 AND user_id = $2
	`
	wu := &WorkspaceUser{}
	err := r.pool.QueryRow(ctx, query, workspaceID, userID).Scan(
		&wu.WorkspaceID, &wu.UserID, &wu.Role, &wu.JoinedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wu, nil
}

func (r *pgWorkspaceRepository) FindUsers(ctx context.Context, workspaceID string, page types.Pagination) ([]*WorkspaceUser, string, error) {
	query := `
		SELECT wu.workspace_id, wu.user_id, wu.role, wu.joined_at,
		       u.id, u.email, u.name, u.avatar
		FROM workspace_users wu
		JOIN users u ON wu.user_id = u.id
		WHERE wu.workspace_id = $1
		ORDER BY wu.joined_at, wu.user_id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, workspaceID, page.PageLimit(), page.Offset())
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var users []*WorkspaceUser
	for rows.Next() {
		wu := &WorkspaceUser{User: &User{}}
		if err := rows.Scan(
			&wu.WorkspaceID, &wu.UserID, &wu.Role, &wu.JoinedAt,
			&wu.User.ID, &wu.User.Email, &wu.User.Name, &wu.User.Avatar,
		); err != nil {
			return nil, "", err
		}
		users = append(users, wu)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	return users, page.NextToken(len(users)), nil
}

func (r *pgWorkspaceRepository) RemoveUser(ctx context.Context, workspaceID, userID string) error {
	query := `DELETE FROM workspace_users WHERE workspace_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, workspaceID, userID)
	return err
}

func (r *pgWorkspaceRepository) CountUsers(ctx context.Context, workspaceID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM workspace_users WHERE workspace_id = $1`
	err := r.pool.QueryRow(ctx, query, workspaceID).Scan(&count)
	return count, err
}

func (r *pgWorkspaceRepository) CreatePendingUser(ctx context.Context, pending *WorkspacePendingUser) error {
	query := `
		INSERT INTO workspace_pending_users (workspace_id, email, role, company_role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	return r.pool.QueryRow(ctx, query,
		pending.WorkspaceID, pending.Email, pending.Role, pending.CompanyRole,
	).Scan(&pending.CreatedAt)
}

func (r *pgWorkspaceRepository) FindPendingUser(ctx context.Context, workspaceID, email string) (*WorkspacePendingUser, error) {
	query := `
		SELECT workspace_id, email, role, company_role, created_at
		FROM workspace_pending_users WHERE workspace_id = $1 AND email = $2
	`
	p := &WorkspacePendingUser{}
	err := r.pool.QueryRow(ctx, query, workspaceID, email).Scan(
		&p.WorkspaceID, &p.Email, &p.Role, &p.CompanyRole, &p.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgWorkspaceRepository) FindPendingUsers(ctx context.Context, workspaceID string) ([]*WorkspacePendingUser, error) {
	query := `
		SELECT workspace_id, email, role, company_role, created_at
		FROM workspace_pending_users WHERE workspace_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []*WorkspacePendingUser
	for rows.Next() {
		p := &WorkspacePendingUser{}
		if err := rows.Scan(&p.WorkspaceID, &p.Email, &p.Role, &p.CompanyRole, &p.CreatedAt); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *pgWorkspaceRepository) RemovePendingUser(ctx context.Context, workspaceID, email string) error {
	query := `DELETE FROM workspace_pending_users WHERE workspace_id = $1 AND email = $2`
	_, err := r.pool.Exec(ctx, query, workspaceID, email)
	return err
}

func (r *pgWorkspaceRepository) RemovePendingUsersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM workspace_pending_users WHERE created_at < $1`
	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgWorkspaceRepository) AllWorkspaceIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM workspaces WHERE NOT is_deleted`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
