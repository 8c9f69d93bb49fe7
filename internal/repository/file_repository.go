package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Thumbnail struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Size   int64  `json:"size"`
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type File struct {
	ID               string
	CompanyID        string
	Name             string
	MimeType         *string
	Size             int64
	Thumbnails       []Thumbnail
	ThumbnailsStatus string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type FileRepository interface {
	Create(ctx context.Context, file *File) error
	FindByID(ctx context.Context, companyID, id string) (*File, error)
	Update(ctx context.Context, file *File) error
}

type pgFileRepository struct {
	pool *pgxpool.Pool
}

func NewFileRepository(pool *pgxpool.Pool) FileRepository {
	return &pgFileRepository{pool: pool}
}

func (r *pgFileRepository) Create(ctx context.Context, file *File) error {
	thumbs, err := json.Marshal(file.Thumbnails)
	if err != nil {
		return err
	}
	if file.Thumbnails == nil {
		thumbs = []byte("[]")
	}
	query := `
		INSERT INTO files (id, company_id, name, mime_type, size, thumbnails, thumbnails_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		file.ID, file.CompanyID, file.Name, file.MimeType, file.Size, thumbs, file.ThumbnailsStatus,
	).Scan(&file.CreatedAt, &file.UpdatedAt)
}

func (r *pgFileRepository) FindByID(ctx context.Context, companyID, id string) (*File, error) {
	query := `
		SELECT id, company_id, name, mime_type, size, thumbnails, thumbnails_status, created_at, updated_at
		FROM files WHERE company_id = $1 AND id = $2
	`
	f := &File{}
	var thumbs []byte
	err := r.pool.QueryRow(ctx, query, companyID, id).Scan(
		&f.ID, &f.CompanyID, &f.Name, &f.MimeType, &f.Size, &thumbs, &f.ThumbnailsStatus,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(thumbs, &f.Thumbnails); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *pgFileRepository) Update(ctx context.Context, file *File) error {
	thumbs, err := json.Marshal(file.Thumbnails)
	if err != nil {
		return err
	}
	query := `
		UPDATE files
		SET name = $3, thumbnails = $4, thumbnails_status = $5, updated_at = NOW()
		WHERE company_id = $1 AND id = $2
	`
	_, err = r.pool.Exec(ctx, query, file.CompanyID, file.ID, file.Name, thumbs, file.ThumbnailsStatus)
	return err
}
