package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/4seer/Twake/internal/types"
)

type Channel struct {
	ID          string
	CompanyID   string
	WorkspaceID string
	Name        string
	OwnerID     *string
	CreatedAt   time.Time
}

type Message struct {
	ID        string
	ChannelID string
	ThreadID  *string
	UserID    string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MessageRepository interface {
	CreateChannel(ctx context.Context, channel *Channel) error
	FindChannel(ctx context.Context, id string) (*Channel, error)
	ListChannels(ctx context.Context, workspaceID string) ([]*Channel, error)
	RemoveChannel(ctx context.Context, id string) error

	CreateMessage(ctx context.Context, message *Message) error
	FindMessage(ctx context.Context, id string) (*Message, error)
	ListMessages(ctx context.Context, channelID string, page types.Pagination) ([]*Message, string, error)
	ListThread(ctx context.Context, threadID string) ([]*Message, error)
}

type pgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &pgMessageRepository{pool: pool}
}

func (r *pgMessageRepository) CreateChannel(ctx context.Context, channel *Channel) error {
	query := `
		INSERT INTO channels (company_id, workspace_id, name, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		channel.CompanyID, channel.WorkspaceID, channel.Name, channel.OwnerID,
	).Scan(&channel.ID, &channel.CreatedAt)
}

func (r *pgMessageRepository) FindChannel(ctx context.Context, id string) (*Channel, error) {
	query := `SELECT id, company_id, workspace_id, name, owner_id, created_at FROM channels WHERE id = $1`
	ch := &Channel{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ch.ID, &ch.CompanyID, &ch.WorkspaceID, &ch.Name, &ch.OwnerID, &ch.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *pgMessageRepository) ListChannels(ctx context.Context, workspaceID string) ([]*Channel, error) {
	query := `
		SELECT id, company_id, workspace_id, name, owner_id, created_at
		FROM channels WHERE workspace_id = $1 ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []*Channel
	for rows.Next() {
		ch := &Channel{}
		if err := rows.Scan(&ch.ID, &ch.CompanyID, &ch.WorkspaceID, &ch.Name, &ch.OwnerID, &ch.CreatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *pgMessageRepository) RemoveChannel(ctx context.Context, id string) error {
	query := `DELETE FROM channels WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *pgMessageRepository) CreateMessage(ctx context.Context, message *Message) error {
	query := `
		INSERT INTO messages (channel_id, thread_id, user_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		message.ChannelID, message.ThreadID, message.UserID, message.Body,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)
}

func (r *pgMessageRepository) FindMessage(ctx context.Context, id string) (*Message, error) {
	query := `SELECT id, channel_id, thread_id, user_id, body, created_at, updated_at FROM messages WHERE id = $1`
	m := &Message{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.ChannelID, &m.ThreadID, &m.UserID, &m.Body, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMessageRepository) ListMessages(ctx context.Context, channelID string, page types.Pagination) ([]*Message, string, error) {
	query := `
		SELECT id, channel_id, thread_id, user_id, body, created_at, updated_at
		FROM messages WHERE channel_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, channelID, page.PageLimit(), page.Offset())
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.ThreadID, &m.UserID, &m.Body, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, "", err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	return messages, page.NextToken(len(messages)), nil
}

func (r *pgMessageRepository) ListThread(ctx context.Context, threadID string) ([]*Message, error) {
	query := `
		SELECT id, channel_id, thread_id, user_id, body, created_at, updated_at
		FROM messages WHERE thread_id = $1 ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.ThreadID, &m.UserID, &m.Body, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
