package models

import "time"

// ============================================
// Request Models
// ============================================

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

type CreateCompanyRequest struct {
	Name string  `json:"name" binding:"required"`
	Logo *string `json:"logo,omitempty"`
}

type CreateWorkspaceRequest struct {
	Name string  `json:"name" binding:"required"`
	Logo *string `json:"logo,omitempty"`
}

type UpdateWorkspaceRequest struct {
	Name       *string `json:"name,omitempty"`
	Logo       *string `json:"logo,omitempty"`
	IsArchived *bool   `json:"is_archived,omitempty"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role,omitempty"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type AddPendingUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Role        string `json:"role,omitempty"`
	CompanyRole string `json:"company_role,omitempty"`
}

type CreateChannelRequest struct {
	Name string `json:"name" binding:"required"`
}

type PostMessageRequest struct {
	Body     string  `json:"body" binding:"required"`
	ThreadID *string `json:"thread_id,omitempty"`
}

type CreateFileRequest struct {
	Name     string  `json:"name" binding:"required"`
	MimeType *string `json:"mime_type,omitempty"`
	Size     int64   `json:"size"`
}

// ============================================
// Response Models
// ============================================

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Logo      *string   `json:"logo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type WorkspaceResponse struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	Name       string    `json:"name"`
	Logo       *string   `json:"logo,omitempty"`
	IsDefault  bool      `json:"is_default"`
	IsArchived bool      `json:"is_archived"`
	DateAdded  time.Time `json:"date_added"`
}

type WorkspaceListResponse struct {
	Workspaces    []WorkspaceResponse `json:"workspaces"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

type WorkspaceMemberResponse struct {
	WorkspaceID string        `json:"workspace_id"`
	UserID      string        `json:"user_id"`
	Role        string        `json:"role"`
	JoinedAt    time.Time     `json:"joined_at"`
	User        *UserResponse `json:"user,omitempty"`
}

type WorkspaceMemberListResponse struct {
	Members       []WorkspaceMemberResponse `json:"members"`
	NextPageToken string                    `json:"next_page_token,omitempty"`
}

type PendingUserResponse struct {
	WorkspaceID string    `json:"workspace_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CompanyRole string    `json:"company_role"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberCountResponse struct {
	WorkspaceID string `json:"workspace_id"`
	Count       int64  `json:"count"`
}

type ApplicationResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsDefault   bool    `json:"is_default"`
}

type ChannelResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	OwnerID     *string   `json:"owner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	ThreadID  *string   `json:"thread_id,omitempty"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageListResponse struct {
	Messages      []MessageResponse `json:"messages"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

type ThumbnailResponse struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Size   int64  `json:"size"`
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type FileResponse struct {
	ID               string              `json:"id"`
	CompanyID        string              `json:"company_id"`
	Name             string              `json:"name"`
	MimeType         *string             `json:"mime_type,omitempty"`
	Size             int64               `json:"size"`
	Thumbnails       []ThumbnailResponse `json:"thumbnails"`
	ThumbnailsStatus string              `json:"thumbnails_status"`
	CreatedAt        time.Time           `json:"created_at"`
}
