package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/4seer/Twake/internal/models"
	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/service"
	"github.com/4seer/Twake/internal/types"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth        *AuthHandler
	User        *UserHandler
	Company     *CompanyHandler
	Workspace   *WorkspaceHandler
	Application *ApplicationHandler
	Message     *MessageHandler
	File        *FileHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:        &AuthHandler{authService: services.Auth},
		User:        &UserHandler{userService: services.User, workspaceService: services.Workspace},
		Company:     &CompanyHandler{companyService: services.Company, applicationService: services.Application},
		Workspace:   &WorkspaceHandler{workspaceService: services.Workspace},
		Application: &ApplicationHandler{applicationService: services.Application},
		Message:     &MessageHandler{messageService: services.Message},
		File:        &FileHandler{fileService: services.File},
	}
}

// pageFromQuery builds a page request from ?page_token and ?limit.
func pageFromQuery(c *gin.Context) types.Pagination {
	page := types.Pagination{PageToken: c.Query("page_token")}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			page.Limit = n
		}
	}
	return page
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

func toCompanyResponse(co *repository.Company) models.CompanyResponse {
	return models.CompanyResponse{
		ID:        co.ID,
		Name:      co.Name,
		Logo:      co.Logo,
		CreatedAt: co.CreatedAt,
	}
}

func toWorkspaceResponse(ws *repository.Workspace) models.WorkspaceResponse {
	return models.WorkspaceResponse{
		ID:         ws.ID,
		CompanyID:  ws.CompanyID,
		Name:       ws.Name,
		Logo:       ws.Logo,
		IsDefault:  ws.IsDefault,
		IsArchived: ws.IsArchived,
		DateAdded:  ws.DateAdded,
	}
}

func toWorkspaceMemberResponse(wu *repository.WorkspaceUser) models.WorkspaceMemberResponse {
	resp := models.WorkspaceMemberResponse{
		WorkspaceID: wu.WorkspaceID,
		UserID:      wu.UserID,
		Role:        wu.Role,
		JoinedAt:    wu.JoinedAt,
	}
	if wu.User != nil {
		user := toUserResponse(wu.User)
		resp.User = &user
	}
	return resp
}

func toPendingUserResponse(p *repository.WorkspacePendingUser) models.PendingUserResponse {
	return models.PendingUserResponse{
		WorkspaceID: p.WorkspaceID,
		Email:       p.Email,
		Role:        p.Role,
		CompanyRole: p.CompanyRole,
		CreatedAt:   p.CreatedAt,
	}
}

func toApplicationResponse(a *repository.Application) models.ApplicationResponse {
	return models.ApplicationResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		IsDefault:   a.IsDefault,
	}
}

func toChannelResponse(ch *repository.Channel) models.ChannelResponse {
	return models.ChannelResponse{
		ID:          ch.ID,
		CompanyID:   ch.CompanyID,
		WorkspaceID: ch.WorkspaceID,
		Name:        ch.Name,
		OwnerID:     ch.OwnerID,
		CreatedAt:   ch.CreatedAt,
	}
}

func toMessageResponse(m *repository.Message) models.MessageResponse {
	return models.MessageResponse{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		ThreadID:  m.ThreadID,
		UserID:    m.UserID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func toFileResponse(f *repository.File) models.FileResponse {
	thumbnails := make([]models.ThumbnailResponse, len(f.Thumbnails))
	for i, t := range f.Thumbnails {
		thumbnails[i] = models.ThumbnailResponse{
			Index:  t.Index,
			ID:     t.ID,
			Size:   t.Size,
			Type:   t.Type,
			Width:  t.Width,
			Height: t.Height,
		}
	}
	return models.FileResponse{
		ID:               f.ID,
		CompanyID:        f.CompanyID,
		Name:             f.Name,
		MimeType:         f.MimeType,
		Size:             f.Size,
		Thumbnails:       thumbnails,
		ThumbnailsStatus: f.ThumbnailsStatus,
		CreatedAt:        f.CreatedAt,
	}
}
