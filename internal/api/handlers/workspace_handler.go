package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4seer/Twake/internal/api/middleware"
	"github.com/4seer/Twake/internal/models"
	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/service"
	"github.com/4seer/Twake/internal/types"
)

// ============================================
// Workspace Handler
// ============================================

type WorkspaceHandler struct {
	workspaceService service.WorkspaceService
}

func executionContext(c *gin.Context, companyID string) types.ExecutionContext {
	return types.ExecutionContext{
		CompanyID: companyID,
		User:      types.ContextUser{ID: middleware.GetUserID(c)},
	}
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	companyID := c.Param("companyId")
	ec := executionContext(c, companyID)

	workspaces, nextToken, err := h.workspaceService.List(c.Request.Context(), pageFromQuery(c), ec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch workspaces"})
		return
	}

	response := models.WorkspaceListResponse{
		Workspaces:    make([]models.WorkspaceResponse, len(workspaces)),
		NextPageToken: nextToken,
	}
	for i, ws := range workspaces {
		response.Workspaces[i] = toWorkspaceResponse(ws)
	}

	c.JSON(http.StatusOK, response)
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	companyID := c.Param("companyId")
	if _, ok := middleware.RequireUserID(c); !ok {
		return
	}

	var req models.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workspace := &repository.Workspace{
		CompanyID: companyID,
		Name:      req.Name,
		Logo:      req.Logo,
	}

	created, err := h.workspaceService.Create(c.Request.Context(), workspace, executionContext(c, companyID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}

	c.JSON(http.StatusCreated, toWorkspaceResponse(created))
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	pk := service.WorkspacePrimaryKey{
		CompanyID: c.Param("companyId"),
		ID:        c.Param("id"),
	}

	workspace, err := h.workspaceService.Get(c.Request.Context(), pk)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch workspace"})
		return
	}
	if workspace == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return
	}

	c.JSON(http.StatusOK, toWorkspaceResponse(workspace))
}

func (h *WorkspaceHandler) Update(c *gin.Context) {
	pk := service.WorkspacePrimaryKey{
		CompanyID: c.Param("companyId"),
		ID:        c.Param("id"),
	}

	var req models.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := &repository.Workspace{ID: pk.ID, CompanyID: pk.CompanyID}
	if req.Name != nil {
		item.Name = *req.Name
	}
	item.Logo = req.Logo
	if req.IsArchived != nil {
		item.IsArchived = *req.IsArchived
	}

	err := h.workspaceService.Update(c.Request.Context(), pk, item, executionContext(c, pk.CompanyID))
	if err != nil {
		if errors.Is(err, service.ErrUnimplemented) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "Workspace update is not implemented"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update workspace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workspace updated"})
}

func (h *WorkspaceHandler) Delete(c *gin.Context) {
	companyID := c.Param("companyId")
	id := c.Param("id")

	if err := h.workspaceService.Delete(c.Request.Context(), id, executionContext(c, companyID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete workspace"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// ============================================
// Members
// ============================================

func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	id := c.Param("id")

	members, nextToken, err := h.workspaceService.GetUsers(c.Request.Context(), id, pageFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	response := models.WorkspaceMemberListResponse{
		Members:       make([]models.WorkspaceMemberResponse, len(members)),
		NextPageToken: nextToken,
	}
	for i, m := range members {
		response.Members[i] = toWorkspaceMemberResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

func (h *WorkspaceHandler) GetMember(c *gin.Context) {
	id := c.Param("id")
	userID := c.Param("userId")

	member, err := h.workspaceService.GetUser(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch member"})
		return
	}
	if member == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	c.JSON(http.StatusOK, toWorkspaceMemberResponse(member))
}

func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	pk := service.WorkspacePrimaryKey{
		CompanyID: c.Param("companyId"),
		ID:        c.Param("id"),
	}

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = types.RoleMember
	}
	if !types.IsValidWorkspaceRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	if err := h.workspaceService.AddUser(c.Request.Context(), pk, req.UserID, role); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Member added successfully"})
}

func (h *WorkspaceHandler) UpdateMemberRole(c *gin.Context) {
	id := c.Param("id")
	userID := c.Param("userId")

	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !types.IsValidWorkspaceRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	if err := h.workspaceService.UpdateUserRole(c.Request.Context(), id, userID, req.Role); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member role updated"})
}

func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	id := c.Param("id")
	userID := c.Param("userId")

	if err := h.workspaceService.RemoveUser(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *WorkspaceHandler) MemberCount(c *gin.Context) {
	id := c.Param("id")

	count, err := h.workspaceService.GetUsersCount(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count members"})
		return
	}

	c.JSON(http.StatusOK, models.MemberCountResponse{WorkspaceID: id, Count: count})
}

// ============================================
// Pending Users
// ============================================

func (h *WorkspaceHandler) ListPendingUsers(c *gin.Context) {
	id := c.Param("id")

	pending, err := h.workspaceService.GetPendingUsers(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending users"})
		return
	}

	response := make([]models.PendingUserResponse, len(pending))
	for i, p := range pending {
		response[i] = toPendingUserResponse(p)
	}

	c.JSON(http.StatusOK, response)
}

func (h *WorkspaceHandler) AddPendingUser(c *gin.Context) {
	id := c.Param("id")

	var req models.AddPendingUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = types.RoleMember
	}
	companyRole := req.CompanyRole
	if companyRole == "" {
		companyRole = types.CompanyRoleMember
	}

	if err := h.workspaceService.AddPendingUser(c.Request.Context(), id, req.Email, role, companyRole); err != nil {
		if errors.Is(err, service.ErrPendingUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is pending already"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invite user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Invitation created"})
}

func (h *WorkspaceHandler) RemovePendingUser(c *gin.Context) {
	id := c.Param("id")
	email := c.Param("email")

	if err := h.workspaceService.RemovePendingUser(c.Request.Context(), id, email); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pending user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove pending user"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
