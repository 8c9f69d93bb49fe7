package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4seer/Twake/internal/api/middleware"
	"github.com/4seer/Twake/internal/models"
	"github.com/4seer/Twake/internal/service"
	"github.com/4seer/Twake/internal/types"
)

// ============================================
// Company Handler
// ============================================

type CompanyHandler struct {
	companyService     service.CompanyService
	applicationService service.ApplicationService
}

func (h *CompanyHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), req.Name, req.Logo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	// The creator becomes the company owner.
	if err := h.companyService.SetCompanyUser(c.Request.Context(), company.ID, userID, types.CompanyRoleOwner); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	ec := types.ServerContext(company.ID, userID)
	if err := h.applicationService.InitWithDefaultApplications(c.Request.Context(), company.ID, ec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	c.JSON(http.StatusCreated, toCompanyResponse(company))
}

func (h *CompanyHandler) Get(c *gin.Context) {
	id := c.Param("companyId")

	company, err := h.companyService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch company"})
		return
	}

	c.JSON(http.StatusOK, toCompanyResponse(company))
}

func (h *CompanyHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	companies, err := h.companyService.GetAllForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch companies"})
		return
	}

	response := make([]models.CompanyResponse, len(companies))
	for i, co := range companies {
		response[i] = toCompanyResponse(co)
	}

	c.JSON(http.StatusOK, response)
}
