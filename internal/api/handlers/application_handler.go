package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4seer/Twake/internal/models"
	"github.com/4seer/Twake/internal/service"
)

// ============================================
// Application Handler
// ============================================

type ApplicationHandler struct {
	applicationService service.ApplicationService
}

func (h *ApplicationHandler) ListDefaults(c *gin.Context) {
	apps, err := h.applicationService.ListDefaults(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	response := make([]models.ApplicationResponse, len(apps))
	for i, a := range apps {
		response[i] = toApplicationResponse(a)
	}

	c.JSON(http.StatusOK, response)
}

func (h *ApplicationHandler) ListForCompany(c *gin.Context) {
	companyID := c.Param("companyId")

	companyApps, err := h.applicationService.ListForCompany(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	response := make([]models.ApplicationResponse, 0, len(companyApps))
	for _, ca := range companyApps {
		if ca.Application != nil {
			response = append(response, toApplicationResponse(ca.Application))
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *ApplicationHandler) RemoveFromCompany(c *gin.Context) {
	companyID := c.Param("companyId")
	applicationID := c.Param("applicationId")

	if err := h.applicationService.RemoveFromCompany(c.Request.Context(), companyID, applicationID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove application"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
