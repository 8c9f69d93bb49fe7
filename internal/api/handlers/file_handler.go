package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4seer/Twake/internal/api/middleware"
	"github.com/4seer/Twake/internal/models"
	"github.com/4seer/Twake/internal/service"
)

// ============================================
// File Handler
// ============================================

type FileHandler struct {
	fileService service.FileService
}

func (h *FileHandler) Create(c *gin.Context) {
	companyID := c.Param("companyId")
	if _, ok := middleware.RequireUserID(c); !ok {
		return
	}

	var req models.CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := h.fileService.Create(c.Request.Context(), req.Name, req.MimeType, req.Size, executionContext(c, companyID))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File name is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create file"})
		return
	}

	c.JSON(http.StatusCreated, toFileResponse(file))
}

func (h *FileHandler) Get(c *gin.Context) {
	companyID := c.Param("companyId")
	id := c.Param("fileId")

	file, err := h.fileService.Get(c.Request.Context(), companyID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch file"})
		return
	}

	c.JSON(http.StatusOK, toFileResponse(file))
}
