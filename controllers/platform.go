package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"couponHub/backend/models"
	"couponHub/backend/validators"
)

func (h *Handler) ListPlatforms(c *gin.Context) {
	var q validators.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	platforms, total, err := h.platforms.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	paginated(c, platforms, total, q)
}

func (h *Handler) GetPlatform(c *gin.Context) {
	var (
		p   *models.Platform
		err error
	)
	if id, ok := numericID(c.Param("id")); ok {
		p, err = h.platforms.Get(c.Request.Context(), id)
	} else {
		p, err = h.platforms.GetBySlug(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *Handler) CreatePlatform(c *gin.Context) {
	var input validators.PlatformInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.platforms.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.admin.InvalidateDashboard(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": "Platform created successfully", "data": p})
}

func (h *Handler) UpdatePlatform(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input validators.PlatformInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.platforms.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.admin.InvalidateDashboard(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Platform updated successfully", "data": p})
}

func (h *Handler) DeletePlatform(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.platforms.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.admin.InvalidateDashboard(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Platform deleted successfully"})
}
