package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"couponHub/backend/models"
	"couponHub/backend/validators"
)

func (h *Handler) ListCategories(c *gin.Context) {
	var q validators.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	cats, total, err := h.categories.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	paginated(c, cats, total, q)
}

// GetCategory accepts either a numeric id or a slug.
func (h *Handler) GetCategory(c *gin.Context) {
	var (
		cat *models.Category
		err error
	)
	if id, ok := numericID(c.Param("id")); ok {
		cat, err = h.categories.Get(c.Request.Context(), id)
	} else {
		cat, err = h.categories.GetBySlug(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cat})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var input validators.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	cat, err := h.categories.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.admin.InvalidateDashboard(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": "Category created successfully", "data": cat})
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input validators.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	cat, err := h.categories.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated successfully", "data": cat})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.admin.InvalidateDashboard(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
