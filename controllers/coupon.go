package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"couponHub/backend/validators"
)

func (h *Handler) ListCoupons(c *gin.Context) {
	var q validators.CouponQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	coupons, total, err := h.coupons.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	paginated(c, coupons, total, q.ListQuery)
}

func (h *Handler) GetCoupon(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	coupon, err := h.coupons.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": coupon})
}

func (h *Handler) CreateCoupon(c *gin.Context) {
	var input validators.CouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	coupon, err := h.coupons.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.admin.InvalidateDashboard(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": "Coupon created successfully", "data": coupon})
}

func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input validators.CouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	coupon, err := h.coupons.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.admin.InvalidateDashboard(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Coupon updated successfully", "data": coupon})
}

func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.coupons.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.admin.InvalidateDashboard(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted successfully"})
}
