package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"couponHub/backend/services"
	"couponHub/backend/validators"
)

func clickInput(c *gin.Context, couponID uint) validators.ClickInput {
	return validators.ClickInput{
		CouponID:  couponID,
		IPAddress: c.ClientIP(),
		Referrer:  c.Request.Referer(),
		UserAgent: c.Request.UserAgent(),
	}
}

// RedirectCoupon records the click and sends the visitor to the affiliate URL.
func (h *Handler) RedirectCoupon(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.recordClick(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, res.RedirectURL)
}

// RecordClick is the JSON variant of RedirectCoupon for clients that navigate themselves.
func (h *Handler) RecordClick(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.recordClick(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect_url": res.RedirectURL, "counted": res.Counted})
}

func (h *Handler) recordClick(c *gin.Context, couponID uint) (*services.ClickResult, error) {
	res, err := h.clicks.Record(c.Request.Context(), clickInput(c, couponID))
	if err != nil {
		return nil, err
	}
	if !res.Counted {
		log.WithFields(log.Fields{"coupon_id": couponID, "ip": c.ClientIP()}).Debug("duplicate click not counted")
	}
	return res, nil
}

func (h *Handler) ListClicks(c *gin.Context) {
	var q validators.ClickQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	clicks, total, err := h.clicks.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	paginated(c, clicks, total, q.ListQuery)
}

func (h *Handler) ExportClicksCSV(c *gin.Context) {
	var q validators.ClickQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	// Set CSV headers
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=clicks_%d.csv", time.Now().Unix()))
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	rows, err := h.clicks.WriteCSV(c.Request.Context(), q, c.Writer)
	if err != nil {
		// headers are already out, so the client sees a truncated file
		log.WithError(err).WithField("rows", rows).Error("click export aborted")
	}
}

func (h *Handler) ArchiveClicks(c *gin.Context) {
	var q validators.ClickQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	key, rows, err := h.clicks.Archive(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Click archive uploaded", "key": key, "rows": rows})
}
