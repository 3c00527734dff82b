package events

import (
	"time"

	"couponHub/backend/models"
)

// ClickEvent is the message published for every counted affiliate click.
type ClickEvent struct {
	EventID      string    `json:"event_id"`
	CouponID     uint      `json:"coupon_id"`
	CouponTitle  string    `json:"coupon_title"`
	CategoryID   uint      `json:"category_id"`
	PlatformID   uint      `json:"platform_id"`
	PlatformSlug string    `json:"platform_slug,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	Referrer     string    `json:"referrer,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewClickEvent(click *models.Click, coupon *models.Coupon) ClickEvent {
	ev := ClickEvent{
		EventID:     click.EventID,
		CouponID:    coupon.ID,
		CouponTitle: coupon.Title,
		CategoryID:  coupon.CategoryID,
		PlatformID:  click.PlatformID,
		IPAddress:   click.IPAddress,
		Referrer:    click.Referrer,
		UserAgent:   click.UserAgent,
		Timestamp:   click.CreatedAt,
	}
	if coupon.Platform != nil {
		ev.PlatformSlug = coupon.Platform.Slug
	}
	return ev
}
