package validators

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategoryInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=120,slug"`
	Description string `json:"description"`
	Icon        string `json:"icon" binding:"omitempty,max=255"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

type PlatformInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=120,slug"`
	WebsiteURL  string `json:"website_url" binding:"required,url,max=512"`
	LogoURL     string `json:"logo_url" binding:"omitempty,url,max=512"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type CouponInput struct {
	Title         string          `json:"title" binding:"required,max=255"`
	Description   string          `json:"description"`
	Code          string          `json:"code" binding:"omitempty,max=64"`
	DiscountType  string          `json:"discount_type" binding:"required,discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MinPurchase   decimal.Decimal `json:"min_purchase"`
	AffiliateURL  string          `json:"affiliate_url" binding:"required,url,max=1024"`
	CategoryID    uint            `json:"category_id" binding:"required"`
	PlatformID    uint            `json:"platform_id" binding:"required"`
	StartsAt      *time.Time      `json:"starts_at"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	IsActive      *bool           `json:"is_active"`
	IsFeatured    bool            `json:"is_featured"`
}

// ClickInput is assembled by the controller from the request, not bound from a body.
type ClickInput struct {
	CouponID  uint
	IPAddress string
	Referrer  string
	UserAgent string
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	OTP      string `json:"otp"`
}

type ProfileInput struct {
	Username        string `json:"username" binding:"omitempty,max=100"`
	Email           string `json:"email" binding:"omitempty,email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"omitempty,min=8"`
}

// BoolPtr is a helper for optional flags in inputs.
func BoolPtr(b bool) *bool { return &b }
