package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"
	DiscountDeal       = "deal"
)

type Coupon struct {
	gorm.Model
	Title         string          `gorm:"size:255;not null" json:"title"`
	Description   string          `gorm:"type:text" json:"description"`
	Code          string          `gorm:"size:64;index" json:"code"`
	DiscountType  string          `gorm:"size:16;not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_value"`
	MinPurchase   decimal.Decimal `gorm:"type:decimal(12,2)" json:"min_purchase"`
	AffiliateURL  string          `gorm:"size:1024;not null" json:"affiliate_url"`
	CategoryID    uint            `gorm:"not null;index" json:"category_id"`
	Category      *Category       `json:"category,omitempty"`
	PlatformID    uint            `gorm:"not null;index" json:"platform_id"`
	Platform      *Platform       `json:"platform,omitempty"`
	StartsAt      *time.Time      `json:"starts_at"`
	ExpiresAt     *time.Time      `gorm:"index" json:"expires_at"`
	IsActive      bool            `gorm:"index" json:"is_active"`
	IsFeatured    bool            `gorm:"index" json:"is_featured"`
	ClickCount    int64           `gorm:"default:0;not null" json:"click_count"`
}

// Live reports whether the coupon can be followed at t.
func (c *Coupon) Live(t time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartsAt != nil && t.Before(*c.StartsAt) {
		return false
	}
	if c.ExpiresAt != nil && !t.Before(*c.ExpiresAt) {
		return false
	}
	return true
}
