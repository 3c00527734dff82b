package models

import (
	"gorm.io/gorm"
)

// Platform is a merchant store coupons are redeemed on.
type Platform struct {
	gorm.Model
	Name        string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug        string `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	WebsiteURL  string `gorm:"size:512;not null" json:"website_url"`
	LogoURL     string `gorm:"size:512" json:"logo_url"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"index" json:"is_active"`
}
