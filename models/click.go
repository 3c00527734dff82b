package models

import (
	"gorm.io/gorm"
)

// Click is one recorded affiliate redirect.
type Click struct {
	gorm.Model
	EventID    string `gorm:"size:36;uniqueIndex" json:"event_id"`
	CouponID   uint   `gorm:"not null;index" json:"coupon_id"` // Foreign Key
	PlatformID uint   `gorm:"not null;index" json:"platform_id"`
	IPAddress  string `gorm:"size:64" json:"ip_address"`
	Referrer   string `gorm:"size:1024" json:"referrer"`
	UserAgent  string `gorm:"size:1024" json:"user_agent"`
}
