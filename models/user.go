package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username   string `gorm:"size:100" json:"username"`
	Email      string `gorm:"size:190;uniqueIndex;not null" json:"email"`
	Password   string `gorm:"size:255" json:"-"` // bcrypt hash
	IsAdmin    bool   `gorm:"index" json:"is_admin"`
	TOTPSecret string `gorm:"size:64" json:"-"`
}
