package controllers

import (
	"gorm.io/gorm"

	"couponHub/backend/middleware"
	"couponHub/backend/services"
)

// Handler carries the services every route works through.
type Handler struct {
	db         *gorm.DB
	categories *services.CategoryService
	platforms  *services.PlatformService
	coupons    *services.CouponService
	clicks     *services.ClickService
	admin      *services.AdminService
	users      *services.UserService
	blacklist  *middleware.TokenBlacklist
}

// Services groups the constructed services handed to New.
type Services struct {
	Categories *services.CategoryService
	Platforms  *services.PlatformService
	Coupons    *services.CouponService
	Clicks     *services.ClickService
	Admin      *services.AdminService
	Users      *services.UserService
}

func New(db *gorm.DB, svc Services, blacklist *middleware.TokenBlacklist) *Handler {
	return &Handler{
		db:         db,
		categories: svc.Categories,
		platforms:  svc.Platforms,
		coupons:    svc.Coupons,
		clicks:     svc.Clicks,
		admin:      svc.Admin,
		users:      svc.Users,
		blacklist:  blacklist,
	}
}
