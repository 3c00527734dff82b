package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"couponHub/backend/controllers"
	"couponHub/backend/metrics"
	"couponHub/backend/middleware"
)

// Options carries what the route table needs besides the handlers.
type Options struct {
	Blacklist      *middleware.TokenBlacklist
	Redis          *redis.Client
	LoginPerMinute int
}

func SetupRoutes(r *gin.Engine, h *controllers.Handler, opts Options) {
	r.GET("/health", h.Health)
	r.GET("/metrics", metrics.Exposer())

	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimit(opts.Redis, "login", opts.LoginPerMinute, time.Minute, middleware.ByClientIP), h.Login)
		auth.POST("/logout", middleware.JWTAuthMiddleware(opts.Blacklist), h.Logout)
	}

	public := r.Group("/api")
	{
		public.GET("/categories", h.ListCategories)
		public.GET("/categories/:id", h.GetCategory)
		public.GET("/platforms", h.ListPlatforms)
		public.GET("/platforms/:id", h.GetPlatform)
		public.GET("/coupons", h.ListCoupons)
		public.GET("/coupons/:id", h.GetCoupon)
		public.POST("/coupons/:id/click", h.RecordClick)
	}

	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(opts.Blacklist))
	{
		api.GET("/profile", h.GetProfile)
		api.PUT("/profile", h.UpdateUserProfile)
	}

	admin := r.Group("/api/admin")
	admin.Use(middleware.JWTAuthMiddleware(opts.Blacklist), middleware.AdminOnly())
	{
		admin.POST("/categories", h.CreateCategory)
		admin.PUT("/categories/:id", h.UpdateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)

		admin.POST("/platforms", h.CreatePlatform)
		admin.PUT("/platforms/:id", h.UpdatePlatform)
		admin.DELETE("/platforms/:id", h.DeletePlatform)

		admin.POST("/coupons", h.CreateCoupon)
		admin.PUT("/coupons/:id", h.UpdateCoupon)
		admin.DELETE("/coupons/:id", h.DeleteCoupon)

		admin.GET("/dashboard", h.Dashboard)
		admin.GET("/clicks", h.ListClicks)
		admin.GET("/clicks/export", h.ExportClicksCSV)
		admin.POST("/clicks/archive", h.ArchiveClicks)
	}

	r.GET("/go/:id", h.RedirectCoupon)
	r.HEAD("/go/:id", h.RedirectCoupon)
}
