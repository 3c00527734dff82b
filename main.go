package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"couponHub/backend/archive"
	"couponHub/backend/config"
	"couponHub/backend/controllers"
	"couponHub/backend/events"
	"couponHub/backend/metrics"
	"couponHub/backend/middleware"
	"couponHub/backend/routes"
	"couponHub/backend/services"
	"couponHub/backend/utils"
	"couponHub/backend/validators"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	utils.InitJWT(cfg.JWTSecret, cfg.JWTTTL)
	validators.Register()

	if err := config.ConnectDB(cfg); err != nil {
		log.WithError(err).WithField("dsn", cfg.DSNMasked()).Fatal("connect database")
	}
	defer config.CloseDB()
	if err := config.Migrate(config.DB); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	ctx := context.Background()
	users := services.NewUserService(config.DB)
	if created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.WithError(err).Fatal("bootstrap admin")
	} else if created {
		log.WithField("email", cfg.AdminEmail).Info("bootstrap admin created")
	}

	reports, closeReports, err := config.ConnectReporting(cfg, config.DB)
	if err != nil {
		log.WithError(err).Fatal("connect reporting database")
	}
	defer closeReports()

	rdb, err := config.ConnectRedis(cfg)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, continuing without cache, dedupe and rate limits")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var clickOpts []services.ClickOption
	if rdb != nil {
		clickOpts = append(clickOpts, services.WithDeduper(services.NewRedisDeduper(rdb, cfg.ClickDedupeWindow)))
	}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(brokers, cfg.KafkaClickTopic)
		if err != nil {
			log.WithError(err).Warn("kafka unavailable, click events disabled")
		} else {
			defer publisher.Close()
			clickOpts = append(clickOpts, services.WithPublisher(publisher))
		}
	}
	if cfg.MinIOEndpoint != "" {
		archiver, err := archive.NewMinIOArchiver(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
		if err == nil {
			err = archiver.EnsureBucket(ctx)
		}
		if err != nil {
			log.WithError(err).Warn("object storage unavailable, click archives disabled")
		} else {
			clickOpts = append(clickOpts, services.WithArchiver(archiver))
		}
	}

	blacklist := middleware.NewTokenBlacklist(rdb)
	h := controllers.New(config.DB, controllers.Services{
		Categories: services.NewCategoryService(config.DB),
		Platforms:  services.NewPlatformService(config.DB),
		Coupons:    services.NewCouponService(config.DB),
		Clicks:     services.NewClickService(config.DB, clickOpts...),
		Admin:      services.NewAdminService(config.DB, reports, rdb, cfg.DashboardCacheTTL),
		Users:      users,
	}, blacklist)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.SecurityHeaders(), metrics.Handler())
	routes.SetupRoutes(r, h, routes.Options{Blacklist: blacklist, Redis: rdb, LoginPerMinute: cfg.LoginPerMinute})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", srv.Addr).Info("couponHub listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown")
	}
}
