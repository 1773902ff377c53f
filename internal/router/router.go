package router

import (
	"database/sql"
	"time"

	"gym_crm_backend/internal/config"
	"gym_crm_backend/internal/handlers"
	"gym_crm_backend/internal/middleware"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, redisClient *redis.Client, cfg *config.Config) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	planRepo := repositories.NewPlanRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	shiftRepo := repositories.NewShiftRepository(db)
	couponRepo := repositories.NewCouponRepository(db)
	productRepo := repositories.NewProductRepository(db)
	deviceRepo := repositories.NewDeviceRepository(db)
	checkInRepo := repositories.NewCheckInRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo, deviceRepo, db)
	memberService := services.NewMemberService(memberRepo, planRepo, paymentRepo, shiftRepo, settingRepo, db)
	planService := services.NewPlanService(planRepo, db)
	paymentService := services.NewPaymentService(paymentRepo, memberRepo, shiftRepo, settingRepo, db)
	shiftService := services.NewShiftService(shiftRepo, paymentRepo, productRepo, db)
	couponService := services.NewCouponService(couponRepo, memberRepo, paymentRepo, shiftRepo, db)
	productService := services.NewProductService(productRepo, paymentRepo, shiftRepo, db)
	deviceService := services.NewDeviceService(deviceRepo, db)
	checkInService := services.NewCheckInService(checkInRepo, memberRepo, settingRepo, db)
	settingService := services.NewSettingService(settingRepo, db)
	reportService := services.NewReportService(reportRepo, memberRepo, paymentRepo, shiftRepo, productRepo, checkInRepo, settingRepo)

	// Seed the first admin account on a fresh install.
	if err := authService.BootstrapAdmin(cfg.Auth.BootstrapAdminUsername, cfg.Auth.BootstrapAdminPassword); err != nil {
		utils.LogWarn(err, "Bootstrap admin seeding failed")
	}

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	memberHandler := handlers.NewMemberHandler(memberService)
	planHandler := handlers.NewPlanHandler(planService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	shiftHandler := handlers.NewShiftHandler(shiftService)
	couponHandler := handlers.NewCouponHandler(couponService)
	productHandler := handlers.NewProductHandler(productService)
	deviceHandler := handlers.NewDeviceHandler(deviceService)
	checkInHandler := handlers.NewCheckInHandler(checkInService)
	settingHandler := handlers.NewSettingHandler(settingService)
	reportHandler := handlers.NewReportHandler(reportService)

	engine.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	if cfg.Metrics.Enabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes. Login is rate limited per client IP.
	publicAuth := apiV1.Group("/auth")
	var loginLimiter gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		loginLimiter = middleware.LoginRateLimiter(redisClient, cfg.RateLimit.LoginAttempts,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	} else {
		loginLimiter = func(c *gin.Context) { c.Next() }
	}
	publicAuth.POST("/login", loginLimiter, authHandler.Login)
	publicAuth.POST("/refresh-token", authHandler.RefreshToken)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthRoutes(authenticated, authHandler)
		SetupMemberRoutes(authenticated, memberHandler)
		SetupPlanRoutes(authenticated, planHandler)
		SetupPaymentRoutes(authenticated, paymentHandler)
		SetupShiftRoutes(authenticated, shiftHandler)
		SetupCouponRoutes(authenticated, couponHandler)
		SetupProductRoutes(authenticated, productHandler)
		SetupDeviceRoutes(authenticated, deviceHandler)
		SetupCheckInRoutes(authenticated, checkInHandler)
		SetupSettingRoutes(authenticated, settingHandler)
		SetupReportRoutes(authenticated, reportHandler)
	}
}
