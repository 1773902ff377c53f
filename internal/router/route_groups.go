package router

import (
	"gym_crm_backend/internal/handlers"
	"gym_crm_backend/internal/middleware"
	"gym_crm_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authenticated account routes. User management is
// restricted to administrators.
func SetupAuthRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := authenticatedGroup.Group("/auth")
	{
		authRoutes.GET("/me", authHandler.GetProfile)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		userRoutes.POST("", authHandler.RegisterUser)
		userRoutes.GET("", authHandler.GetUsers)
		userRoutes.PATCH("/:id/active", authHandler.SetUserActive)
	}
}

// SetupMemberRoutes sets up the member routes.
func SetupMemberRoutes(authenticatedGroup *gin.RouterGroup, memberHandler *handlers.MemberHandler) {
	memberRoutes := authenticatedGroup.Group("/members")
	memberRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		memberRoutes.POST("", memberHandler.RegisterMember)
		memberRoutes.GET("", memberHandler.GetMembers)
		memberRoutes.GET("/:id", memberHandler.GetMemberByID)
		memberRoutes.PUT("/:id", memberHandler.UpdateMember)
		memberRoutes.POST("/:id/renew", memberHandler.RenewMember)
		memberRoutes.POST("/:id/suspend", memberHandler.SuspendMember)
		memberRoutes.POST("/:id/unsuspend", memberHandler.UnsuspendMember)
	}

	adminMemberRoutes := authenticatedGroup.Group("/members")
	adminMemberRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminMemberRoutes.DELETE("/:id", memberHandler.DeleteMember)
	}
}

// SetupPlanRoutes sets up the membership plan routes. Reads are open to all
// staff; writes are admin only.
func SetupPlanRoutes(authenticatedGroup *gin.RouterGroup, planHandler *handlers.PlanHandler) {
	planRoutes := authenticatedGroup.Group("/plans")
	planRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		planRoutes.GET("", planHandler.GetPlans)
		planRoutes.GET("/:id", planHandler.GetPlanByID)
	}

	adminPlanRoutes := authenticatedGroup.Group("/plans")
	adminPlanRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminPlanRoutes.POST("", planHandler.CreatePlan)
		adminPlanRoutes.PUT("/:id", planHandler.UpdatePlan)
		adminPlanRoutes.DELETE("/:id", planHandler.DeletePlan)
	}
}

// SetupPaymentRoutes sets up the payment ledger routes.
func SetupPaymentRoutes(authenticatedGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	paymentRoutes := authenticatedGroup.Group("/payments")
	paymentRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		paymentRoutes.GET("", paymentHandler.GetPayments)
		paymentRoutes.GET("/:id", paymentHandler.GetPaymentByID)
		paymentRoutes.POST("/walk-in", paymentHandler.RecordWalkIn)
		paymentRoutes.POST("/grace-settlement", paymentHandler.RecordGraceSettlement)
	}
}

// SetupShiftRoutes sets up the cashier shift routes.
func SetupShiftRoutes(authenticatedGroup *gin.RouterGroup, shiftHandler *handlers.ShiftHandler) {
	shiftRoutes := authenticatedGroup.Group("/shifts")
	shiftRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		shiftRoutes.POST("/start", shiftHandler.StartShift)
		shiftRoutes.POST("/end", shiftHandler.EndShift)
		shiftRoutes.GET("/active", shiftHandler.GetActiveShift)
		shiftRoutes.GET("", shiftHandler.GetShifts)
		shiftRoutes.GET("/:id", shiftHandler.GetShiftByID)
	}
}

// SetupCouponRoutes sets up the coupon routes. Creation and editing are admin
// only; lookup and redemption are available to cashiers.
func SetupCouponRoutes(authenticatedGroup *gin.RouterGroup, couponHandler *handlers.CouponHandler) {
	couponRoutes := authenticatedGroup.Group("/coupons")
	couponRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		couponRoutes.GET("/code/:code", couponHandler.GetCouponByCode)
		couponRoutes.POST("/redeem", couponHandler.RedeemCoupon)
		couponRoutes.GET("/usage", couponHandler.SearchCouponUsage)
	}

	adminCouponRoutes := authenticatedGroup.Group("/coupons")
	adminCouponRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminCouponRoutes.POST("", couponHandler.CreateCoupon)
		adminCouponRoutes.GET("", couponHandler.GetCoupons)
		adminCouponRoutes.PUT("/:id", couponHandler.UpdateCoupon)
	}
}

// SetupProductRoutes sets up the POS product routes.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	productRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.GET("/:id", productHandler.GetProductByID)
		productRoutes.POST("/sale", productHandler.RecordSale)
	}

	adminProductRoutes := authenticatedGroup.Group("/products")
	adminProductRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminProductRoutes.POST("", productHandler.CreateProduct)
		adminProductRoutes.PUT("/:id", productHandler.UpdateProduct)
		adminProductRoutes.DELETE("/:id", productHandler.DeleteProduct)
		adminProductRoutes.POST("/:id/adjust-stock", productHandler.AdjustStock)
		adminProductRoutes.GET("/:id/stock-history", productHandler.GetStockHistory)
	}
}

// SetupDeviceRoutes sets up the device authorization routes. Admin only.
func SetupDeviceRoutes(authenticatedGroup *gin.RouterGroup, deviceHandler *handlers.DeviceHandler) {
	deviceRoutes := authenticatedGroup.Group("/devices")
	deviceRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		deviceRoutes.GET("", deviceHandler.GetDeviceRequests)
		deviceRoutes.GET("/:token", deviceHandler.GetDeviceRequest)
		deviceRoutes.POST("/:token/approve", deviceHandler.ApproveDeviceRequest)
		deviceRoutes.POST("/:token/deny", deviceHandler.DenyDeviceRequest)
	}
}

// SetupCheckInRoutes sets up the check-in routes.
func SetupCheckInRoutes(authenticatedGroup *gin.RouterGroup, checkInHandler *handlers.CheckInHandler) {
	checkInRoutes := authenticatedGroup.Group("/check-ins")
	checkInRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		checkInRoutes.POST("", checkInHandler.CheckInMember)
		checkInRoutes.GET("", checkInHandler.GetCheckIns)
		checkInRoutes.GET("/count", checkInHandler.GetCheckInCount)
	}
}

// SetupSettingRoutes sets up the settings routes. Admin only.
func SetupSettingRoutes(authenticatedGroup *gin.RouterGroup, settingHandler *handlers.SettingHandler) {
	settingRoutes := authenticatedGroup.Group("/settings")
	settingRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		settingRoutes.GET("", settingHandler.GetSettings)
		settingRoutes.PUT("", settingHandler.UpdateSettings)
	}
}

// SetupReportRoutes sets up the report and export routes. Admin only.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		reportRoutes.GET("/dashboard", reportHandler.GetDashboardSummary)
		reportRoutes.GET("/revenue", reportHandler.GetRevenueReport)
		reportRoutes.GET("/revenue/export", reportHandler.ExportRevenueReportXLSX)
		reportRoutes.GET("/members/export", reportHandler.ExportMembersCSV)
		reportRoutes.GET("/payments/export", reportHandler.ExportPaymentsCSV)
	}
}
