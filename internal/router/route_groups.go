package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Isba24ha/barliberty-sub000/internal/handlers"
	"github.com/Isba24ha/barliberty-sub000/internal/middleware"
	"github.com/Isba24ha/barliberty-sub000/internal/models"
)

// SetupPublicAuthRoutes sets up the unauthenticated auth routes.
func SetupPublicAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}
}

// SetupAuthenticatedAuthRoutes sets up the auth routes behind the JWT check.
func SetupAuthenticatedAuthRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := authenticatedGroup.Group("/auth")
	{
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/me", authHandler.Me)
		authRoutes.POST("/register", middleware.RoleAuthMiddleware(models.RoleManager), authHandler.Register)
	}

	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleManager))
	{
		userRoutes.GET("", authHandler.ListUsers)
	}
}

// SetupSessionRoutes sets up the shift session routes.
func SetupSessionRoutes(authenticatedGroup *gin.RouterGroup, sessionHandler *handlers.SessionHandler) {
	sessionRoutes := authenticatedGroup.Group("/sessions")
	{
		sessionRoutes.GET("/active", sessionHandler.GetActiveSession)
		sessionRoutes.GET("/:id/stats", sessionHandler.GetSessionStats)

		cashierRoutes := sessionRoutes.Group("")
		cashierRoutes.Use(middleware.RoleAuthMiddleware(models.RoleCashier))
		{
			cashierRoutes.POST("", sessionHandler.OpenSession)
			cashierRoutes.POST("/:id/end", sessionHandler.EndSession)
		}
	}
}

// SetupTableRoutes sets up the venue table routes.
func SetupTableRoutes(authenticatedGroup *gin.RouterGroup, tableHandler *handlers.TableHandler) {
	tableRoutes := authenticatedGroup.Group("/tables")
	{
		tableRoutes.GET("", tableHandler.GetTables)
		tableRoutes.PUT("/:id/status", tableHandler.SetTableStatus)

		managerRoutes := tableRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleManager))
		{
			managerRoutes.POST("", tableHandler.CreateTable)
			managerRoutes.PUT("/:id", tableHandler.UpdateTable)
		}
	}
}

// SetupCatalogRoutes sets up the category, product and stock routes.
func SetupCatalogRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	categoryRoutes := authenticatedGroup.Group("/categories")
	{
		categoryRoutes.GET("", productHandler.GetCategories)
		categoryRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleManager), productHandler.CreateCategory)
	}

	productRoutes := authenticatedGroup.Group("/products")
	{
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.GET("/low-stock", middleware.RoleAuthMiddleware(models.RoleManager), productHandler.GetLowStockProducts)
		productRoutes.GET("/:id", productHandler.GetProductByID)

		managerRoutes := productRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleManager))
		{
			managerRoutes.POST("", productHandler.CreateProduct)
			managerRoutes.PUT("/:id", productHandler.UpdateProduct)
			managerRoutes.POST("/:id/stock", productHandler.AdjustStock)
		}
	}

	movementRoutes := authenticatedGroup.Group("/stock-movements")
	movementRoutes.Use(middleware.RoleAuthMiddleware(models.RoleManager))
	{
		movementRoutes.GET("", productHandler.GetStockMovements)
	}
}

// SetupCreditClientRoutes sets up the credit client routes.
func SetupCreditClientRoutes(authenticatedGroup *gin.RouterGroup, creditHandler *handlers.CreditClientHandler) {
	creditRoutes := authenticatedGroup.Group("/credit-clients")
	{
		creditRoutes.GET("", creditHandler.GetCreditClients)
		creditRoutes.GET("/:id", creditHandler.GetCreditClientByID)
		creditRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleCashier, models.RoleServer), creditHandler.CreateCreditClient)
		creditRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleManager), creditHandler.UpdateCreditClient)
		creditRoutes.POST("/:id/repayments", middleware.RoleAuthMiddleware(models.RoleCashier), creditHandler.RecordRepayment)
	}
}

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/pending", orderHandler.GetPendingOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)

		staffRoutes := orderRoutes.Group("")
		staffRoutes.Use(middleware.RoleAuthMiddleware(models.RoleCashier, models.RoleServer))
		{
			staffRoutes.POST("", orderHandler.CreateOrder)
			staffRoutes.POST("/:id/items", orderHandler.AddOrderItem)
			staffRoutes.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		}

		orderRoutes.POST("/:id/cancel",
			middleware.RoleAuthMiddleware(models.RoleCashier, models.RoleServer, models.RoleManager),
			orderHandler.CancelOrder)
	}
}

// SetupPaymentRoutes sets up the payment routes.
func SetupPaymentRoutes(authenticatedGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	paymentRoutes := authenticatedGroup.Group("/payments")
	{
		paymentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleCashier), paymentHandler.CreatePayment)
		paymentRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleCashier, models.RoleManager), paymentHandler.GetPayments)
	}
}

// SetupAbsenceRoutes sets up the absence routes.
func SetupAbsenceRoutes(authenticatedGroup *gin.RouterGroup, absenceHandler *handlers.AbsenceHandler) {
	absenceRoutes := authenticatedGroup.Group("/absences")
	{
		absenceRoutes.POST("", absenceHandler.CreateAbsence)
		absenceRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleManager), absenceHandler.GetAbsences)
		absenceRoutes.PATCH("/:id/approve", middleware.RoleAuthMiddleware(models.RoleManager), absenceHandler.ApproveAbsence)
	}
}

// SetupReportRoutes sets up the reporting routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.RoleAuthMiddleware(models.RoleManager))
	{
		reportRoutes.GET("/top-products", reportHandler.GetTopProducts)
		reportRoutes.GET("/sales", reportHandler.GetSalesReport)
	}
}
