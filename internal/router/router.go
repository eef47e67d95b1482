package router

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/Isba24ha/barliberty-sub000/internal/handlers"
	"github.com/Isba24ha/barliberty-sub000/internal/middleware"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
	"github.com/Isba24ha/barliberty-sub000/internal/services"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	tableRepo := repositories.NewTableRepository(db)
	productRepo := repositories.NewProductRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)
	creditRepo := repositories.NewCreditClientRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	absenceRepo := repositories.NewAbsenceRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Initialize Services
	authService := services.NewAuthService(userRepo, db)
	sessionService := services.NewSessionService(sessionRepo, db)
	tableService := services.NewTableService(tableRepo, db)
	productService := services.NewProductService(productRepo, movementRepo, db)
	creditService := services.NewCreditClientService(creditRepo, db)
	orderService := services.NewOrderService(orderRepo, productRepo, tableRepo, sessionRepo, movementRepo, db)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo, tableRepo, sessionRepo, creditRepo, userRepo, db)
	absenceService := services.NewAbsenceService(absenceRepo, db)
	reportService := services.NewReportService(reportRepo)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	tableHandler := handlers.NewTableHandler(tableService)
	productHandler := handlers.NewProductHandler(productService)
	creditHandler := handlers.NewCreditClientHandler(creditService, paymentService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	absenceHandler := handlers.NewAbsenceHandler(absenceService)
	reportHandler := handlers.NewReportHandler(reportService)

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated, authHandler)
		SetupSessionRoutes(authenticated, sessionHandler)
		SetupTableRoutes(authenticated, tableHandler)
		SetupCatalogRoutes(authenticated, productHandler)
		SetupCreditClientRoutes(authenticated, creditHandler)
		SetupOrderRoutes(authenticated, orderHandler)
		SetupPaymentRoutes(authenticated, paymentHandler)
		SetupAbsenceRoutes(authenticated, absenceHandler)
		SetupReportRoutes(authenticated, reportHandler)
	}
}
