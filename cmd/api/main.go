package main

import (
	"context"
	"log"
	"os"

	_ "optibuy/api/swagger" // swagger docs
	"optibuy/internal/database"
	"optibuy/internal/gemini"
	"optibuy/internal/handler"
	"optibuy/internal/middleware"
	"optibuy/internal/repository"
	"optibuy/internal/service"
	"optibuy/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           OptiBuy Procurement API
// @version         1.0
// @description     Purchase requisition and supplier quote comparison workflow.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	middleware.InitPermissionMiddleware(db)

	// External analysis collaborator
	geminiClient, err := gemini.NewClientFromEnv()
	if err != nil {
		log.Fatalf("Gemini client setup failed: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	costCenterRepo := repository.NewCostCenterRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, db)
	roleService := service.NewRoleService(db, auditRepo)
	requestService := service.NewRequestService(requestRepo, costCenterRepo, auditRepo, txManager, wsHub)
	analysisService := service.NewAnalysisService(requestRepo, auditRepo, geminiClient, wsHub)
	exportService := service.NewExportService(requestRepo, costCenterRepo)
	dashboardService := service.NewDashboardService(db, requestRepo)
	supplierService := service.NewSupplierService(supplierRepo, auditRepo)
	costCenterService := service.NewCostCenterService(costCenterRepo, auditRepo)
	auditService := service.NewAuditService(auditRepo)

	if err := roleService.SeedDefaultRolesAndPermissions(context.Background()); err != nil {
		log.Fatalf("Role seeding failed: %v", err)
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	requestHandler := handler.NewRequestHandler(requestService, analysisService)
	reportHandler := handler.NewReportHandler(exportService, dashboardService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	costCenterHandler := handler.NewCostCenterHandler(costCenterService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("")
	userHandler.RegisterRoutes(api)
	roleHandler.RegisterRoutes(api)
	requestHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	supplierHandler.RegisterRoutes(api)
	costCenterHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
