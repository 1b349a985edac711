// main.go
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"codebid/database"
	"codebid/handlers"
	"codebid/middleware"
	"codebid/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Pick the persistence gateway: PostgreSQL when configured, in-memory
	// fallback otherwise (seeded with the admin team and sample problems).
	store := selectStore()

	auction := services.NewAuctionService(store)
	hub := handlers.NewHub(auction)
	auction.SetBroadcaster(hub)
	handlers.Init(store, auction)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// Auth routes with stricter rate limiting
	authGroup := app.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/signup", handlers.Signup)
	authGroup.Get("/me", middleware.AuthMiddleware, handlers.Me)

	// Public event routes
	eventGroup := app.Group("/event")
	eventGroup.Get("/state", handlers.GetState)
	eventGroup.Get("/problems", handlers.GetProblems)

	// Admin routes
	adminGroup := app.Group("/admin")
	adminGroup.Use(middleware.AdminAuthMiddleware)
	adminGroup.Post("/start-auction", handlers.StartAuction)
	adminGroup.Post("/complete-auction", handlers.CompleteAuction)
	adminGroup.Post("/start-coding", handlers.StartCoding)
	adminGroup.Post("/finish-event", handlers.FinishEvent)
	adminGroup.Post("/reset-event", handlers.ResetEvent)
	adminGroup.Get("/leaderboard", handlers.GetLeaderboard)
	adminGroup.Get("/teams", handlers.GetTeams)
	adminGroup.Get("/problems", handlers.GetAllProblems)
	adminGroup.Post("/problems", handlers.CreateProblem)
	adminGroup.Delete("/problems/:id", handlers.DeleteProblem)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	// Start WebSocket server on its own port (pure net/http)
	wsPort := getEnv("WS_PORT", "4001")
	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/ws", hub.WebSocketHandler)

	wsServer := &http.Server{
		Addr:    ":" + wsPort,
		Handler: wsMux,
	}

	go func() {
		log.Printf("🌐 WebSocket server starting on port %s", wsPort)
		if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("WebSocket server failed:", err)
		}
	}()

	// Start Fiber HTTP/REST server
	port := getEnv("PORT", "4000")

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🌐 WebSocket available at ws://localhost:%s/ws", wsPort)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// selectStore opens PostgreSQL when any database configuration is present;
// otherwise the server runs entirely in memory.
func selectStore() services.Store {
	if os.Getenv("STORE") == "memory" ||
		(os.Getenv("DATABASE_URL") == "" && os.Getenv("DB_HOST") == "") {
		log.Println("⚠️  No database configured, using in-memory store")
		return services.NewMemoryStore()
	}

	database.InitDB()
	return services.NewGormStore(database.GetDB())
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
