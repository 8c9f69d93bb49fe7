package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/4seer/Twake/internal/api/handlers"
	"github.com/4seer/Twake/internal/api/middleware"
	"github.com/4seer/Twake/internal/config"
	"github.com/4seer/Twake/internal/counter"
	"github.com/4seer/Twake/internal/cron"
	"github.com/4seer/Twake/internal/db"
	"github.com/4seer/Twake/internal/email"
	"github.com/4seer/Twake/internal/pubsub"
	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/seed"
	"github.com/4seer/Twake/internal/service"
	"github.com/4seer/Twake/internal/socket"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations
	// ============================================
	log.Println("Running database migrations...")
	if err := db.RunMigrations(cfg.DatabaseURL, "./internal/db/migrations"); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Database migrations completed")

	// ============================================
	// Initialize PostgreSQL
	// ============================================
	postgres, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()

	repos := repository.NewRepositories(postgres.Pool)

	// ============================================
	// Initialize Redis (event bus + realtime fan-out)
	// ============================================
	redisDB, err := db.NewRedisDB(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisDB.Close()

	bus := pubsub.NewBus(redisDB.Client)

	// ============================================
	// Initialize Email Service (optional)
	// ============================================
	var emailSvc *email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		log.Println("Email service initialized")
	} else {
		log.Println("Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)

	cancelBroadcasts, err := broadcaster.SubscribeAll(bus)
	if err != nil {
		log.Fatalf("Failed to subscribe broadcaster: %v", err)
	}
	defer cancelBroadcasts()

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize Services
	// ============================================
	counters := counter.NewProvider(repos.CounterRepo)

	services := service.NewServices(&service.ServiceDeps{
		Config:   cfg,
		Repos:    repos,
		Counter:  counters,
		Bus:      bus,
		EmailSvc: emailSvc,
	})

	previewProcessor := service.NewPreviewFinishedProcessor(repos.FileRepo)
	cancelPreview, err := previewProcessor.Subscribe(bus)
	if err != nil {
		log.Fatalf("Failed to subscribe preview processor: %v", err)
	}
	defer cancelPreview()

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(repos.WorkspaceRepo, counters)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.Default()
	r.Use(middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"ws_clients": hub.GetConnectedClientsCount(),
			"email":      emailStatus(emailSvc),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			users := protected.Group("/users")
			{
				users.GET("/me", h.User.Me)
				users.PUT("/me", h.User.UpdateMe)
				users.GET("/me/workspaces", h.User.MyWorkspaces)
			}

			companies := protected.Group("/companies")
			{
				companies.GET("", h.Company.List)
				companies.POST("", h.Company.Create)
				companies.GET("/:companyId", h.Company.Get)

				companies.GET("/:companyId/applications", h.Application.ListForCompany)
				companies.DELETE("/:companyId/applications/:applicationId", h.Application.RemoveFromCompany)

				// Workspaces
				workspaces := companies.Group("/:companyId/workspaces")
				{
					workspaces.GET("", h.Workspace.List)
					workspaces.POST("", h.Workspace.Create)
					workspaces.GET("/:id", h.Workspace.Get)
					workspaces.PUT("/:id", h.Workspace.Update)
					workspaces.DELETE("/:id", h.Workspace.Delete)

					// Members
					workspaces.GET("/:id/members", h.Workspace.ListMembers)
					workspaces.POST("/:id/members", h.Workspace.AddMember)
					workspaces.GET("/:id/members/count", h.Workspace.MemberCount)
					workspaces.GET("/:id/members/:userId", h.Workspace.GetMember)
					workspaces.PUT("/:id/members/:userId", h.Workspace.UpdateMemberRole)
					workspaces.DELETE("/:id/members/:userId", h.Workspace.RemoveMember)

					// Pending invitations
					workspaces.GET("/:id/pending", h.Workspace.ListPendingUsers)
					workspaces.POST("/:id/pending", h.Workspace.AddPendingUser)
					workspaces.DELETE("/:id/pending/:email", h.Workspace.RemovePendingUser)

					// Channels
					workspaces.GET("/:id/channels", h.Message.ListChannels)
					workspaces.POST("/:id/channels", h.Message.CreateChannel)
				}

				// Files
				files := companies.Group("/:companyId/files")
				{
					files.POST("", h.File.Create)
					files.GET("/:fileId", h.File.Get)
				}
			}

			applications := protected.Group("/applications")
			{
				applications.GET("", h.Application.ListDefaults)
			}

			channels := protected.Group("/channels")
			{
				channels.GET("/:channelId", h.Message.GetChannel)
				channels.DELETE("/:channelId", h.Message.DeleteChannel)
				channels.GET("/:channelId/messages", h.Message.ListMessages)
				channels.POST("/:channelId/messages", h.Message.PostMessage)
			}

			threads := protected.Group("/threads")
			{
				threads.GET("/:threadId", h.Message.ListThread)
			}
		}
	}

	// ============================================
	// Start server with graceful shutdown
	// ============================================
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func emailStatus(emailSvc *email.Service) string {
	if emailSvc != nil {
		return "configured"
	}
	return "disabled"
}
