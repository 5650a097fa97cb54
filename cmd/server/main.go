package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nismah/internal/ai"
	"nismah/internal/config"
	"nismah/internal/database"
	"nismah/internal/handlers"
	"nismah/internal/repository"
	"nismah/internal/security"
	"nismah/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	forumRepo := repository.NewForumRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)

	// Initialize services
	authService := service.NewAuthService(db, accountRepo, familyRepo, cfg.SessionDuration)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	alertService := service.NewAlertService(incidentRepo, accountRepo, emailService)
	forumService := service.NewForumService(forumRepo)
	directoryService := service.NewDirectoryService(directoryRepo)

	// Seed default forum sections and directory listings
	if err := forumService.SeedDefaultSections(); err != nil {
		log.Printf("Warning: Failed to seed forum sections: %v", err)
	}
	if err := directoryService.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed directory: %v", err)
	}

	// AI gateway
	aiClient := ai.NewClient(ai.Config{
		APIKey:        cfg.AIAPIKey,
		BaseURL:       cfg.AIBaseURL,
		Model:         cfg.AIModel,
		FallbackModel: cfg.AIFallbackModel,
	})
	aiThrottle := ai.NewThrottle(cfg.AICooldown)
	if !aiClient.IsConfigured() {
		log.Println("AI assistant disabled: AI_API_KEY not configured")
	}

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService, emailService)
	oauthHandler := handlers.NewOAuthHandler(authService, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectBaseURL)
	aiHandler := handlers.NewAIHandler(aiClient, aiThrottle)
	incidentHandler := handlers.NewIncidentHandler(alertService)
	forumHandler := handlers.NewForumHandler(forumService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)

	// Routes
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("DELETE /api/register", authHandler.Unregister)
	mux.HandleFunc("POST /api/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(authHandler.Me))

	// Google sign-in
	mux.HandleFunc("GET /auth/google/start", oauthHandler.Start)
	mux.HandleFunc("GET /auth/google/callback", oauthHandler.Callback)

	// AI assistant
	mux.HandleFunc("POST /api/ai", middleware.OptionalAuth(aiHandler.Ask))

	// Incidents and alerts
	mux.HandleFunc("POST /api/incidents", middleware.OptionalAuth(incidentHandler.Report))
	mux.HandleFunc("GET /api/alerts", middleware.OptionalAuth(incidentHandler.ListAlerts))
	mux.HandleFunc("POST /api/alerts/{id}/resolve", middleware.RequireAdmin(incidentHandler.ResolveAlert))

	// Forum
	mux.HandleFunc("GET /api/forum/sections", middleware.RequireAuth(forumHandler.ListSections))
	mux.HandleFunc("GET /api/forum/sections/{id}/posts", middleware.RequireAuth(forumHandler.ListPosts))
	mux.HandleFunc("POST /api/forum/sections/{id}/posts", middleware.RequireAuth(forumHandler.CreatePost))
	mux.HandleFunc("GET /api/forum/posts/{id}/replies", middleware.RequireAuth(forumHandler.ListReplies))
	mux.HandleFunc("POST /api/forum/posts/{id}/replies", middleware.RequireAuth(forumHandler.CreateReply))

	// Directory
	mux.HandleFunc("GET /api/resources", directoryHandler.ListResources)
	mux.HandleFunc("GET /api/counselors", directoryHandler.ListCounselors)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// cleanupExpiredSessions removes expired sessions once an hour
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Failed to cleanup expired sessions: %v", err)
		}
	}
}
