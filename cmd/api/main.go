package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/triptally/triptally/docs"
	"github.com/triptally/triptally/internal/capture"
	"github.com/triptally/triptally/internal/config"
	"github.com/triptally/triptally/internal/database"
	"github.com/triptally/triptally/internal/expense"
	"github.com/triptally/triptally/internal/payment"
	"github.com/triptally/triptally/internal/proposal"
	"github.com/triptally/triptally/internal/trip"
	"github.com/triptally/triptally/internal/user"
	"github.com/triptally/triptally/pkg/logger"
	"github.com/triptally/triptally/pkg/metrics"
	mw "github.com/triptally/triptally/pkg/middleware"
	"github.com/triptally/triptally/pkg/scheduler"
	"github.com/triptally/triptally/pkg/upload"
)

// @title           TripTally API
// @version         1.0
// @description     Collaborative trip planning: shared expenses with percentage splits, balances, polls and payment settings.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("No .env file found, using environment variables")
	}

	logger.Init()

	// Load configuration
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET is required")
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	logger.Log.Info("Connected to database successfully")

	uploads, err := upload.NewStore(cfg.UploadDir)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to prepare upload directory")
	}

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, cfg.WebhookSecret)

	// Trip feature
	tripRepo := trip.NewRepository(db)
	tripService := trip.NewService(tripRepo)
	tripHandler := trip.NewHandler(tripService)

	// Payment feature
	paymentRepo := payment.NewRepository(db)
	paymentService := payment.NewService(paymentRepo, userService, uploads)
	paymentHandler := payment.NewHandler(paymentService, uploads)

	// Expense feature
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, tripService, userService, paymentService, uploads)
	expenseHandler := expense.NewHandler(expenseService, uploads)

	// Proposal feature
	proposalRepo := proposal.NewRepository(db)
	proposalService := proposal.NewService(proposalRepo, tripService, userService, uploads)
	proposalHandler := proposal.NewHandler(proposalService, uploads)

	// Capture feature
	captureRepo := capture.NewRepository(db)
	captureService := capture.NewService(captureRepo, tripService, userService, uploads)
	captureHandler := capture.NewHandler(captureService, uploads)

	cronRunner := scheduler.Start(proposalService)
	defer cronRunner.Stop()

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mw.RequestLogger)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler())

	// Uploaded files are served statically under /uploads/
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Identity provider webhooks authenticate by HMAC signature, not JWT
	r.Mount("/webhooks", userHandler.WebhookRoutes())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(cfg.JWTSecret))

		// Mount feature routers
		r.Mount("/users", userHandler.Routes())
		r.Mount("/trips", tripHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/proposals", proposalHandler.Routes())
		r.Mount("/payments", paymentHandler.Routes())
		r.Mount("/captures", captureHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Log.WithField("port", port).Info("Server starting")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Log.WithError(err).Fatal("Server failed to start")
	}
}
