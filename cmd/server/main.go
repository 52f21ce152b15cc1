// @title           StagingPro Backend API
// @version         1.0.0
// @description     Production tracking for virtual staging orders: intake, checkout, editor assignment, delivery review and per-order chat.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"staging-pro-backend/docs"
	"staging-pro-backend/internal/catalog"
	"staging-pro-backend/internal/chat"
	"staging-pro-backend/internal/checkout"
	"staging-pro-backend/internal/config"
	"staging-pro-backend/internal/database"
	"staging-pro-backend/internal/handlers"
	"staging-pro-backend/internal/identity"
	"staging-pro-backend/internal/lifecycle"
	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/middleware"
	"staging-pro-backend/internal/minio"
	"staging-pro-backend/internal/models"
	"staging-pro-backend/internal/notify"
	"staging-pro-backend/internal/resend"
	"staging-pro-backend/internal/services"
	"staging-pro-backend/internal/store"
	"staging-pro-backend/internal/supabase"
	"staging-pro-backend/internal/visibility"
	"staging-pro-backend/internal/worker"
)

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load configuration", err)
	}

	logger.Init(&logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := slog.Default()

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx := context.Background()

	// Record store: hosted tables when Supabase is configured, otherwise in-memory
	var records store.RecordStore
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			fatal("failed to initialize Supabase client", err)
		}
		records = supabaseClient
	} else {
		log.Warn("SUPABASE_URL not set, using in-memory record store")
		records = store.NewMemoryStore()
	}

	// Migrations and schema drift report need a direct connection
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, migrations and schema check skipped")
	} else {
		migrator, err := database.NewMigrator(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn("failed to initialize migrator", "error", err)
		} else {
			defer migrator.Close()
			if err := migrator.Run(ctx); err != nil {
				log.Warn("migration failed", "error", err)
			}
			drift, err := supabase.NewDatabaseClient(migrator.DB()).CheckSchema(ctx)
			if err != nil {
				log.Warn("schema check failed", "error", err)
			}
			for _, d := range drift {
				log.Warn("schema drift detected", "table", d.Table, "column", d.Column, "fix", d.Statement)
			}
		}
	}

	// Blob store: MinIO, then Supabase storage, then in-memory
	var blobs store.BlobStore
	switch {
	case cfg.MinioEnabled():
		minioStore, err := minio.New(minio.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			fatal("failed to initialize MinIO client", err)
		}
		if err := minioStore.EnsureBucket(ctx); err != nil {
			fatal("failed to prepare MinIO bucket", err)
		}
		blobs = minioStore
	case cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "":
		storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
		if err != nil {
			fatal("failed to initialize storage client", err)
		}
		blobs = storageClient
	default:
		log.Warn("no blob store configured, uploads are kept in memory")
		blobs = store.NewMemoryBlobStore(cfg.BaseURL + "/blobs")
	}

	// Repositories
	submissions := store.NewSubmissionRepository(records)
	editors := store.NewEditorRepository(records)
	messages := store.NewMessageRepository(records)
	archive := store.NewArchiveRepository(records)

	// Plan catalog
	var initialPlans []models.Plan
	if cfg.PlanCatalogFile != "" {
		initialPlans, err = catalog.LoadFile(cfg.PlanCatalogFile)
	} else {
		initialPlans, err = catalog.Defaults()
	}
	if err != nil {
		fatal("failed to load plan catalog", err)
	}
	plans := catalog.New(store.NewPlanRepository(records), initialPlans)
	if err := plans.Refresh(ctx); err != nil {
		log.Warn("initial plan refresh failed", "error", err)
	}

	scheduler := worker.NewScheduler(log)
	if err := scheduler.Add("catalog-refresh", cfg.CatalogRefreshSchedule, 30*time.Second, plans.Refresh); err != nil {
		fatal("failed to schedule catalog refresh", err)
	}
	scheduler.Start()

	// Notifications: queued through Redis when available, inline otherwise
	resendClient := resend.NewClient(resend.DefaultBaseURL, cfg.ResendAPIKey)
	if !resendClient.Configured() {
		log.Warn("RESEND_API_KEY not set, emails will fail and be logged")
	}
	deliverer := notify.NewResendDeliverer(resendClient, cfg.EmailFrom)

	var queue notify.Queue
	stopWorker := func() {}
	if cfg.RedisURL != "" {
		q, err := worker.NewQueue(cfg.RedisURL)
		if err != nil {
			fatal("failed to initialize email queue", err)
		}
		defer q.Close()
		stop, err := worker.Start(cfg.RedisURL, log, deliverer)
		if err != nil {
			fatal("failed to start email worker", err)
		}
		queue = q
		stopWorker = stop
	}
	dispatcher := notify.NewDispatcher(plans, deliverer, queue, cfg.AppURL)

	// Checkout
	var provider checkout.Provider
	var webhookParser handlers.WebhookParser
	if cfg.StripeSecretKey != "" {
		stripeProvider := checkout.NewStripeProvider(checkout.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			Currency:      cfg.CheckoutCurrency,
			AppURL:        cfg.AppURL,
		})
		provider = stripeProvider
		if cfg.StripeWebhookSecret != "" {
			webhookParser = stripeProvider
		}
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}

	// Core services
	engine := lifecycle.NewEngine(submissions, editors, plans, dispatcher, lifecycle.Policy{
		AdminDeliveryCompletes: cfg.AdminDeliveryCompletes,
	})
	studio := services.NewStudioService(engine, submissions, plans, blobs, checkout.NewService(provider))
	studio.SetTrustUnverifiedPayments(!cfg.IsProduction())
	threads := chat.NewService(messages)
	filter := visibility.NewFilter(cfg.Location())
	tracker := identity.NewTracker(identity.NewResolver(identity.NewAllowList(cfg.AdminEmails), editors))

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(plans, tracker)
	submissionsHandler := handlers.NewSubmissionsHandler(engine, studio, submissions, editors, threads, filter)
	messagesHandler := handlers.NewMessagesHandler(threads, submissions, cfg.ChatPollInterval)
	editorsHandler := handlers.NewEditorsHandler(editors)
	archiveHandler := handlers.NewArchiveHandler(archive)
	webhookHandler := handlers.NewWebhookHandler(webhookParser, studio)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// Public routes
	public := router.Group("/api/v1")
	public.GET("/plans", accountHandler.Plans)
	public.GET("/archive", archiveHandler.ListArchive)

	// Webhook (no auth, verified by signature)
	public.POST("/webhooks/stripe", webhookHandler.HandleStripeWebhook)

	// Authenticated routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))
	api.Use(middleware.Identity(tracker))

	staff := middleware.RequireRole(models.RoleAdmin, models.RoleEditor)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	api.GET("/me", accountHandler.Me)
	api.POST("/signout", accountHandler.SignOut)

	// Submissions
	api.GET("/submissions", submissionsHandler.ListSubmissions)
	api.POST("/submissions", submissionsHandler.CreateSubmission)
	api.GET("/submissions/:id", submissionsHandler.GetSubmission)
	api.DELETE("/submissions/:id", adminOnly, submissionsHandler.DeleteSubmission)
	api.POST("/submissions/:id/assign", adminOnly, submissionsHandler.Assign)
	api.POST("/submissions/:id/deliverables", staff, submissionsHandler.Deliver)
	api.POST("/submissions/:id/approve", adminOnly, submissionsHandler.Approve)
	api.POST("/submissions/:id/reject", adminOnly, submissionsHandler.Reject)
	api.POST("/submissions/:id/quote", adminOnly, submissionsHandler.SetQuote)

	// Payments
	api.POST("/submissions/:id/checkout", submissionsHandler.Checkout)
	api.POST("/submissions/:id/payment/confirm", submissionsHandler.ConfirmPayment)

	// Chat
	api.GET("/submissions/:id/messages", messagesHandler.ListMessages)
	api.POST("/submissions/:id/messages", messagesHandler.PostMessage)
	api.GET("/submissions/:id/messages/stream", messagesHandler.StreamMessages)

	// Roster and showcase
	api.GET("/editors", staff, editorsHandler.ListEditors)
	api.POST("/editors", adminOnly, editorsHandler.CreateEditor)
	api.DELETE("/editors/:id", adminOnly, editorsHandler.DeleteEditor)
	api.POST("/archive", adminOnly, archiveHandler.CreateArchive)
	api.DELETE("/archive/:id", adminOnly, archiveHandler.DeleteArchive)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}

	scheduler.Stop()
	dispatcher.Wait()
	stopWorker()
	log.Info("server stopped")
}
