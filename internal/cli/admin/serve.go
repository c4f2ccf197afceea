package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flightdeck-ai/flightdeck/internal/api/handlers"
	"github.com/flightdeck-ai/flightdeck/internal/api/middleware"
	"github.com/flightdeck-ai/flightdeck/internal/config"
	"github.com/flightdeck-ai/flightdeck/internal/database"
	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/jobs"
	"github.com/flightdeck-ai/flightdeck/internal/openai"
	"github.com/flightdeck-ai/flightdeck/internal/repository"
	"github.com/flightdeck-ai/flightdeck/internal/server"
	"github.com/flightdeck-ai/flightdeck/internal/service"
	"github.com/flightdeck-ai/flightdeck/internal/storage"
	"github.com/flightdeck-ai/flightdeck/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

const sweepInterval = 15 * time.Minute

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the flightdeck API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	userRepo := repository.NewUserRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	convRepo := repository.NewConversationRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)

	if cfg.InitAdminEmail != "" {
		if err := bootstrapInitialAdmin(ctx, cfg, userRepo, authSvc); err != nil {
			return fmt.Errorf("failed to bootstrap initial admin: %w", err)
		}
	}

	var s3Client *storage.S3Client
	if cfg.HasS3() {
		s3Client, err = storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
	}

	var aiClient *openai.Client
	if cfg.HasOpenAI() {
		aiClient = openai.NewClientWithConfig(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			ChatModel:   cfg.ChatModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	}

	var ingestSvc handlers.IngestService = &noOpIngestService{}
	var sweepWorker *jobs.Worker
	if s3Client != nil && aiClient != nil {
		ingestSvc = service.NewIngestService(txRunner, s3Client, aiClient, cfg.ChunkSize, cfg.MaxUploadBytes)
		sweepWorker = jobs.NewWorker("sweep", jobs.NewOrphanSweep(docRepo, s3Client), sweepInterval)
		go sweepWorker.Start(ctx)
	}

	var querySvc handlers.QueryService = &noOpQueryService{}
	if aiClient != nil {
		querySvc = service.NewQueryService(aiClient, aiClient, chunkRepo, convRepo, docRepo, userRepo)
	}

	router := server.NewRouter(server.RouterConfig{
		TokenVerifier:       &tokenVerifierAdapter{svc: authSvc},
		MaxBodyBytes:        cfg.MaxUploadBytes + 1<<20,
		AuthHandler:         handlers.NewAuthHandler(authSvc),
		DocumentHandler:     handlers.NewDocumentHandler(service.NewDocumentService(docRepo), ingestSvc),
		ChatHandler:         handlers.NewChatHandler(querySvc),
		ConversationHandler: handlers.NewConversationHandler(service.NewConversationService(convRepo)),
		UserHandler:         handlers.NewUserHandler(service.NewUserService(userRepo)),
		AnalyticsHandler:    handlers.NewAnalyticsHandler(service.NewAnalyticsService(analyticsRepo)),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if sweepWorker != nil {
		sweepWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// tokenVerifierAdapter bridges the auth service to the middleware's
// verifier interface.
type tokenVerifierAdapter struct {
	svc *service.AuthService
}

func (a *tokenVerifierAdapter) VerifyToken(ctx context.Context, token string) (*middleware.Identity, error) {
	claims, err := a.svc.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &middleware.Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

type noOpIngestService struct{}

func (s *noOpIngestService) Upload(ctx context.Context, input service.UploadInput) (*domain.Document, error) {
	return nil, fmt.Errorf("ingestion not configured: S3_ENDPOINT and OPENAI_API_KEY required")
}

type noOpQueryService struct{}

func (s *noOpQueryService) Query(ctx context.Context, input service.QueryInput) (*service.QueryResult, error) {
	return nil, fmt.Errorf("chat not configured: OPENAI_API_KEY required")
}

func bootstrapInitialAdmin(ctx context.Context, cfg *config.Config, userRepo *repository.UserRepository, authSvc *service.AuthService) error {
	existing, err := userRepo.GetByEmail(ctx, cfg.InitAdminEmail)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("failed to check existing admin: %w", err)
	}
	if existing != nil {
		log.Printf("bootstrap: admin '%s' already exists (id: %s)", existing.Email, existing.ID)
		return nil
	}

	if cfg.InitAdminPassword == "" {
		return fmt.Errorf("FLIGHTDECK_INIT_ADMIN_PASSWORD is required to bootstrap the admin user")
	}

	name := cfg.InitAdminName
	if name == "" {
		name = "Administrator"
	}

	admin, err := authSvc.Register(ctx, service.RegisterInput{
		Name:     name,
		Email:    cfg.InitAdminEmail,
		Password: cfg.InitAdminPassword,
		Role:     domain.UserRoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("bootstrap: created admin '%s' (id: %s)", admin.Email, admin.ID)
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if upErr == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
