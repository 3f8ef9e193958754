package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apexfab/roofmate/internal/api/handlers"
	"github.com/apexfab/roofmate/internal/config"
	"github.com/apexfab/roofmate/internal/database"
	"github.com/apexfab/roofmate/internal/jobs"
	"github.com/apexfab/roofmate/internal/openai"
	"github.com/apexfab/roofmate/internal/repository"
	"github.com/apexfab/roofmate/internal/routing"
	"github.com/apexfab/roofmate/internal/server"
	"github.com/apexfab/roofmate/internal/service"
	"github.com/apexfab/roofmate/internal/storage"
	"github.com/apexfab/roofmate/internal/taxonomy"
	"github.com/apexfab/roofmate/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the roofmate API server on the specified port",
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

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
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

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	var resolver *routing.Resolver
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		resolver = routing.NewResolverWithOptions(
			s3Client,
			time.Duration(cfg.ProbeTimeoutSeconds)*time.Second,
			cfg.GlobalDocKey,
		)
	}

	embeddingClient := openai.NewClient(cfg.OpenAIAPIKey)

	var embeddingWorker *jobs.Worker
	if cfg.HasOpenAI() {
		embeddingSvc := service.NewEmbeddingService(embeddingClient, docRepo, chunkRepo)
		embeddingProcessor := jobs.NewEmbeddingWorker(embeddingJobRepo, embeddingSvc)
		embeddingWorker = jobs.NewWorker(embeddingProcessor, 10*time.Second)
		go embeddingWorker.Start(ctx)
		log.Println("embedding worker started")
	}

	registry := taxonomy.NewRegistry(taxonomy.DefaultSolutions())
	matcher := taxonomy.NewMatcher(registry)

	retrievalSvc := service.NewRetrievalServiceWithConfig(chunkRepo, embeddingClient, service.RetrievalConfig{
		MatchCount:      cfg.MatchCount,
		ContextMaxChars: cfg.ContextMaxChars,
	})
	knowledgeSvc := service.NewKnowledgeService(docRepo, embeddingJobRepo)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, txRunner)

	var prober handlers.FolderProber
	var folderResolver handlers.FolderResolver
	if resolver != nil {
		prober = resolver
		folderResolver = resolver
	} else {
		noop := &noProbeResolver{}
		folderResolver = noop
		log.Println("storage not configured: folder probing disabled")
	}

	routerCfg := server.RouterConfig{
		ReviewerToken:    cfg.ReviewerToken,
		AskHandler:       handlers.NewAskHandler(matcher, retrievalSvc, prober),
		FoldersHandler:   handlers.NewFoldersHandler(folderResolver),
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		FeedbackHandler:  handlers.NewFeedbackHandler(feedbackSvc),
	}

	router := server.NewRouter(routerCfg)

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

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// noProbeResolver answers folder resolution with candidates only when no
// storage backend is configured. Every probe reports all-failed.
type noProbeResolver struct{}

func (r *noProbeResolver) Resolve(ctx context.Context, p routing.Product) routing.ProbeResult {
	candidates := routing.CandidatePrefixes(p)
	result := routing.ProbeResult{Status: routing.ProbeAllFailed}
	if len(candidates) > 0 {
		result.Prefix = candidates[0]
	}
	return result
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

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
