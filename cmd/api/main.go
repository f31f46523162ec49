package main

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/ticket-triage/internal/application"
	apppipeline "github.com/bryanwahyu/ticket-triage/internal/application/pipeline"
	apptickets "github.com/bryanwahyu/ticket-triage/internal/application/tickets"
	"github.com/bryanwahyu/ticket-triage/internal/config"
	"github.com/bryanwahyu/ticket-triage/internal/domain/analysis"
	"github.com/bryanwahyu/ticket-triage/internal/domain/classify"
	"github.com/bryanwahyu/ticket-triage/internal/domain/tickets"
	keywordclf "github.com/bryanwahyu/ticket-triage/internal/infra/classifier/keyword"
	openaiclf "github.com/bryanwahyu/ticket-triage/internal/infra/classifier/openai"
	mysqldb "github.com/bryanwahyu/ticket-triage/internal/infra/db/mysql"
	pgdb "github.com/bryanwahyu/ticket-triage/internal/infra/db/postgres"
	sqlitedb "github.com/bryanwahyu/ticket-triage/internal/infra/db/sqlite"
	"github.com/bryanwahyu/ticket-triage/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/ticket-triage/internal/infra/storage"
	"github.com/bryanwahyu/ticket-triage/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect storage backend
	db, ticketRepo, analysisRepo, err := openRepos(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect error: %v", err)
	}
	defer db.Close()

	// pick classifier
	var clf classify.Classifier
	switch cfg.Classifier.Provider {
	case "keyword", "":
		clf = keywordclf.New()
	case "openai":
		if cfg.Classifier.APIKey == "" {
			log.Fatal("classifier provider openai requires an api key")
		}
		clf = openaiclf.NewClient(cfg.Classifier.APIKey, cfg.Classifier.Model)
	default:
		log.Fatalf("unknown classifier provider: %q", cfg.Classifier.Provider)
	}

	// optional run-report archive
	var reports analysis.ReportStore
	if cfg.Archive.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Archive.Endpoint,
			cfg.Archive.Region,
			cfg.Archive.Bucket,
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			cfg.Archive.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		reports = store
	}

	// init services
	clock := application.SystemClock{}
	ticketsSvc := &apptickets.Service{Repo: ticketRepo, Clock: clock}
	pipelineSvc := &apppipeline.Service{
		Tickets:    ticketRepo,
		Analyses:   analysisRepo,
		Classifier: clf,
		Reports:    reports,
		Clock:      clock,
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.RateLimitMiddleware(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec))
	mux.Use(middleware.APIKeyAuth(cfg.Server.APIKey))

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(ticketsSvc, pipelineSvc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s (db=%s classifier=%s)", addr, cfg.Database.Driver, cfg.Classifier.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// openRepos connects the configured backend and builds both repositories.
func openRepos(ctx context.Context, cfg *config.Config) (*sql.DB, tickets.Repository, analysis.Repository, error) {
	switch cfg.Database.Driver {
	case "sqlite", "":
		db, err := sqlitedb.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, sqlitedb.NewTicketRepository(db), sqlitedb.NewAnalysisRepository(db), nil
	case "postgres":
		db, err := pgdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return db, pgdb.NewTicketRepository(db), pgdb.NewAnalysisRepository(db), nil
	case "mysql":
		db, err := mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return db, mysqldb.NewTicketRepository(db), mysqldb.NewAnalysisRepository(db), nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}
}
