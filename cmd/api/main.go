package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"studio/internal/adapter/repo"
	"studio/internal/auth"
	"studio/internal/catalog"
	"studio/internal/domain"
	"studio/internal/http/handlers"
	httpapi "studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/infra/geoip"
	"studio/internal/jobs"
	"studio/internal/profile"
	"studio/internal/providers/image"
	"studio/internal/providers/prompt"
	"studio/internal/storage"
	"studio/internal/uploads"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	// Konfigurasi & logger
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	jobRepo, closeRepo, err := openJobRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.JobStore).Msg("failed to open job store")
	}
	defer closeRepo()

	enhancer := newEnhancer(cfg, logger)
	generation, err := jobs.NewGenerationExecutor(jobs.GenerationOptions{
		Generator:  image.NewPlaceholder(0),
		Enhancer:   enhancer,
		DelayScale: cfg.GenerationDelayScale,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation executor")
	}
	jobSvc, err := jobs.NewService(jobs.Options{
		Repo: jobRepo,
		Executors: map[domain.JobKind]jobs.Executor{
			domain.JobKindGeneration: generation,
			domain.JobKindTraining: jobs.NewTrainingExecutor(jobs.TrainingOptions{
				Step:         cfg.TrainingStep,
				Interval:     cfg.TrainingInterval,
				ModelBaseURL: cfg.ModelBaseURL,
			}),
		},
		Retry: jobs.RetryPolicy{
			MaxAttempts: cfg.JobMaxAttempts,
			Timeout:     cfg.JobTimeout,
			BaseBackoff: cfg.JobBackoff,
			MaxBackoff:  cfg.JobMaxBackoff,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build job service")
	}
	if err := jobSvc.Recover(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to recover jobs")
	}

	cat, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}

	files, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage")
	}

	authClient, err := auth.NewClient(auth.ClientOptions{
		BaseURL:    cfg.IdentityURL,
		APIKey:     cfg.IdentityAnonKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build identity client")
	}
	authSvc, err := auth.NewService(auth.ServiceOptions{
		Client:    authClient,
		Flows:     auth.NewFlowStore(cfg.AuthFlowTTL),
		AppScheme: cfg.AppScheme,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build auth service")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	app := &handlers.App{
		Config:   cfg,
		Logger:   logger,
		Jobs:     jobSvc,
		Catalog:  cat,
		Auth:     authSvc,
		Uploads:  uploads.NewStore(files),
		Profiles: profile.NewService(cat),
		Enhancer: enhancer,
	}

	router := httpapi.NewRouter(app, cfg.JWTSecret, httpapi.Options{
		CORSOrigins:     cfg.CORSOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   resolver.Lookup(),
		RateLimitPerMin: cfg.RateLimitPerMin,
		JobStartsPerMin: cfg.JobStartsPerMin,
		JWTAudience:     cfg.JWTAudience,
		StaticDir:       files.BasePath(),
	})

	// HTTP server wrapper dari infra
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("store", cfg.JobStore).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	// Closing the job service ends open event streams.
	jobSvc.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// openJobRepository returns the job store selected by JOB_STORE and a func
// releasing its connections.
func openJobRepository(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.JobRepository, func(), error) {
	switch cfg.JobStore {
	case infra.JobStorePGX:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		r := repo.NewJobRepository(infra.NewSQLRunner(pool, logger))
		if err := r.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return r, pool.Close, nil
	case infra.JobStorePostgres, infra.JobStoreSQLite:
		var (
			open    = infra.OpenSQLite
			target  = cfg.SQLitePath
			dialect = repo.DialectSQLite
		)
		if cfg.JobStore == infra.JobStorePostgres {
			open, target, dialect = infra.OpenPostgres, cfg.DatabaseURL, repo.DialectPostgres
		}
		db, err := open(ctx, target)
		if err != nil {
			return nil, nil, err
		}
		r := repo.NewJobRepositorySQL(db, dialect)
		if err := r.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return r, func() { _ = db.Close() }, nil
	case infra.JobStoreMemory:
		return repo.NewJobRepositoryMemory(), func() {}, nil
	default:
		return nil, nil, errors.New("unknown job store " + cfg.JobStore)
	}
}

// newEnhancer returns the configured prompt enhancer. The OpenAI enhancer
// falls back to the static one on upstream failure.
func newEnhancer(cfg *infra.Config, logger zerolog.Logger) prompt.Enhancer {
	static := prompt.NewStaticEnhancer()
	if cfg.PromptProvider != "openai" {
		return static
	}
	enhancer, err := prompt.NewOpenAIEnhancer(prompt.OpenAIOptions{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
		HTTPClient:   &http.Client{Timeout: 20 * time.Second},
		Fallback:     static,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("prompt enhancer fell back to static")
		},
		OnWarning: func(reason, detail string) {
			logger.Warn().Str("reason", reason).Str("detail", detail).Msg("prompt enhancer warning")
		},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("openai enhancer unavailable, using static")
		return static
	}
	return enhancer
}

// loadCatalog builds the catalog from the embedded seed plus, when
// FEED_IMPORT_URL is set, the items of that feed. Import failures are logged.
func loadCatalog(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*catalog.Catalog, error) {
	seed, err := catalog.DefaultSeed()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(seed, nil)
	if err != nil {
		return nil, err
	}
	if cfg.FeedImportURL == "" {
		return cat, nil
	}
	importCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	importer := catalog.NewImporter(catalog.ImporterOptions{HTTPClient: &http.Client{Timeout: 15 * time.Second}})
	items, err := importer.ImportURL(importCtx, cfg.FeedImportURL)
	if err != nil {
		logger.Warn().Err(err).Str("url", cfg.FeedImportURL).Msg("feed import failed")
		return cat, nil
	}
	added, err := cat.AddExplore(items...)
	if err != nil {
		logger.Warn().Err(err).Msg("feed import partially applied")
	}
	logger.Info().Int("items", added).Str("url", cfg.FeedImportURL).Msg("feed imported")
	return cat, nil
}
