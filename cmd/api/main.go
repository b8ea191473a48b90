package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"review_compare/internal/adapters/csvsource"
	server "review_compare/internal/adapters/http_server"
	"review_compare/internal/adapters/inference"
	"review_compare/internal/adapters/observability"
	redisad "review_compare/internal/adapters/redis"
	"review_compare/internal/adapters/scraper"
	"review_compare/internal/app"
	"review_compare/internal/aspects"
	"review_compare/internal/domain"
	"review_compare/internal/sentiment"
	"review_compare/internal/shared"
	mysqlrepo "review_compare/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := aspects.LoadTable(cfg.AspectKeywordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("aspect table")
	}
	ex := aspects.NewExtractor(table)
	an := app.NewAnalyzer(ex, newScorer(cfg))

	// reviews
	var (
		src    domain.ReviewSource
		cat    domain.Catalog
		ingest *app.IngestionService
		cache  domain.Cache
	)
	if cfg.CacheEnabled {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, caching disabled")
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	switch cfg.DataSource {
	case shared.SourceMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		defer db.Close()
		log.Info().Msg("database connection ok")
		repo := mysqlrepo.New(db)
		src, cat = repo, repo
		ingest = app.NewIngestionService(repo, cache)
	case shared.SourceScrape:
		src = scraper.New(scraper.Options{
			MaxPages:    cfg.ScrapeMaxPages,
			RPS:         cfg.ScrapeRPS,
			KeepEnglish: cfg.ScrapeKeepEnglish,
		})
		log.Info().Msg("live scraping enabled; catalog endpoints are empty")
	default:
		ds, err := csvsource.Load(cfg.CSVPath, csvsource.Options{ScoreFromRating: cfg.ScoreFromRating})
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CSVPath).Msg("dataset load failed")
		}
		log.Info().Int("reviews", ds.Len()).Str("path", cfg.CSVPath).Msg("dataset loaded")
		src, cat = ds, ds
	}

	// deps
	cmp := app.NewCompareService(src, an, cache, cfg.CacheTTL, cfg.CompareWorkers)
	q := app.NewQueryService(cat, src, an, ex, cache, app.QueryOptions{
		Version:    shared.Version,
		DataSource: cfg.DataSource,
		CacheTTL:   cfg.CacheTTL,
	})

	// http
	srv := server.New(server.Options{Timeout: cfg.HTTPTimeout, CORSOrigins: cfg.CORSOrigins})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Compare:     cmp,
		Q:           q,
		Ingest:      ingest,
		MinProducts: cfg.MinCompareProducts,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("data_source", cfg.DataSource).Str("version", shared.Version).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdown)
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// newScorer uses the hosted model when MODEL_URL is set, keyword rules otherwise.
func newScorer(cfg shared.Config) domain.SentimentScorer {
	if cfg.ModelURL == "" {
		return sentiment.New(nil)
	}
	client, err := inference.New(cfg.ModelURL, cfg.ModelKey, cfg.ModelRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize model client")
	}
	log.Info().Str("model", cfg.ModelURL).Msg("sentiment model enabled")
	return sentiment.New(client)
}
