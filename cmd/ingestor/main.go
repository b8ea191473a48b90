package main

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_compare/internal/adapters/csvsource"
	"review_compare/internal/adapters/observability"
	redisad "review_compare/internal/adapters/redis"
	"review_compare/internal/adapters/scraper"
	"review_compare/internal/app"
	"review_compare/internal/domain"
	"review_compare/internal/shared"
	mysqlrepo "review_compare/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel).
		With().Str("run", uuid.NewString()).Logger()

	log.Info().
		Str("csv", cfg.CSVPath).
		Int("targets", len(cfg.ScrapeTargets)).
		Int("workers", cfg.IngestWorkers).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	var cache domain.Cache
	if cfg.CacheEnabled {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, stale cache entries expire by TTL")
		} else {
			cache = rc
		}
	}
	ing := app.NewIngestionService(repo, cache)

	workers := cfg.IngestWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var total, failed atomic.Int64

	// acquire before launching the goroutine; release inside it
	run := func(product string, job func() (int, error)) {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			n, err := job()
			if err != nil {
				failed.Add(1)
				log.Warn().Str("product", product).Err(err).Msg("ingest failed")
				return
			}
			total.Add(int64(n))
			log.Info().Str("product", product).Int("reviews", n).Msg("ingest ok")
		}()
	}

	// 2) CSV dataset
	if _, err := os.Stat(cfg.CSVPath); err == nil {
		ds, err := csvsource.Load(cfg.CSVPath, csvsource.Options{ScoreFromRating: cfg.ScoreFromRating})
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CSVPath).Msg("dataset load failed")
		}
		names, byProduct := ds.Grouped()
		for _, name := range names {
			reviews := byProduct[name]
			run(name, func() (int, error) { return ing.IngestProduct(ctx, name, "", reviews) })
		}
	} else {
		log.Info().Str("path", cfg.CSVPath).Msg("no dataset file, skipping csv")
	}

	// 3) live review pages
	if len(cfg.ScrapeTargets) > 0 {
		sc := scraper.New(scraper.Options{
			MaxPages:    cfg.ScrapeMaxPages,
			RPS:         cfg.ScrapeRPS,
			KeepEnglish: cfg.ScrapeKeepEnglish,
		})
		targets := targetSource{sc: sc, urls: cfg.ScrapeTargets}
		for name := range cfg.ScrapeTargets {
			run(name, func() (int, error) { return ing.IngestSource(ctx, targets, name, "") })
		}
	}

	wg.Wait()
	log.Info().Int64("reviews", total.Load()).Int64("failed", failed.Load()).Msg("ingestion completed")
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

// targetSource resolves product names to their configured review pages.
type targetSource struct {
	sc   *scraper.Scraper
	urls map[string]string
}

func (t targetSource) Fetch(ctx context.Context, product string) (domain.SourceResult, error) {
	u, ok := t.urls[product]
	if !ok {
		return domain.SourceResult{}, domain.ErrNotFound
	}
	return t.sc.Fetch(ctx, u)
}
