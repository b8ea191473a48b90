package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const Version = "3.0.0"

// Data sources for reviews.
const (
	SourceCSV    = "csv"
	SourceMySQL  = "mysql"
	SourceScrape = "scrape"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	HTTPTimeout time.Duration
	CORSOrigins []string

	DataSource      string
	CSVPath         string
	ScoreFromRating bool
	MySQLDSN        string

	RedisAddr    string
	RedisDB      int
	RedisPass    string
	CacheEnabled bool
	CacheTTL     time.Duration

	AspectKeywordsFile string
	ModelURL           string
	ModelKey           string
	ModelRPS           int

	ScrapeMaxPages    int
	ScrapeRPS         int
	ScrapeKeepEnglish bool
	// ScrapeTargets maps product name to review page URL for the ingestor.
	ScrapeTargets map[string]string

	CompareWorkers     int
	MinCompareProducts int
	IngestWorkers      int
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":5000"),
		MetricsAddr: env("METRICS_ADDR", ""),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
		CORSOrigins: list("CORS_ORIGINS"),

		DataSource:      strings.ToLower(env("DATA_SOURCE", SourceCSV)),
		CSVPath:         env("CSV_PATH", "reviews_dataset.csv"),
		ScoreFromRating: boolean("SCORE_FROM_RATING", false),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4&loc=UTC"),

		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		CacheEnabled: boolean("CACHE_ENABLED", false),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		AspectKeywordsFile: env("ASPECT_KEYWORDS_FILE", ""),
		ModelURL:           env("MODEL_URL", ""),
		ModelKey:           env("MODEL_KEY", ""),
		ModelRPS:           atoi("MODEL_RPS", 5),

		ScrapeMaxPages:    atoi("SCRAPE_MAX_PAGES", 3),
		ScrapeRPS:         atoi("SCRAPE_RPS", 1),
		ScrapeKeepEnglish: boolean("SCRAPE_KEEP_ENGLISH", false),
		ScrapeTargets:     pairs("SCRAPE_TARGETS"),

		CompareWorkers:     atoi("COMPARE_WORKERS", 4),
		MinCompareProducts: atoi("MIN_COMPARE_PRODUCTS", 2),
		IngestWorkers:      atoi("INGEST_WORKERS", 8),
	}

	switch c.DataSource {
	case SourceCSV, SourceMySQL, SourceScrape:
	default:
		log.Warn().Str("data_source", c.DataSource).Msg("unknown DATA_SOURCE, using csv")
		c.DataSource = SourceCSV
	}
	if c.ModelURL == "" {
		log.Debug().Msg("MODEL_URL is empty, scoring with keyword rules")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func boolean(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// list splits a comma separated value, dropping blanks.
func list(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pairs parses "name=url;name=url". URLs may contain commas, so ';' separates.
func pairs(k string) map[string]string {
	out := map[string]string{}
	for _, p := range strings.Split(os.Getenv(k), ";") {
		name, u, ok := strings.Cut(p, "=")
		name, u = strings.TrimSpace(name), strings.TrimSpace(u)
		if ok && name != "" && u != "" {
			out[name] = u
		}
	}
	return out
}
