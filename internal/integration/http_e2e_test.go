//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "review_compare/internal/adapters/http_server"
	rediscache "review_compare/internal/adapters/redis"
	"review_compare/internal/app"
	"review_compare/internal/aspects"
	"review_compare/internal/domain"
	"review_compare/internal/sentiment"
	mysqlrepo "review_compare/internal/storage/mysql"
)

// ---------- helpers ----------
func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Skipf("%s not set; export it (e.g. MIGRATIONS_DIR=$PWD/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

// ---------- the test ----------
func TestHTTP_EndToEnd_IngestThenCompare(t *testing.T) {
	mustEnv(t, "MIGRATIONS_DIR")

	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviews",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		"root", hostPort, "reviews")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	// Wire the real stack: MySQL repo, redis memo, rules scorer.
	repo := mysqlrepo.New(db)
	mr := miniredis.RunT(t)
	cache := rediscache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	ex := aspects.NewExtractor(nil)
	an := app.NewAnalyzer(ex, sentiment.NewRules())
	srv := httpserver.New(httpserver.Options{Timeout: 10 * time.Second})
	srv.MountHandlers(&httpserver.Handlers{
		Compare: app.NewCompareService(repo, an, cache, time.Minute, 2),
		Q: app.NewQueryService(repo, repo, an, ex, cache, app.QueryOptions{
			Version: "e2e", DataSource: "mysql", CacheTTL: time.Minute,
		}),
		Ingest:      app.NewIngestionService(repo, cache),
		MinProducts: 2,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// Ingest over HTTP
	res := post(t, ts.URL+"/api/product/Pixel%208/reviews", `{"category":"smartphone","reviews":[
		{"review_text":"कैमरा बहुत अच्छा है","sentiment_score":0.9,"language":"hindi"},
		{"review_text":"बॅटरी चांगली आहे","sentiment_score":0.7,"language":"marathi"}]}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("ingest status %d", res.StatusCode)
	}
	res.Body.Close()
	res = post(t, ts.URL+"/api/product/Boat%20Rockerz/reviews", `{"category":"audio","reviews":[
		{"text":"आवाज़ खराब है","sentiment_score":0.3}]}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("ingest status %d", res.StatusCode)
	}
	res.Body.Close()

	// Compare
	res = post(t, ts.URL+"/api/compare", `{"products":["Pixel 8","Boat Rockerz","Nokia 3310"]}`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("compare status %d", res.StatusCode)
	}
	var body domain.ComparisonResult
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	c := body.Comparison
	if c.Winner != "Pixel 8" {
		t.Fatalf("winner = %q", c.Winner)
	}
	if len(c.Overall) != 3 || c.Overall[0].Score != 8.0 || c.Overall[1].Score != 3.0 || c.Overall[2].Score != 0 {
		t.Fatalf("overall = %+v", c.Overall)
	}
	if !c.ReviewsFound["Pixel 8"] || c.ReviewsFound["Nokia 3310"] {
		t.Fatalf("reviewsFound = %v", c.ReviewsFound)
	}
	if c.LanguageStats["Pixel 8"][domain.LangMarathi] != 1 {
		t.Fatalf("languageStats = %v", c.LanguageStats)
	}
	if keys := mr.Keys(); len(keys) == 0 {
		t.Fatalf("comparison was not memoized")
	}

	// A new review evicts the memo.
	res2 := post(t, ts.URL+"/api/product/Boat%20Rockerz/reviews", `{"reviews":[{"text":"ठीक है","sentiment_score":0.5}]}`)
	res2.Body.Close()
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "compare:") {
			t.Fatalf("stale memo %q survived ingest", k)
		}
	}

	// Catalog reads go through the same repository.
	res3, err := http.Get(ts.URL + "/api/products?category=audio")
	if err != nil {
		t.Fatalf("GET products: %v", err)
	}
	defer res3.Body.Close()
	var list struct {
		Products []string `json:"products"`
		Total    int      `json:"total"`
	}
	if err := json.NewDecoder(res3.Body).Decode(&list); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if list.Total != 1 || list.Products[0] != "Boat Rockerz" {
		t.Fatalf("products = %+v", list)
	}

	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM reviews").Scan(&n); err != nil || n != 4 {
		t.Fatalf("stored reviews = %d (%v)", n, err)
	}
}
