//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"review_compare/internal/domain"
	mysqlrepo "review_compare/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string     { return &s }
func pint(i int) *int           { return &i }
func pfloat(f float64) *float64 { return &f }

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

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	mustEnv(t, "MIGRATIONS_DIR")

	// Let Docker pick a free host port.
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
	return db
}

// ---------- the test ----------
func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	rs := []domain.Review{
		{
			Product: "Pixel 8", Category: pstr("smartphone"), SourceID: pstr("s-1"),
			Text: "कैमरा बहुत अच्छा है", Rating: pint(5), Language: domain.LangHindi,
			Source: pstr("csv"),
		},
		{
			Product: "Pixel 8", Category: pstr("smartphone"), SourceID: pstr("s-2"),
			Text: "बॅटरी खराब आहे", SentimentScore: pfloat(0.2), Aspect: pstr("battery"),
			Language: domain.LangMarathi,
		},
		{
			Product: "Boat 100%_Bass", Category: pstr("audio"), SourceID: pstr("s-1"),
			Text: "आवाज़ ठीक है",
		},
	}
	if err := repo.UpsertReviews(ctx, rs); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}

	// Re-ingest: NULLs must not wipe stored values.
	again := rs[0]
	again.Rating = nil
	again.Text = "कैमरा बढ़िया है"
	if err := repo.UpsertReviews(ctx, []domain.Review{again}); err != nil {
		t.Fatalf("UpsertReviews again: %v", err)
	}

	res, err := repo.Fetch(ctx, "pixel")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !res.Found || len(res.Reviews) != 2 {
		t.Fatalf("unexpected fetch: %+v", res)
	}
	first := res.Reviews[0]
	if first.Text != "कैमरा बढ़िया है" || first.Rating == nil || *first.Rating != 5 {
		t.Fatalf("upsert did not merge: %+v", first)
	}
	second := res.Reviews[1]
	if second.SentimentScore == nil || *second.SentimentScore != 0.2 || second.Lang() != domain.LangMarathi {
		t.Fatalf("unexpected second review: %+v", second)
	}
	if res.Reviews[1].Rating != nil {
		t.Fatalf("rating should stay NULL")
	}

	// LIKE wildcards in the query are literal.
	if res, _ := repo.Fetch(ctx, "100%_"); len(res.Reviews) != 1 {
		t.Fatalf("escaped fetch: %+v", res)
	}
	if res, _ := repo.Fetch(ctx, "p_xel"); res.Found {
		t.Fatalf("underscore matched as wildcard")
	}

	products, err := repo.Products(ctx, "")
	if err != nil || !reflect.DeepEqual(products, []string{"Boat 100%_Bass", "Pixel 8"}) {
		t.Fatalf("Products: %v %v", products, err)
	}
	phones, _ := repo.Products(ctx, "smartphone")
	if !reflect.DeepEqual(phones, []string{"Pixel 8"}) {
		t.Fatalf("Products(smartphone): %v", phones)
	}
	cats, _ := repo.Categories(ctx)
	if !reflect.DeepEqual(cats, []string{"audio", "smartphone"}) {
		t.Fatalf("Categories: %v", cats)
	}
	hits, _ := repo.Search(ctx, "PIXEL", "")
	if !reflect.DeepEqual(hits, []string{"Pixel 8"}) {
		t.Fatalf("Search: %v", hits)
	}
	cat, err := repo.Category(ctx, "boat")
	if err != nil || cat != "audio" {
		t.Fatalf("Category: %q %v", cat, err)
	}
	if _, err := repo.Category(ctx, "nokia"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	if err := repo.LogMiss(ctx, "Nokia 3310", "not_found"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
	if err := repo.LogMiss(ctx, "nokia 3310", "no_reviews"); err != nil {
		t.Fatalf("LogMiss again: %v", err)
	}
	var reason string
	if err := db.QueryRow("SELECT reason FROM ingest_misses WHERE product_key = ?", "nokia 3310").Scan(&reason); err != nil || reason != "no_reviews" {
		t.Fatalf("miss row: %q %v", reason, err)
	}
}

func TestRepo_MySQL_RejectsMissingSourceID(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	err := repo.UpsertReviews(context.Background(), []domain.Review{{Product: "X", Text: "t"}})
	if err == nil {
		t.Fatalf("expected error for review without source id")
	}
}
