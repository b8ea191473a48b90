// Command compare runs a product comparison against a local review dataset.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"review_compare/internal/adapters/csvsource"
	"review_compare/internal/adapters/inference"
	"review_compare/internal/adapters/observability"
	"review_compare/internal/app"
	"review_compare/internal/aspects"
	"review_compare/internal/domain"
	"review_compare/internal/sentiment"
)

type options struct {
	csvPath         string
	keywords        string
	modelURL        string
	modelKey        string
	jsonOut         bool
	noColor         bool
	scoreFromRating bool
	verbose         bool
	timeout         time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "compare PRODUCT PRODUCT [PRODUCT...]",
		Short: "Compare products by the sentiment of their regional-language reviews",
		Long: `Compare loads a review dataset, analyzes every named product and prints
overall scores, per-aspect scores, strengths, weaknesses and the winner.
Product names match case-insensitively on substrings of the dataset names.`,
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.csvPath, "csv", envOr("CSV_PATH", "reviews_dataset.csv"), "review dataset (CSV)")
	f.StringVar(&o.keywords, "keywords", os.Getenv("ASPECT_KEYWORDS_FILE"), "YAML file overriding aspect keywords")
	f.StringVar(&o.modelURL, "model-url", os.Getenv("MODEL_URL"), "sentiment model endpoint; keyword rules when empty")
	f.StringVar(&o.modelKey, "model-key", os.Getenv("MODEL_KEY"), "bearer token for --model-url")
	f.BoolVar(&o.jsonOut, "json", false, "print the comparison as JSON")
	f.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	f.BoolVar(&o.scoreFromRating, "score-from-rating", false, "derive sentiment from the star rating when the dataset has no score")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log loader warnings")
	f.DurationVar(&o.timeout, "timeout", 2*time.Minute, "overall deadline")
	return cmd
}

func run(cmd *cobra.Command, o options, products []string) error {
	level := "error"
	if o.verbose {
		level = "debug"
	}
	log.Logger = observability.NewLogger("dev", level).Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if o.noColor {
		color.NoColor = true
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	ds, err := csvsource.Load(o.csvPath, csvsource.Options{ScoreFromRating: o.scoreFromRating})
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	table, err := aspects.LoadTable(o.keywords)
	if err != nil {
		return err
	}
	scorer, err := newScorer(o)
	if err != nil {
		return err
	}

	an := app.NewAnalyzer(aspects.NewExtractor(table), scorer)
	res, err := app.NewCompareService(ds, an, nil, 0, 4).Compare(ctx, products)
	if err != nil {
		return err
	}

	if o.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	render(cmd.OutOrStdout(), res)
	return nil
}

func newScorer(o options) (domain.SentimentScorer, error) {
	if o.modelURL == "" {
		return sentiment.New(nil), nil
	}
	client, err := inference.New(o.modelURL, o.modelKey, 5)
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}
	return sentiment.New(client), nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
