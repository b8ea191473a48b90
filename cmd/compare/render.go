package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"review_compare/internal/app"
	"review_compare/internal/domain"
)

var (
	bold  = color.New(color.Bold)
	good  = color.New(color.FgGreen)
	mid   = color.New(color.FgYellow)
	bad   = color.New(color.FgRed)
	faint = color.New(color.Faint)
	crown = color.New(color.FgGreen, color.Bold)
)

func sentimentColor(s domain.Sentiment) *color.Color {
	switch s {
	case domain.SentimentPositive:
		return good
	case domain.SentimentNeutral:
		return mid
	case domain.SentimentNegative:
		return bad
	}
	return faint
}

func aspectColor(score int) *color.Color {
	switch {
	case score > app.StrengthCutoff:
		return good
	case score < app.WeaknessCutoff:
		return bad
	}
	return mid
}

// render prints a human summary of res to w.
func render(w io.Writer, res domain.ComparisonResult) {
	c := res.Comparison
	width := len("Aspect")
	for _, p := range res.Products {
		if n := utf8.RuneCountInString(p); n > width {
			width = n
		}
	}

	bold.Fprintln(w, "Overall")
	for _, e := range c.Overall {
		fmt.Fprintf(w, "  %-*s ", width, e.Name)
		if !c.ReviewsFound[e.Name] {
			faint.Fprintln(w, "no reviews found")
			continue
		}
		sentimentColor(e.Sentiment).Fprintf(w, "%4.1f/10  %s\n", e.Score, e.Sentiment)
	}

	fmt.Fprintln(w)
	bold.Fprintf(w, "  %-*s", width, "Aspect")
	for _, p := range res.Products {
		bold.Fprintf(w, "  %*s", cellWidth(p), p)
	}
	fmt.Fprintln(w)
	for _, row := range c.Aspects {
		fmt.Fprintf(w, "  %-*s", width, row.Aspect)
		for i, p := range row.Products {
			aspectColor(row.Scores[i]).Fprintf(w, "  %*d", cellWidth(p), row.Scores[i])
		}
		fmt.Fprintln(w)
	}

	for _, p := range res.Products {
		if !c.ReviewsFound[p] {
			continue
		}
		fmt.Fprintln(w)
		bold.Fprintln(w, p)
		good.Fprintf(w, "  + %s\n", strings.Join(c.Strengths[p], ", "))
		bad.Fprintf(w, "  - %s\n", strings.Join(c.Weaknesses[p], ", "))
		if stats := c.LanguageStats[p]; len(stats) > 0 {
			faint.Fprintf(w, "  hindi %d, marathi %d\n", stats[domain.LangHindi], stats[domain.LangMarathi])
		}
	}

	fmt.Fprintln(w)
	if c.Winner == domain.NoDataWinner {
		faint.Fprintln(w, c.Winner)
		return
	}
	fmt.Fprint(w, "Winner: ")
	crown.Fprintln(w, c.Winner)
}

func cellWidth(p string) int {
	if n := utf8.RuneCountInString(p); n > 3 {
		return n
	}
	return 3
}
