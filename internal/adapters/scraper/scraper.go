// Package scraper fetches reviews live from e-commerce and editorial pages.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"review_compare/internal/adapters/observability"
	"review_compare/internal/domain"
	"review_compare/internal/textutil"
)

const (
	siteAmazon    = "amazon"
	siteFlipkart  = "flipkart"
	siteEditorial = "editorial"

	editorialRating   = 4
	minEditorialRunes = 100
	minRegionalChars  = 100
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var editorialHosts = []string{"gizbot", "news18", "zeebiz"}

// article body candidates, most specific first
var articleSelectors = []string{
	`div[itemprop="articleBody"]`,
	"div.article-content",
	"div.details-info",
	`div[id*="content"]`,
	`div[class*="body"]`,
	"article",
}

var (
	navMarkers = []string{"footer", "header", "nav", "sidebar"}
	dpPath     = regexp.MustCompile(`/dp/([A-Za-z0-9]+)`)
)

type Options struct {
	MaxPages    int
	RPS         int
	KeepEnglish bool
	Timeout     time.Duration
}

// Scraper implements domain.ReviewSource for product page URLs.
type Scraper struct {
	hc   *http.Client
	rl   *rate.Limiter
	opts Options
}

func New(opts Options) *Scraper {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 3
	}
	if opts.RPS <= 0 {
		opts.RPS = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Scraper{
		hc:   &http.Client{Timeout: opts.Timeout},
		rl:   rate.NewLimiter(rate.Limit(opts.RPS), 1),
		opts: opts,
	}
}

// Fetch scrapes the page named by identifier. Identifiers that are not
// http(s) URLs of a supported site yield Found=false.
func (s *Scraper) Fetch(ctx context.Context, identifier string) (domain.SourceResult, error) {
	u, err := url.Parse(strings.TrimSpace(identifier))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.SourceResult{}, nil
	}

	var raw []domain.Review
	switch siteFor(u) {
	case siteAmazon:
		raw, err = s.scrapeAmazon(ctx, amazonReviewsURL(u))
	case siteFlipkart:
		raw, err = s.scrapeFlipkart(ctx, u)
	case siteEditorial:
		raw, err = s.scrapeEditorial(ctx, u)
	default:
		log.Warn().Str("url", identifier).Msg("unsupported review site")
		return domain.SourceResult{}, nil
	}
	if err != nil {
		return domain.SourceResult{}, err
	}

	out := s.finish(identifier, raw)
	log.Info().Str("url", identifier).Int("scraped", len(raw)).Int("kept", len(out)).Msg("scrape done")
	return domain.SourceResult{Found: len(out) > 0, Reviews: out}, nil
}

func siteFor(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "amazon."):
		return siteAmazon
	case strings.Contains(host, "flipkart.com"):
		return siteFlipkart
	}
	for _, h := range editorialHosts {
		if strings.Contains(host, h) {
			return siteEditorial
		}
	}
	return ""
}

// amazonReviewsURL rewrites a /dp/<asin> product URL to its review listing.
func amazonReviewsURL(u *url.URL) *url.URL {
	m := dpPath.FindStringSubmatch(u.Path)
	if m == nil {
		return u
	}
	out := *u
	out.Path = "/product-reviews/" + m[1] + "/"
	out.RawQuery = ""
	return &out
}

func pageURL(u *url.URL, param string, page int) string {
	if page <= 1 {
		return u.String()
	}
	out := *u
	q := out.Query()
	q.Set(param, strconv.Itoa(page))
	out.RawQuery = q.Encode()
	return out.String()
}

func (s *Scraper) scrapeAmazon(ctx context.Context, base *url.URL) ([]domain.Review, error) {
	return s.paginate(ctx, siteAmazon, base, "pageNumber", func(doc *goquery.Document) ([]domain.Review, int) {
		blocks := doc.Find(`div[data-hook="review"]`)
		var out []domain.Review
		blocks.Each(func(_ int, b *goquery.Selection) {
			rating := 0
			if f := strings.Fields(b.Find(`i[data-hook="review-star-rating"]`).First().Text()); len(f) > 0 {
				if v, err := strconv.ParseFloat(strings.ReplaceAll(f[0], ",", "."), 64); err == nil {
					rating = int(v)
				}
			}
			text := strings.TrimSpace(b.Find(`span[data-hook="review-body"]`).First().Text())
			if text != "" && rating > 0 {
				out = append(out, review(text, rating, siteAmazon))
			}
		})
		return out, blocks.Length()
	})
}

func (s *Scraper) scrapeFlipkart(ctx context.Context, base *url.URL) ([]domain.Review, error) {
	return s.paginate(ctx, siteFlipkart, base, "page", func(doc *goquery.Document) ([]domain.Review, int) {
		blocks := doc.Find("div.col-12-12")
		var out []domain.Review
		blocks.Each(func(_ int, b *goquery.Selection) {
			rating, err := strconv.Atoi(strings.TrimSpace(b.Find("div._3LWZlK").First().Text()))
			if err != nil {
				return
			}
			body := b.Find("div.t-ZTKy").First()
			if body.Length() == 0 {
				body = b.Find("div._6K-7Co").First()
			}
			text := strings.TrimSpace(body.Text())
			if text != "" && rating > 0 {
				out = append(out, review(text, rating, siteFlipkart))
			}
		})
		return out, blocks.Length()
	})
}

// paginate walks pages 1..MaxPages and stops early on a non-200 response or
// a page without review blocks.
func (s *Scraper) paginate(ctx context.Context, site string, base *url.URL, param string,
	parse func(*goquery.Document) ([]domain.Review, int)) ([]domain.Review, error) {
	var all []domain.Review
	for page := 1; page <= s.opts.MaxPages; page++ {
		u := pageURL(base, param, page)
		doc, err := s.get(ctx, site, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("site", site).Str("url", u).Int("page", page).Msg("page fetch failed")
			break
		}
		revs, blocks := parse(doc)
		all = append(all, revs...)
		if blocks == 0 {
			break
		}
	}
	log.Info().Str("site", site).Int("reviews", len(all)).Msg("scraped reviews")
	return all, nil
}

func (s *Scraper) scrapeEditorial(ctx context.Context, u *url.URL) ([]domain.Review, error) {
	doc, err := s.get(ctx, siteEditorial, u.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Str("url", u.String()).Msg("editorial fetch failed")
		return nil, nil
	}

	main := articleBody(doc)
	if main == nil {
		log.Warn().Str("url", u.String()).Msg("no article body found")
		return nil, nil
	}

	var parts []string
	main.Find("p, h2, h3").Each(func(_ int, p *goquery.Selection) {
		if t := strings.Join(strings.Fields(p.Text()), " "); t != "" {
			parts = append(parts, t)
		}
	})
	text := strings.Join(parts, " ")
	if n := len([]rune(text)); n < minEditorialRunes {
		log.Warn().Str("url", u.String()).Int("length", n).Msg("article text too short")
		return nil, nil
	}
	return []domain.Review{review(text, editorialRating, u.Hostname())}, nil
}

// articleBody tries the known selectors, then falls back to the block with
// the most Devanagari characters that is not page chrome.
func articleBody(doc *goquery.Document) *goquery.Selection {
	for _, sel := range articleSelectors {
		if m := doc.Find(sel).First(); m.Length() > 0 {
			return m
		}
	}

	var best *goquery.Selection
	bestCount := 0
	doc.Find("div, article, section").Each(func(_ int, b *goquery.Selection) {
		if isChrome(b) {
			return
		}
		n := textutil.CountDevanagari(b.Text())
		if n > minRegionalChars && n > bestCount {
			best, bestCount = b, n
		}
	})
	return best
}

func isChrome(b *goquery.Selection) bool {
	id, _ := b.Attr("id")
	class, _ := b.Attr("class")
	attrs := strings.ToLower(id + " " + class)
	for _, m := range navMarkers {
		if strings.Contains(attrs, m) {
			return true
		}
	}
	return false
}

var errStatus = errors.New("unexpected status")

func (s *Scraper) get(ctx context.Context, site, u string) (*goquery.Document, error) {
	if err := s.rl.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "hi-IN,hi;q=0.9,mr;q=0.8,en;q=0.7")

	start := time.Now()
	resp, err := s.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("scraper", site, 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("scraper", site, resp.StatusCode, time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w %d", errStatus, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func review(text string, rating int, source string) domain.Review {
	src := source
	return domain.Review{Text: text, Rating: &rating, Source: &src}
}

// finish cleans text, detects language, drops duplicates and, unless
// KeepEnglish is set, English reviews.
func (s *Scraper) finish(identifier string, raw []domain.Review) []domain.Review {
	seen := make(map[string]struct{}, len(raw))
	out := make([]domain.Review, 0, len(raw))
	for _, rv := range raw {
		rv.Text = textutil.Clean(rv.Text)
		if rv.Text == "" {
			continue
		}
		rv.Language = textutil.DetectLanguage(rv.Text, identifier)
		if rv.Language == domain.LangEnglish && !s.opts.KeepEnglish {
			continue
		}
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(identifier+"\x00"+rv.Text)).String()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rv.Product = identifier
		rv.SourceID = &id
		out = append(out, rv)
	}
	return out
}
