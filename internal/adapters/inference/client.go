// internal/adapters/inference/client.go
package inference

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review_compare/internal/adapters/observability"
)

// Client calls a hosted text-classification endpoint and turns its label
// scores into a positive-sentiment probability in [0,1].
type Client struct {
	url string
	hc  *http.Client
	key string
	rl  *rate.Limiter
}

func New(url, key string, rps int) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("model URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		url: url,
		hc:  &http.Client{Timeout: 20 * time.Second},
		key: key,
		rl:  rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrUnauthorized = errors.New("inference: unauthorized")
	ErrBadPayload   = errors.New("inference: unrecognised response")
)

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Predict returns the probability that text is positive.
// Three-way models contribute half of their neutral mass.
func (c *Client) Predict(ctx context.Context, text string) (float64, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return 0, err
	}
	raw, err := c.post(ctx, body)
	if err != nil {
		return 0, err
	}
	scores, err := decodeScores(raw)
	if err != nil {
		return 0, err
	}
	return positiveProbability(scores)
}

// decodeScores accepts both [[{label,score}]] and [{label,score}].
func decodeScores(raw []byte) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}
	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}
	return nil, ErrBadPayload
}

func positiveProbability(scores []labelScore) (float64, error) {
	var pos, neu float64
	seen := false
	for _, s := range scores {
		switch strings.ToLower(s.Label) {
		case "positive", "pos", "label_2":
			pos, seen = s.Score, true
		case "neutral", "neu", "label_1":
			neu = s.Score
		case "negative", "neg", "label_0":
			seen = true
		}
	}
	if !seen {
		return 0, ErrBadPayload
	}
	p := pos + neu/2
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p, nil
}

// post performs a POST with client-side rate limiting and retries.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if c.key != "" {
			req.Header.Set("Authorization", "Bearer "+c.key)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "review-compare/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("inference", "predict", 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("inference", "predict", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			resp.Body.Close()
			return b, err

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return nil, ErrUnauthorized

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// 503 is what hosted models answer while loading
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff: 200ms, 400ms, 800ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
