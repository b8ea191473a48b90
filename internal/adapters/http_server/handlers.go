// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_compare/internal/app"
	"review_compare/internal/domain"
	"review_compare/internal/textutil"
)

const maxBody = 1 << 20

type Handlers struct {
	Compare *app.CompareService
	Q       *app.QueryService
	// Ingest is nil unless reviews are persisted (DATA_SOURCE=mysql).
	Ingest      *app.IngestionService
	MinProducts int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type compareRequest struct {
	Products []string `json:"products"`
}

type ingestRequest struct {
	Category string           `json:"category"`
	Reviews  []map[string]any `json:"reviews"`
}

func (s *Server) MountHandlers(h *Handlers) {
	if h.MinProducts <= 0 {
		h.MinProducts = 2
	}
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api", func(r chi.Router) {
		r.Post("/compare", h.compare)
		r.Get("/products", h.listProducts)
		r.Get("/product/{name}", h.getProduct)
		r.Get("/product/{name}/aspects/{aspect}", h.aspectSentences)
		if h.Ingest != nil {
			r.Post("/product/{name}/reviews", h.ingestReviews)
		}
		r.Get("/search", h.search)
		r.Get("/health", h.health)
		r.Get("/stats", h.stats)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors to problems; anything unknown is a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidRequest):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON sends v with an ETag and honours If-None-Match.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func (h *Handlers) compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", `expected {"products": [...]}`)
		return
	}
	distinct := map[string]struct{}{}
	for _, p := range req.Products {
		if k := textutil.Key(p); k != "" {
			distinct[k] = struct{}{}
		}
	}
	if len(distinct) < h.MinProducts {
		writeProblem(w, http.StatusBadRequest, "Invalid Request",
			fmt.Sprintf("at least %d products required for comparison", h.MinProducts))
		return
	}

	res, err := h.Compare.Compare(r.Context(), req.Products)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *Handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Q.Products(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	cats, err := h.Q.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"products": ps, "categories": cats, "total": len(ps)})
}

func (h *Handlers) getProduct(w http.ResponseWriter, r *http.Request) {
	pv, err := h.Q.Product(r.Context(), pathParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, pv)
}

func (h *Handlers) aspectSentences(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.AspectSentences(r.Context(), pathParam(r, "name"), pathParam(r, "aspect"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) ingestReviews(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8*maxBody)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", `expected {"category": "...", "reviews": [...]}`)
		return
	}
	n, err := h.Ingest.IngestRecords(r.Context(), pathParam(r, "name"), req.Category, req.Reviews)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]int{"ingested": n})
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	ps, err := h.Q.Search(r.Context(), q, r.URL.Query().Get("category"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "query parameter q is required")
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"query": q, "products": ps, "total": len(ps)})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.Q.Health(r.Context()))
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Q.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}
