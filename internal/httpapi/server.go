package httpapi

import (
	"encoding/json"
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"modeltrack/internal/scraper"
	"modeltrack/internal/store"
	"modeltrack/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	QueryModels(ctx context.Context, f store.Filters) (types.ModelsResponse, error)
	Stats(ctx context.Context) (types.Stats, error)
	Refresh(ctx context.Context) (*types.RunSummary, error)
	RefreshStatus() types.RefreshStatus
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)

	r.Get("/", serveDashboard)

	r.Get("/api/models", func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilters(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp, err := svc.QueryModels(r.Context(), f)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	refresh := func(w http.ResponseWriter, r *http.Request) {
		// Join server base context with request context so shutdown
		// cancels an in-flight run too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		sum, err := svc.Refresh(ctx)
		if err != nil {
			if errors.Is(err, scraper.ErrRunInProgress) {
				writeJSONError(w, http.StatusConflict, err.Error())
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
	r.Post("/api/refresh", refresh)
	// The original dashboard triggered refreshes with a plain link.
	r.Get("/api/refresh", refresh)

	r.Get("/api/scrape-status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.RefreshStatus())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("starting"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service failures to a status code, honoring
// HTTPError when the service provides one.
func writeServiceError(w http.ResponseWriter, err error) {
	var he HTTPError
	if errors.As(err, &he) {
		writeJSONError(w, he.StatusCode(), he.Error())
		return
	}
	writeJSONError(w, http.StatusInternalServerError, err.Error())
}
