package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Logs(tail int) types.LogsResponse
	Health(ctx context.Context) types.HealthResponse
	StartServer() (types.StatusResponse, error)
	StopServer() (types.StatusResponse, error)
	DetachServer() (int, error)
	Config() types.ServerConfig
	UpdateConfig(cfg types.ServerConfig) (types.ServerConfig, error)
	Models(dir string) (types.ModelsResponse, error)
	Profiles() types.ProfilesResponse
	Profile(name string) (types.ServerConfig, error)
	SaveProfile(name string, cfg *types.ServerConfig) error
	LoadProfile(name string) (types.ServerConfig, error)
	DeleteProfile(name string) error
}

// NewMux builds the controller API router: config and profile CRUD,
// server lifecycle, logs, health, metrics and the event streams.
func NewMux(svc Service, events *supervisor.Broker) http.Handler {
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

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Ready means the managed server is up, so orchestration can gate on
	// llama-server itself rather than on this controller.
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		st := svc.Status()
		w.Header().Set("Content-Type", "application/json")
		if st.State != types.StateRunning {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"state": st.State})
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Config())
	})

	r.Put("/config", func(w http.ResponseWriter, r *http.Request) {
		var cfg types.ServerConfig
		if !decodeJSON(w, r, &cfg) {
			return
		}
		updated, err := svc.UpdateConfig(cfg)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, updated)
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Models(r.URL.Query().Get("dir"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)
	})

	r.Get("/profiles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Profiles())
	})

	r.Get("/profiles/{name}", func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.Profile(chi.URLParam(r, "name"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, cfg)
	})

	r.Put("/profiles/{name}", func(w http.ResponseWriter, r *http.Request) {
		// An empty body snapshots the active configuration; a JSON body
		// saves that configuration instead.
		var cfg *types.ServerConfig
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var body types.ServerConfig
		switch err := json.NewDecoder(r.Body).Decode(&body); {
		case err == nil:
			cfg = &body
		case errors.Is(err, io.EOF):
		default:
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := svc.SaveProfile(chi.URLParam(r, "name"), cfg); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, svc.Profiles())
	})

	r.Delete("/profiles/{name}", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteProfile(chi.URLParam(r, "name")); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, svc.Profiles())
	})

	r.Post("/profiles/{name}/load", func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.LoadProfile(chi.URLParam(r, "name"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, cfg)
	})

	r.Post("/server/start", func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.StartServer()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, st)
	})

	r.Post("/server/stop", func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.StopServer()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, st)
	})

	r.Post("/server/detach", func(w http.ResponseWriter, r *http.Request) {
		pid, err := svc.DetachServer()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"pid": pid, "state": types.StateNotStarted})
	})

	r.Get("/server/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/server/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Health(r.Context()))
	})

	r.Get("/server/logs", func(w http.ResponseWriter, r *http.Request) {
		tail := 0
		if v := r.URL.Query().Get("tail"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeJSONError(w, http.StatusBadRequest, "invalid tail parameter")
				return
			}
			tail = n
		}
		writeJSON(w, svc.Logs(tail))
	})

	r.Get("/events", handleEvents(events))
	r.Get("/ws", handleWS(events))

	MountSwagger(r)

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

// decodeJSON enforces the JSON content type and body size limit, then
// decodes into dst. It writes the error response itself and reports
// whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
