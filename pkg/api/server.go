package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/sirrobot01/dockdeck/pkg/classify"
	"github.com/sirrobot01/dockdeck/pkg/dispatch"
	"github.com/sirrobot01/dockdeck/pkg/storage"
	"golang.org/x/sync/singleflight"
)

const (
	defaultHistoryLimit = 100
	pingTimeout         = 5 * time.Second
)

// Server handles API requests
type Server struct {
	dispatch *dispatch.Dispatcher
	store    storage.Storage // nil disables /history
	pings    singleflight.Group
}

// NewServer creates a new API server
func NewServer(d *dispatch.Dispatcher, store storage.Storage) *Server {
	return &Server{
		dispatch: d,
		store:    store,
	}
}

// Handler returns a handler for all API routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealthCheck)
		r.Get("/history", s.handleListHistory)
		r.Get("/history/{id}", s.handleGetHistory)

		// Container routes
		r.Route("/containers", func(r chi.Router) {
			r.Get("/", s.handleListContainers)
			r.Post("/", s.handleCreateContainer)
			r.Delete("/{name}", s.handleDeleteContainer)
			r.Post("/{name}/start", s.handleStartContainer)
			r.Post("/{name}/stop", s.handleStopContainer)
			r.Post("/{name}/kill", s.handleKillContainer)
			r.Post("/{name}/pause", s.handlePauseContainer)
			r.Post("/{name}/unpause", s.handleUnpauseContainer)
			r.Get("/{name}/logs", s.handleContainerLogs)
		})

		// Image routes
		r.Route("/images", func(r chi.Router) {
			r.Get("/", s.handleListImages)
			r.Post("/pull", s.handlePullImage)
			// References contain slashes, e.g. ghcr.io/org/app:1
			r.Delete("/*", s.handleRemoveImage)
		})

		// Volume routes
		r.Route("/volumes", func(r chi.Router) {
			r.Get("/", s.handleListVolumes)
			r.Post("/", s.handleCreateVolume)
			r.Delete("/{name}", s.handleRemoveVolume)
		})

		// Network routes
		r.Route("/networks", func(r chi.Router) {
			r.Get("/", s.handleListNetworks)
			r.Post("/", s.handleCreateNetwork)
			r.Delete("/{id}", s.handleRemoveNetwork)
			r.Get("/{id}/containers", s.handleListNetworkMembers)
			r.Post("/{id}/connect", s.handleConnectNetwork)
			r.Post("/{id}/disconnect", s.handleDisconnectNetwork)
		})
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Response helpers
func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message, Type: "ValidationError"})
}

// errorBody is the JSON shape of a failed command
type errorBody struct {
	Error string `json:"error"`
	Type  string `json:"type"`
	Kind  string `json:"kind,omitempty"`
}

// describe maps a command error to its HTTP status and body
func describe(err error) (int, errorBody) {
	var (
		de *classify.DaemonError
		ue *classify.UnexpectedError
		ve *classify.ValidationError
	)
	switch {
	case errors.As(err, &de):
		body := errorBody{Error: de.Error(), Type: "DockerError", Kind: de.Kind.String()}
		switch {
		case classify.IsNotFound(err):
			return http.StatusNotFound, body
		case classify.IsPermissionDenied(err):
			return http.StatusForbidden, body
		case classify.IsInUse(err):
			return http.StatusConflict, body
		case classify.IsUnreachable(err):
			return http.StatusServiceUnavailable, body
		default:
			return http.StatusBadGateway, body
		}
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{Error: ve.Error(), Type: "ValidationError"}
	case errors.As(err, &ue):
		return http.StatusInternalServerError, errorBody{Error: ue.Error(), Type: "UnexpectedError"}
	default:
		return http.StatusInternalServerError, errorBody{Error: err.Error(), Type: "UnexpectedError"}
	}
}

func commandError(w http.ResponseWriter, err error) {
	status, body := describe(err)
	jsonResponse(w, status, body)
}

func statusResponse(w http.ResponseWriter, status int, state string) {
	jsonResponse(w, status, map[string]string{"status": state})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// boolQuery parses an optional boolean query parameter
func boolQuery(r *http.Request, key string, def bool) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

// Health check handler. With ?daemon=true the daemon is pinged as well.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("daemon") == "true" {
		// Concurrent health checks share one daemon round trip
		_, err, _ := s.pings.Do("ping", func() (interface{}, error) {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), pingTimeout)
			defer cancel()
			return nil, s.dispatch.Ping(ctx)
		})
		if err != nil {
			log.Warn().Err(err).Msg("Daemon health check failed")
			jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "1.0.0",
	})
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonResponse(w, http.StatusOK, []*storage.CommandRecord{})
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records := s.store.ListCommandRecords(limit)
	if records == nil {
		records = []*storage.CommandRecord{}
	}
	jsonResponse(w, http.StatusOK, records)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		errorResponse(w, http.StatusNotFound, "Command record not found")
		return
	}

	rec, err := s.store.GetCommandRecord(chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		errorResponse(w, http.StatusNotFound, "Command record not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to read command record")
		jsonResponse(w, http.StatusInternalServerError, errorBody{Error: err.Error(), Type: "UnexpectedError"})
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}
