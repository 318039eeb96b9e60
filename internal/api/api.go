// Package api exposes the task orchestration as a JSON HTTP API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slok/blendeval/internal/app/list"
	"github.com/slok/blendeval/internal/app/progress"
	"github.com/slok/blendeval/internal/app/start"
	"github.com/slok/blendeval/internal/app/stop"
	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/model"
)

// UserHeader is the header with the acting user, authentication happens before reaching us.
const UserHeader = "X-User"

// StartService starts tasks.
type StartService interface {
	Run(ctx context.Context, req start.Request) ([]model.StartedTask, error)
}

// StopService stops tasks.
type StopService interface {
	Run(ctx context.Context, req stop.Request) ([]string, error)
}

// ProgressService returns task progress pages.
type ProgressService interface {
	Run(ctx context.Context, req progress.Request) (*model.ProgressPage, error)
}

// ListService lists tasks.
type ListService interface {
	Run(ctx context.Context, req list.Request) ([]model.Task, error)
}

// HandlerConfig is the configuration of the API handler.
type HandlerConfig struct {
	StartService    StartService
	StopService     StopService
	ProgressService ProgressService
	ListService     ListService
	// Timeout is the max time a request can take.
	Timeout time.Duration
	Logger  log.Logger
}

func (c *HandlerConfig) defaults() error {
	if c.StartService == nil {
		return fmt.Errorf("start service is required")
	}
	if c.StopService == nil {
		return fmt.Errorf("stop service is required")
	}
	if c.ProgressService == nil {
		return fmt.Errorf("progress service is required")
	}
	if c.ListService == nil {
		return fmt.Errorf("list service is required")
	}

	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "api"})

	return nil
}

type handler struct {
	startSvc    StartService
	stopSvc     StopService
	progressSvc ProgressService
	listSvc     ListService
	logger      log.Logger
}

// NewHandler returns the API HTTP handler.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	h := handler{
		startSvc:    cfg.StartService,
		stopSvc:     cfg.StopService,
		progressSvc: cfg.ProgressService,
		listSvc:     cfg.ListService,
		logger:      cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))
	r.Use(h.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/start", h.handleStart)
		r.Post("/stop", h.handleStop)
		r.Get("/progress/{taskID}", h.handleProgress)
		r.Get("/tasks", h.handleTasks)
	})

	return r, nil
}

func (h handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := h.logger.SetValuesOnCtx(r.Context(), log.Kv{"request-id": middleware.GetReqID(r.Context())})

		next.ServeHTTP(ww, r.WithContext(ctx))

		h.logger.WithCtxValues(ctx).WithValues(log.Kv{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": ww.Status(),
			"dur":    time.Since(t0).String(),
		}).Debugf("http request handled")
	})
}

type userCtxKey struct{}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get(UserHeader)
		if user == "" {
			writeErr(w, http.StatusBadRequest, fmt.Sprintf("missing %s header", UserHeader))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
	})
}

func userFromCtx(ctx context.Context) string {
	u, _ := ctx.Value(userCtxKey{}).(string)
	return u
}
