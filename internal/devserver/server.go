// Package devserver is a self-contained dispatch backend used for local
// development and end-to-end tests. It speaks the same wire protocol the
// production backend does, on top of a workspace SQLite database.
package devserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"fieldline/internal/events"
	"fieldline/internal/repo"
)

const basePath = "/api"

// Config for the dev server handler.
type Config struct {
	Repo      repo.Repo
	Events    *events.Writer
	JWTSecret string
	Logger    *zap.Logger
	Now       func() time.Time
}

type server struct {
	repo   repo.Repo
	events *events.Writer
	log    *zap.Logger
	now    func() time.Time
}

type apiErrorBody struct {
	Message string `json:"message"`
}

type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

func newAPIError(status int, message string) huma.StatusError {
	return &apiError{status: status, Body: apiErrorBody{Message: message}}
}

// dataEnvelope is the wrapped response shape some endpoints use.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// New returns an HTTP handler exposing the dispatch API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &server{repo: cfg.Repo, events: cfg.Events, log: cfg.Logger, now: cfg.Now}

	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, msg)
	}

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(newAuthMiddleware(cfg.JWTSecret))
	router.Post(basePath+"/login", s.handleLogin(cfg.JWTSecret))

	hcfg := huma.DefaultConfig("Fieldline Dev API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	s.registerOrders(group)
	s.registerEngineers(group)
	s.registerDictionaries(group)
	s.registerReports(group)
	s.registerRepeats(group)
	s.registerPayouts(group)

	return router, nil
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if err == repo.ErrNotFound {
		return newAPIError(http.StatusNotFound, "not found")
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	if strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required") {
		return newAPIError(http.StatusBadRequest, msg)
	}
	return newAPIError(http.StatusInternalServerError, msg)
}

func (s *server) record(ctx context.Context, evtType, entityKind string, entityID int64, payload events.EventPayload) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, evtType, entityKind, strconv.FormatInt(entityID, 10), "dispatcher", payload); err != nil {
		s.log.Warn("event append failed", zap.String("type", evtType), zap.Error(err))
	}
}
