// Package api serves the persistence contract and the server-side dump
// endpoint over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/database"
	"github.com/shubh-37/decluttr/internal/declutter"
)

// Dumper runs one thought dump for a user.
type Dumper interface {
	Dump(ctx context.Context, userID, text string) (declutter.Outcome, error)
}

// UserLocker serializes writes to one user's record with dumps running
// for the same user.
type UserLocker interface {
	LockUser(userID string) func()
}

type Server struct {
	store  database.UserStore
	dumper Dumper
	locker UserLocker
	logger *zap.Logger
	slack  http.Handler
	router chi.Router
}

type Option func(*Server)

// WithSlack mounts h at POST /slack/events
func WithSlack(h http.Handler) Option {
	return func(s *Server) { s.slack = h }
}

func NewServer(store database.UserStore, dumper Dumper, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		store:  store,
		dumper: dumper,
		logger: logger,
	}
	if locker, ok := dumper.(UserLocker); ok {
		s.locker = locker
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/guest", s.handleNewGuest)
		r.Get("/user/{userId}", s.handleGetUser)
		r.Post("/user/{userId}", s.handleSaveUser)
		r.Post("/user/{userId}/dump", s.handleDump)
	})

	if s.slack != nil {
		r.Method(http.MethodPost, "/slack/events", s.slack)
	}
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps the router in an http.Server listening on addr
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
