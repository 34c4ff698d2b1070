// Package server exposes the application over HTTP: CRUD proxies in front of
// the remote store, the import workflow, the diagnosis questionnaire and the
// planning screen.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"rferreira/meubolso/internal/backend"
	"rferreira/meubolso/internal/config"
	"rferreira/meubolso/internal/diagnosis"
	"rferreira/meubolso/internal/importer"
	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/planning"
)

// Server wires the HTTP surface. Construct with New, serve via Handler.
type Server struct {
	cfg        *config.Config
	backend    backend.Client
	sessions   *importer.Manager
	newSession func() *importer.Session
	diagnosis  *diagnosis.Service
	planning   *planning.Service

	// listCache holds account/card/category listings for a short TTL so the
	// UI does not hammer the remote store while the user navigates.
	listCache *cache.Cache
	limiter   *rate.Limiter
	logger    logging.Logger
	router    chi.Router
}

// Deps are the collaborators the server needs.
type Deps struct {
	Config     *config.Config
	Backend    backend.Client
	Sessions   *importer.Manager
	NewSession func() *importer.Session
	Diagnosis  *diagnosis.Service
	Planning   *planning.Service
	Logger     logging.Logger
}

// New builds the server and its route table.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.GetLogger()
	}

	cacheTTL := time.Duration(deps.Config.Server.CacheTTLMinutes) * time.Minute
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}

	s := &Server{
		cfg:        deps.Config,
		backend:    deps.Backend,
		sessions:   deps.Sessions,
		newSession: deps.NewSession,
		diagnosis:  deps.Diagnosis,
		planning:   deps.Planning,
		listCache:  cache.New(cacheTTL, 2*cacheTTL),
		limiter:    rate.NewLimiter(rate.Limit(deps.Config.Server.RateLimitPerSec), deps.Config.Server.RateLimitBurst),
		logger:     deps.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.requestLogging)
	r.Use(s.corsMiddleware)
	r.Use(s.rateLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/accounts", s.handleListAccounts)
		r.Post("/accounts", s.handleCreateAccount)
		r.Put("/accounts/{id}", s.handleUpdateAccount)
		r.Delete("/accounts/{id}", s.handleDeleteAccount)

		r.Get("/cards", s.handleListCards)
		r.Post("/cards", s.handleCreateCard)
		r.Put("/cards/{id}", s.handleUpdateCard)
		r.Delete("/cards/{id}", s.handleDeleteCard)

		r.Get("/categories", s.handleListCategories)

		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Put("/transactions/{id}", s.handleUpdateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)

		r.Route("/import/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDiscardSession)
				r.Post("/upload", s.handleUpload)
				r.Patch("/candidates/{candidateID}", s.handleEditCandidate)
				r.Put("/selection", s.handleSelection)
				r.Get("/validation", s.handleValidation)
				r.Post("/proceed", s.handleProceed)
				r.Post("/back", s.handleBack)
				r.Post("/commit", s.handleCommit)
			})
		})

		r.Post("/diagnosis", s.handleDiagnosis)

		r.Get("/planning/{month}", s.handlePlanningSummary)
		r.Put("/planning/target", s.handleSetPlanningTarget)
	})

	return r
}

func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request handled",
			logging.Field{Key: "method", Value: r.Method},
			logging.Field{Key: "path", Value: r.URL.Path},
			logging.Field{Key: "status", Value: ww.Status()},
			logging.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()})
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.cfg.Server.AllowedOrigins))
	for _, origin := range s.cfg.Server.AllowedOrigins {
		allowed[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.logger.Warn("Rate limit exceeded",
				logging.Field{Key: "path", Value: r.URL.Path})
			sendJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
