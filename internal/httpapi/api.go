// Package httpapi wires the REST surface: routing, middleware, and the
// JSON handlers that delegate to the domain services.
package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/staffdesk/staffdesk/internal/auth"
	"github.com/staffdesk/staffdesk/internal/obs"
	"github.com/staffdesk/staffdesk/internal/roles"
	"github.com/staffdesk/staffdesk/internal/users"
)

// Params groups the dependencies for building the API.
type Params struct {
	Logger    *slog.Logger
	Auth      *auth.Service
	Evaluator *auth.Evaluator
	Policy    *auth.Policy
	Users     *users.Service
	Roles     *roles.Service
	DB        *sql.DB
	Version   string

	RateLimitPerSecond int
	RateLimitBurst     int
	MaxBodyBytes       int64
}

// API is the HTTP layer.
type API struct {
	logger    *slog.Logger
	auth      *auth.Service
	evaluator *auth.Evaluator
	policy    *auth.Policy
	users     *users.Service
	roles     *roles.Service
	db        *sql.DB
	validate  *validator.Validate
	version   string

	ratePerSecond int
	rateBurst     int
	maxBodyBytes  int64
}

// New constructs the API.
func New(p Params) *API {
	policy := p.Policy
	if policy == nil {
		policy = auth.DefaultPolicy()
	}
	return &API{
		logger:        p.Logger,
		auth:          p.Auth,
		evaluator:     p.Evaluator,
		policy:        policy,
		users:         p.Users,
		roles:         p.Roles,
		db:            p.DB,
		validate:      validator.New(),
		version:       p.Version,
		ratePerSecond: p.RateLimitPerSecond,
		rateBurst:     p.RateLimitBurst,
		maxBodyBytes:  p.MaxBodyBytes,
	}
}

// Handler builds the router. Operational endpoints sit outside /api; every
// /api route passes through the authorization policy middleware.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logging(a.logger))
	r.Use(SecurityHeaders)
	r.Use(CORS)
	if a.maxBodyBytes > 0 {
		r.Use(MaxBodyBytes(a.maxBodyBytes))
	}
	if a.ratePerSecond > 0 {
		r.Use(RateLimit(a.rateBurst, a.ratePerSecond))
	}

	r.Get("/healthz", a.handleHealthz)
	r.Get("/readyz", a.handleReadyz)
	r.Handle("/metrics", obs.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(a.authorize)

		api.Post("/auth/login", a.handleLogin)
		api.Post("/auth/register", a.handleRegister)

		api.Get("/public/info", a.handleInfo)

		api.Route("/users", func(u chi.Router) {
			u.Get("/", a.handleListUsers)
			u.Post("/", a.handleCreateUser)
			u.Get("/search", a.handleSearchUsers)
			u.Get("/department/{department}", a.handleUsersByDepartment)
			u.Get("/department/{department}/count", a.handleDepartmentCount)
			u.Get("/department/{department}/emails", a.handleDepartmentEmails)
			u.Get("/{id}", a.handleGetUser)
			u.Put("/{id}", a.handleUpdateUser)
			u.Delete("/{id}", a.handleDeleteUser)
		})

		api.Route("/admin", func(ad chi.Router) {
			ad.Get("/roles", a.handleListRoles)
			ad.Post("/roles", a.handleCreateRole)
			ad.Get("/roles/{id}", a.handleGetRole)
			ad.Get("/users/{userID}/roles", a.handleUserRoles)
			ad.Post("/users/{userID}/roles/{roleID}", a.handleAssignRole)
			ad.Delete("/users/{userID}/roles/{roleID}", a.handleRemoveRole)
		})

		// Functional variant of the user routes; same service underneath.
		api.Route("/functional", func(f chi.Router) {
			f.Get("/users", a.functionalListUsers)
			f.Post("/users", a.functionalCreateUser)
			f.Get("/users/{id}", a.functionalGetUser)
		})
	})

	return obs.Instrument(r)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "staffdesk-api",
		"version": a.version,
	})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := a.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "staffdesk-api",
		"version": a.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
