// Package api exposes the catalog over a small REST surface.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/metrics"
	"github.com/jacentio/catalog/store"
)

// InstitutionService is the institution access surface used by the handlers.
type InstitutionService interface {
	Create(ctx context.Context, in store.InstitutionInput) (*store.Institution, error)
	GetByID(ctx context.Context, id string) (*store.Institution, error)
	List(ctx context.Context, opts store.ListOptions) ([]store.InstitutionListItem, error)
	Update(ctx context.Context, id string, patch store.InstitutionPatch) (*store.Institution, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (*store.Confirmation, error)
}

// ProgramService is the program access surface used by the handlers.
type ProgramService interface {
	Create(ctx context.Context, in store.ProgramInput) (*store.Program, error)
	GetByID(ctx context.Context, id string) (*store.Program, error)
	ListByParent(ctx context.Context, opts store.ListOptions) ([]store.ProgramListItem, error)
	Update(ctx context.Context, id string, patch store.ProgramPatch) (*store.Program, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (*store.Confirmation, error)
}

// ProjectService is the project access surface used by the handlers.
type ProjectService interface {
	Create(ctx context.Context, in store.ProjectInput) (*store.Project, error)
	GetByID(ctx context.Context, id string) (*store.Project, error)
	ListByParent(ctx context.Context, opts store.ListOptions) ([]store.ProjectListItem, error)
	Update(ctx context.Context, id string, patch store.ProjectPatch) (*store.Project, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (*store.Confirmation, error)
}

// ProcedureService is the procedure access surface used by the handlers.
type ProcedureService interface {
	Create(ctx context.Context, in store.ProcedureInput) (*store.Procedure, error)
	GetByID(ctx context.Context, id string) (*store.Procedure, error)
	ListByParent(ctx context.Context, opts store.ListOptions) ([]store.ProcedureListItem, error)
	Update(ctx context.Context, id string, patch store.ProcedurePatch) (*store.Procedure, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (*store.Confirmation, error)
}

// Pinger reports whether the backing table is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ InstitutionService = (*store.InstitutionRepository)(nil)
	_ ProgramService     = (*store.ProgramRepository)(nil)
	_ ProjectService     = (*store.ProjectRepository)(nil)
	_ ProcedureService   = (*store.ProcedureRepository)(nil)
	_ Pinger             = (*store.Store)(nil)
)

// Dependencies are the services the router dispatches to.
type Dependencies struct {
	Institutions InstitutionService
	Programs     ProgramService
	Projects     ProjectService
	Procedures   ProcedureService
	Health       Pinger

	// Metrics is optional; when set, requests are recorded and /metrics is served.
	Metrics *metrics.Collector
}

// FromStore wires every service to one Store.
func FromStore(s *store.Store) Dependencies {
	return Dependencies{
		Institutions: s.Institutions(),
		Programs:     s.Programs(),
		Projects:     s.Projects(),
		Procedures:   s.Procedures(),
		Health:       s,
	}
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(deps Dependencies, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(RequestLogger(logger))
	router.Use(RequestMetrics(deps.Metrics))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	health := &healthHandler{pinger: deps.Health, logger: logger}
	router.Get("/", health.root)
	router.Get("/health", health.check)
	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	institutions := &institutionHandler{svc: deps.Institutions, logger: logger}
	router.Route("/instituciones", func(r chi.Router) {
		r.Post("/", institutions.create)
		r.Get("/", institutions.list)
		r.Get("/{id}", institutions.get)
		r.Patch("/{id}", institutions.update)
		r.Delete("/{id}", institutions.disable)
		r.Patch("/{id}/habilitar", institutions.enable)
	})

	programs := &programHandler{svc: deps.Programs, logger: logger}
	router.Route("/programas", func(r chi.Router) {
		r.Post("/", programs.create)
		r.Get("/", programs.list)
		r.Get("/{id}", programs.get)
		r.Patch("/{id}", programs.update)
		r.Delete("/{id}", programs.disable)
		r.Patch("/{id}/habilitar", programs.enable)
	})

	projects := &projectHandler{svc: deps.Projects, logger: logger}
	router.Route("/proyectos", func(r chi.Router) {
		r.Post("/", projects.create)
		r.Get("/", projects.list)
		r.Get("/{id}", projects.get)
		r.Patch("/{id}", projects.update)
		r.Delete("/{id}", projects.disable)
		r.Patch("/{id}/habilitar", projects.enable)
	})

	procedures := &procedureHandler{svc: deps.Procedures, logger: logger}
	router.Route("/tramites", func(r chi.Router) {
		r.Post("/", procedures.create)
		r.Get("/", procedures.list)
		r.Get("/{id}", procedures.get)
		r.Patch("/{id}", procedures.update)
		r.Delete("/{id}", procedures.disable)
		r.Patch("/{id}/habilitar", procedures.enable)
	})

	return router
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}
