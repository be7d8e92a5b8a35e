// Package handler implements the HTTP handlers for the tie inventory API.
// All handlers are methods on Server, which implements ServerInterface for
// the operations that take path or query parameters. They are split into
// domain-specific files (health.go, tie.go, live.go, etc.) but share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/live"
	"github.com/pkordes/tie-inventory/internal/middleware"
	"github.com/pkordes/tie-inventory/internal/service"
	"github.com/pkordes/tie-inventory/internal/validation"
)

// AuthServicer defines the login gate the auth handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the token or credential code.
type AuthServicer interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
	Verify(token string) (domain.Session, error)
}

// TieServicer defines the business operations the tie handlers depend on.
type TieServicer interface {
	Submit(ctx context.Context, owner string, sub service.TieSubmission) (domain.Tie, error)
	Patch(ctx context.Context, id uuid.UUID, patch validation.RawPatch) (domain.Tie, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Tie, error)
	List(ctx context.Context, q domain.TieQuery, p domain.Page) ([]domain.Tie, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryServicer defines the category operations.
type CategoryServicer interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, name string) (domain.Category, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImageServicer defines the standalone image operations.
type ImageServicer interface {
	Upload(ctx context.Context, ownerID string, img service.ImageUpload, recordID, previousURL string) (string, error)
	Delete(ctx context.Context, url string) error
}

// ExportServicer defines the export operation.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Viewer opens live list views. *live.Feed satisfies it.
type Viewer interface {
	NewView(ctx context.Context, q domain.TieQuery) *live.View
}

// Deps carries everything Server needs. Nil services leave their routes
// unregistered, which keeps single-area handler tests small.
type Deps struct {
	Auth       AuthServicer
	Ties       TieServicer
	Categories CategoryServicer
	Images     ImageServicer
	Export     ExportServicer
	Live       Viewer
	Streams    *live.Registry

	// ImageFiles serves stored images under /images/. Nil for backends
	// whose objects are fetched from elsewhere.
	ImageFiles http.Handler

	// LoginLimiter bounds login attempts per client IP. Nil disables it.
	LoginLimiter middleware.Limiter

	// SecureCookies sets the Secure flag on the session cookie.
	SecureCookies bool

	// Heartbeat is the idle interval between SSE heartbeats. Defaults to 30s.
	Heartbeat time.Duration

	Logger *slog.Logger
}

// Server holds the handler dependencies. Build the router with Routes.
type Server struct {
	auth       AuthServicer
	ties       TieServicer
	categories CategoryServicer
	images     ImageServicer
	export     ExportServicer
	live       Viewer
	streams    *live.Registry
	imageFiles http.Handler
	limiter    middleware.Limiter
	secure     bool
	heartbeat  time.Duration
	logger     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	s := &Server{
		auth:       d.Auth,
		ties:       d.Ties,
		categories: d.Categories,
		images:     d.Images,
		export:     d.Export,
		live:       d.Live,
		streams:    d.Streams,
		imageFiles: d.ImageFiles,
		limiter:    d.LoginLimiter,
		secure:     d.SecureCookies,
		heartbeat:  d.Heartbeat,
		logger:     d.Logger,
	}
	if s.heartbeat <= 0 {
		s.heartbeat = 30 * time.Second
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.streams == nil {
		s.streams = live.NewRegistry()
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Deps{})
}

// Routes builds the route tree. Cross-cutting middleware (request IDs,
// logging, CORS, body limits) is applied by the caller around it.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get(placeholderPath, s.GetPlaceholder)
	if s.imageFiles != nil {
		r.Handle("/images/*", http.StripPrefix("/images", s.imageFiles))
	}

	if s.auth != nil {
		r.Route("/api", s.apiRoutes)
	}
	return r
}

// apiRoutes registers the login gate and every inventory route behind it.
func (s *Server) apiRoutes(r chi.Router) {
	var throttle []func(http.Handler) http.Handler
	if s.limiter != nil {
		throttle = append(throttle, middleware.NewRateLimitHandler(s.limiter, s.logger))
	}
	r.With(throttle...).Post("/login", s.Login)
	r.Post("/logout", s.Logout)
	r.Get("/session", s.GetSession)

	wrapper := &ServerInterfaceWrapper{Handler: s, ErrorHandlerFunc: paramErrorHandler}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(s.auth))

		if s.ties != nil {
			r.Get("/ties", wrapper.ListTies)
			r.Post("/ties", s.CreateTie)
			if s.export != nil {
				r.Get("/ties/export", wrapper.GetExport)
			}
			if s.live != nil {
				r.Get("/ties/live", wrapper.StreamTies)
				r.Put("/ties/live/{streamId}", wrapper.SwitchStream)
			}
			r.Get("/ties/{id}", wrapper.GetTie)
			r.Put("/ties/{id}", wrapper.UpdateTie)
			r.Patch("/ties/{id}", wrapper.PatchTie)
			r.Delete("/ties/{id}", wrapper.DeleteTie)
		}
		if s.categories != nil {
			r.Get("/categories", s.ListCategories)
			r.Post("/categories", s.CreateCategory)
			r.Put("/categories/{id}", wrapper.RenameCategory)
			r.Delete("/categories/{id}", wrapper.DeleteCategory)
		}
		if s.images != nil {
			r.Post("/images", s.UploadImage)
			r.Delete("/images", wrapper.DeleteImage)
		}
	})
}
