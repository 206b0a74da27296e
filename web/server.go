// ABOUTME: HTTP server with JSON API and embedded dashboard template
// ABOUTME: Wires chi routing, CORS, request logging, and JWT auth over the state container
package web

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/harperreed/commtrack/auth"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
	"github.com/harperreed/commtrack/viz"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed templates/*
var templatesFS embed.FS

type Options struct {
	Tokens         *auth.TokenAuth
	Directory      *auth.Directory
	Logger         *zap.Logger
	AllowedOrigins []string

	// RequestLogger receives one structured line per request. Nil disables it.
	RequestLogger *slog.Logger

	// Now supplies the current time; it defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	db        *sql.DB
	templates *template.Template
	generator *viz.GraphGenerator
	tokens    *auth.TokenAuth
	directory *auth.Directory
	logger    *zap.Logger
	reqLogger *slog.Logger
	origins   []string
	now       func() time.Time
	mu        sync.Mutex
}

func NewServer(database *sql.DB, opts Options) (*Server, error) {
	if opts.Tokens == nil || opts.Directory == nil {
		return nil, fmt.Errorf("token auth and user directory are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	// Helper functions for templates
	funcMap := template.FuncMap{
		"date": func(t *time.Time) string {
			if t == nil {
				return "-"
			}
			return t.Format(status.DateFormat)
		},
		"day": func(t time.Time) string {
			return t.Format(status.DateFormat)
		},
		"statusClass": func(s models.Status) string {
			return "status-" + string(s)
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		db:        database,
		templates: tmpl,
		generator: viz.NewGraphGenerator(database),
		tokens:    opts.Tokens,
		directory: opts.Directory,
		logger:    opts.Logger,
		reqLogger: opts.RequestLogger,
		origins:   opts.AllowedOrigins,
		now:       opts.Now,
	}, nil
}

// NewRequestLogger builds the JSON request logger used by serve.
func NewRequestLogger(version string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "commtrack"),
		slog.String("version", version),
	)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	if s.reqLogger != nil {
		r.Use(httplog.RequestLogger(s.reqLogger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.serialize)

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		Success(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(s.tokens.JWTAuth()))
			r.Use(authRequired)

			r.Get("/me", s.handleMe)
			r.Get("/status/summary", s.handleSummary)
			r.Get("/calendar", s.handleCalendar)
			r.Get("/graph", s.handleGraph)

			r.Route("/companies", func(r chi.Router) {
				r.Get("/", s.handleListCompanies)
				r.Get("/{id}", s.handleGetCompany)
				r.Get("/{id}/communications", s.handleCompanyCommunications)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/", s.handleCreateCompany)
					r.Put("/{id}", s.handleUpdateCompany)
					r.Delete("/{id}", s.handleDeleteCompany)
				})
			})

			r.Route("/communications", func(r chi.Router) {
				r.Get("/", s.handleListCommunications)
				r.Post("/", s.handleLogCommunications)

				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Put("/{id}", s.handleUpdateCommunication)
					r.Delete("/{id}", s.handleDeleteCommunication)
				})
			})

			r.Route("/methods", func(r chi.Router) {
				r.Get("/", s.handleListMethods)

				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/", s.handleCreateMethod)
					r.Put("/order", s.handleReorderMethods)
					r.Put("/{id}", s.handleUpdateMethod)
					r.Delete("/{id}", s.handleDeleteMethod)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handleListNotifications)
				r.Post("/read-all", s.handleMarkAllRead)
				r.Post("/{id}/read", s.handleMarkRead)
				r.Delete("/", s.handleClearNotifications)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/", s.handleReport)
				r.Get("/csv", s.handleReportCSV)
			})
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting web server", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := viz.GenerateDashboardStats(s.db, s.now())
	if err != nil {
		s.logger.Error("failed to build dashboard", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	notifications, err := listNotifications(s.db)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Title":         "Dashboard",
		"Today":         s.now().Format(status.DateFormat),
		"Stats":         stats,
		"Notifications": notifications,
	}
	s.renderTemplate(w, "dashboard.html", data)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	err := s.templates.ExecuteTemplate(w, name, data)
	if err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
