// Package dashboard serves the server-rendered administration screens
// started by `chamusctl serve`.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/metrics"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// Options holds the dependencies for the dashboard router.
type Options struct {
	Authenticator *sdk.Authenticator
	Routes        sdk.Routes
	Logger        *slog.Logger

	// CookieKey signs the redirect and flash cookies. Empty means a
	// random per-process key.
	CookieKey string
	// AllowedOrigins may call the session endpoint cross-origin and
	// submit forms in addition to the dashboard's own host.
	AllowedOrigins []string
	// LoginRate is the number of login attempts accepted per minute.
	LoginRate int
}

// Server renders the dashboard pages against one shared session.
type Server struct {
	auth    *sdk.Authenticator
	routes  sdk.Routes
	logger  *slog.Logger
	cookies *cookieJar
	limiter *rate.Limiter
	allowed []string
	origins map[string]bool
	pages   *pageSet
}

// New validates opts and prepares the templates.
func New(opts Options) (*Server, error) {
	if opts.Authenticator == nil {
		return nil, errors.New("dashboard: authenticator is required")
	}
	if opts.Routes == (sdk.Routes{}) {
		opts.Routes = sdk.DefaultRoutes()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.LoginRate <= 0 {
		opts.LoginRate = 10
	}

	pages, err := loadPages()
	if err != nil {
		return nil, fmt.Errorf("dashboard: load templates: %w", err)
	}

	origins := make(map[string]bool, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		origins[o] = true
	}

	return &Server{
		auth:    opts.Authenticator,
		routes:  opts.Routes,
		logger:  opts.Logger,
		cookies: newCookieJar(opts.CookieKey),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.LoginRate)), opts.LoginRate),
		allowed: opts.AllowedOrigins,
		origins: origins,
		pages:   pages,
	}, nil
}

// NewRouter builds the dashboard router.
func NewRouter(opts Options) (http.Handler, error) {
	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	return s.Router(), nil
}

// Router wires the middleware stack and every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug), NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.With(cors.Handler(CORSOptions(s.allowed))).Get("/api/session", s.handleSessionJSON)

	r.Group(func(r chi.Router) {
		r.Use(s.checkOrigin)

		r.Group(func(r chi.Router) {
			r.Use(s.publicOnly)
			r.Get(s.routes.Login, s.handleLoginForm)
			r.Post(s.routes.Login, s.handleLogin)
		})
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.protected)
			r.Get(s.routes.Home, s.handleHome)
			r.Get("/museums", s.handleMuseums)
			r.Get("/museums/{id}", s.handleMuseum)
			r.Post("/museums/{id}/delete", s.handleMuseumDelete)
			r.Get("/rooms/{id}", s.handleRoom)
			r.Get("/categories", s.handleCategories)
			r.Post("/categories", s.handleCategoryCreate)
			r.Post("/categories/{id}/delete", s.handleCategoryDelete)
			r.Get("/users", s.handleUsers)
			r.Get("/quotes", s.handleQuotes)
		})
	})

	return r
}

// CORSOptions returns the CORS configuration for the session endpoint.
func CORSOptions(allowedOrigins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down dashboard")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}
