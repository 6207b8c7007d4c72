package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendant/studio-site/pkg/studio"
)

// DefaultMaxUploadBytes caps multipart bodies when Config leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// Config holds the HTTP-level settings of the router.
type Config struct {
	Environment        string
	StorageBackend     string
	MediaURLPrefix     string
	MaxUploadBytes     int64
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string

	// AdminJWTSecret enables HS256 bearer-token checks on admin routes.
	// Empty leaves them open.
	AdminJWTSecret string

	// Logger receives access logs. Nil builds one from Environment.
	Logger *httplog.Logger
}

// NewRouter wires the studio service into a chi router.
func NewRouter(svc studio.Service, cfg Config) chi.Router {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.MediaURLPrefix == "" {
		cfg.MediaURLPrefix = studio.DefaultMediaURLPrefix
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.Logger == nil {
		cfg.Logger = httplog.NewLogger("studio-site", httplog.Options{
			JSON:            cfg.Environment != "development",
			LogLevel:        slog.LevelInfo,
			Concise:         true,
			QuietDownRoutes: []string{"/health", "/metrics"},
			QuietDownPeriod: 10 * time.Second,
		})
	}

	content := NewContentHandler(svc, cfg.MaxUploadBytes)
	leads := NewLeadsHandler(svc)
	insight := NewInsightHandler(svc)
	media := NewMediaHandler(svc)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{
			"status":      "ok",
			"environment": cfg.Environment,
			"storage":     cfg.StorageBackend,
		})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get(strings.TrimRight(cfg.MediaURLPrefix, "/")+"/*", media.ServeMedia)

	var auth *jwtauth.JWTAuth
	if cfg.AdminJWTSecret != "" {
		auth = jwtauth.New("HS256", []byte(cfg.AdminJWTSecret), nil)
	}

	r.Route("/api", func(r chi.Router) {
		// Public site
		r.Group(func(r chi.Router) {
			r.Get("/projects", content.ListProjects)
			r.Get("/projects/{id}", content.GetProject)
			r.Get("/posts", content.ListPosts)
			r.Get("/posts/{id}", content.GetPost)
			r.Get("/team", content.ListTeam)
			r.Get("/team/{id}", content.GetTeamMember)
			r.Get("/search", insight.Search)

			r.Post("/contact", leads.SubmitContact)
			r.Post("/newsletter", leads.Subscribe)
		})

		// Admin dashboard
		r.Group(func(r chi.Router) {
			if auth != nil {
				r.Use(jwtauth.Verifier(auth))
				r.Use(jwtauth.Authenticator)
			}

			r.Post("/projects", content.CreateProject)
			r.Delete("/projects/{id}", content.DeleteProject)
			r.Post("/posts", content.CreatePost)
			r.Delete("/posts/{id}", content.DeletePost)
			r.Post("/team", content.CreateTeamMember)
			r.Delete("/team/{id}", content.DeleteTeamMember)

			r.Get("/contacts", leads.ListContacts)
			r.Delete("/contacts/{id}", leads.DeleteContact)
			r.Get("/newsletter", leads.ListSubscribers)
			r.Delete("/newsletter/{id}", leads.DeleteSubscriber)

			r.Get("/stats", insight.Stats)
		})
	})

	return r
}
