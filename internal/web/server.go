package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/metrics"
)

const (
	// DefaultAddr is the default server address.
	DefaultAddr = "127.0.0.1:8080"

	defaultMaxUpload = 500 << 20
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	Analyzer       Analyzer
	MaxUploadBytes int64
	UploadDir      string
	TemplatesFS    fs.FS
	StaticFS       fs.FS

	// Auth enables Spotify login and playlist creation when set.
	Auth *spotifyauth.Authenticator
	// Sessions defaults to an in-memory store.
	Sessions SessionManager
	// Playlists records created playlists when set.
	Playlists PlaylistStore
	// UserClient defaults to the Spotify Web API client.
	UserClient UserClientFunc
}

// Server is the HTTP server for the web application.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Analyzer == nil {
		return nil, errors.New("web: analyzer is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = NewSessionStore()
	}
	if cfg.UserClient == nil && cfg.Auth != nil {
		cfg.UserClient = defaultUserClient(cfg.Auth)
	}

	templates, err := NewTemplates(cfg.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		handlers: &Handlers{
			analyzer:       cfg.Analyzer,
			auth:           cfg.Auth,
			sessions:       cfg.Sessions,
			templates:      templates,
			playlists:      cfg.Playlists,
			userClient:     cfg.UserClient,
			uploadDir:      cfg.UploadDir,
			maxUploadBytes: cfg.MaxUploadBytes,
		},
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.StaticFS)

	// No read or write timeout: uploads and event streams are long-lived.
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&requestLogger{logger: logging.Logger}))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes(staticFS fs.FS) {
	if staticFS != nil {
		fileServer := http.FileServer(http.FS(staticFS))
		s.router.With(middleware.Compress(5)).Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	s.router.Get("/", s.handlers.Home)
	s.router.Get("/health", s.handlers.Health)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Post("/analyze", s.handlers.Analyze)
	s.router.Post("/reroll", s.handlers.Reroll)
	s.router.Post("/playlist", s.handlers.CreatePlaylist)

	s.router.Get("/auth/login", s.handlers.Login)
	s.router.Get("/callback", s.handlers.Callback)
	s.router.Post("/auth/logout", s.handlers.Logout)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.Logger.WithField("addr", s.server.Addr).Info("Starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down on SIGINT or SIGTERM.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		logging.Logger.Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logging.Logger.Info("Server stopped")
	return nil
}
