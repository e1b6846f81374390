package cli

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/justestif/resonance/internal/auth"
	"github.com/justestif/resonance/internal/db"
	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/web"
	webfs "github.com/justestif/resonance/web"
)

func (a *app) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Serve the upload page, the analysis stream, Spotify login and /metrics.

Sessions are kept in memory unless database.url (or DATABASE_URL) is set.

Example:
  resonance serve --addr 0.0.0.0:8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	cfg := a.cfg
	if err := checkConfig(cfg); err != nil {
		return err
	}

	if err := newExtractor(cfg).VerifyInstalled(ctx); err != nil {
		logging.Logger.WithError(err).Warn("ffmpeg not found; uploads will fail")
	}

	p, err := newPipeline(ctx, cfg, true)
	if err != nil {
		return err
	}

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}
	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	serverCfg := web.ServerConfig{
		Addr:           cfg.Server.Addr,
		Analyzer:       p,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		UploadDir:      cfg.Server.UploadDir,
		TemplatesFS:    templates,
		StaticFS:       static,
	}

	if cfg.HasSpotify() {
		authenticator, err := auth.NewUserAuthenticator(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Server.RedirectURI)
		if err != nil {
			return err
		}
		serverCfg.Auth = authenticator
	}

	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return err
		}

		store := web.NewDBSessionStore(database)
		if n, err := store.PurgeExpired(ctx); err != nil {
			logging.Logger.WithError(err).Warn("Failed to purge expired sessions")
		} else if n > 0 {
			logging.Logger.WithField("count", n).Info("Purged expired sessions")
		}

		serverCfg.Sessions = store
		serverCfg.Playlists = database.Playlists()
	}

	server, err := web.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return server.Run()
}
