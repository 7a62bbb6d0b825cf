package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wall/internal/auth"
	"wall/internal/board"
	"wall/internal/config"
	"wall/internal/db"
	httpx "wall/internal/http"
	"wall/internal/logger"
	"wall/internal/moderation"
	"wall/internal/pin"
	"wall/internal/series"
	"wall/internal/share"
	"wall/internal/shortlink"
	"wall/internal/wall"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "wall",
		Short:        "Personal notes wall with pinned entries and share links",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config, installs the global logger and opens the database.
func setup() (config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, nil, err
	}
	zap.ReplaceGlobals(log)

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return cfg, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, gdb, nil
}

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gdb, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = zap.L().Sync() }()

			if migrate {
				err = db.EnsureSchema(gdb)
			} else {
				err = db.CheckSchema(gdb)
			}
			if err != nil {
				return err
			}

			svcs, err := build(cmd.Context(), cfg, gdb)
			if err != nil {
				return err
			}
			return serve(cfg, httpx.NewRouter(cfg, svcs))
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}

func build(ctx context.Context, cfg config.Config, gdb *gorm.DB) (httpx.Services, error) {
	log := zap.L()

	walls := wall.NewService(gdb)
	if _, err := walls.EnsureDefault(ctx); err != nil {
		return httpx.Services{}, fmt.Errorf("ensure default wall: %w", err)
	}

	var screener board.Screener
	if cfg.OpenAIAPIKey != "" {
		screener = moderation.NewScreener(moderation.NewOpenAI(cfg.OpenAIAPIKey))
	} else {
		log.Warn("OPENAI_API_KEY not set, friend notes are not screened")
	}

	store := &board.GormStore{DB: gdb}
	entries := board.NewService(store, screener)

	links := shortlink.NewDirectory(&shortlink.GormStore{DB: gdb}, entries, walls)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, short links are served from the database", zap.Error(err))
		}
		links.Cache = shortlink.NewRedisCache(client, cfg.LinkCacheTTL)
	}

	external := shortlink.NewShortener(cfg.ShortURLProvider, cfg.BitlyToken, cfg.ShortIOAPIKey, cfg.ShortIODomain)

	return httpx.Services{
		Gate:      auth.NewGate(cfg.WallPassword, cfg.WallPasswordHash),
		JWT:       auth.NewJWT(cfg.JWTSecret, cfg.SessionTTL),
		Entries:   entries,
		Pins:      pin.NewEngine(store),
		Walls:     walls,
		Series:    series.NewService(gdb, store),
		Links:     links,
		Publisher: shortlink.NewPublisher(cfg.PublicBaseURL, cfg.ShortURLProvider, external),
		Share:     share.NewResponder(links, entries, walls),
	}, nil
}

func serve(cfg config.Config, h http.Handler) error {
	log := zap.L()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-ch:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gdb, err := setup()
			if err != nil {
				return err
			}
			if err := db.EnsureSchema(gdb); err != nil {
				return err
			}
			if _, err := wall.NewService(gdb).EnsureDefault(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("schema at version %d\n", db.SchemaVersion)
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for WALL_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}
