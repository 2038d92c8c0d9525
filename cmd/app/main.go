package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shoecare/cmd"
	httpin "shoecare/internal/adapters/in/http"
	"shoecare/internal/adapters/out/postgres"
	"shoecare/internal/core/domain/model/actor"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("shoecare: %v", err)
	}
}

type app struct {
	logLevel string
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "shoecare",
		Short:         "Shoe-cleaning orders and courier dispatch",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(a.serveCommand(), a.migrateCommand(), a.tokenCommand())
	return root
}

// load reads the configuration and builds the process logger.
func (a *app) load() (cmd.Config, *slog.Logger, error) {
	cfg, err := cmd.LoadConfig()
	if err != nil {
		return cmd.Config{}, nil, err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := cmd.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return cmd.Config{}, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

func (a *app) serveCommand() *cobra.Command {
	var migrate bool
	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and background jobs",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, logger, err := a.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if migrate && cfg.Store == cmd.StorePostgres {
				if err = runMigrations(ctx, cfg); err != nil {
					return err
				}
			}
			return serve(ctx, cfg, logger)
		},
	}
	c.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return c
}

func serve(ctx context.Context, cfg cmd.Config, logger *slog.Logger) error {
	root, err := cmd.NewCompositionRoot(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := root.Close(); closeErr != nil {
			logger.Error("failed to close resources", "error", closeErr)
		}
	}()

	e, err := root.CreateEcho(ctx)
	if err != nil {
		return err
	}

	jobManager := root.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
		logger.InfoContext(gctx, "HTTP server listening", "addr", addr, "store", cfg.Store)
		if startErr := e.Start(addr); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			return startErr
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("HTTP server shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *app) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, logger, err := a.load()
			if err != nil {
				return err
			}
			if cfg.Store != cmd.StorePostgres {
				return fmt.Errorf("migrate requires STORE=%s, got %q", cmd.StorePostgres, cfg.Store)
			}
			if err = runMigrations(c.Context(), cfg); err != nil {
				return err
			}
			logger.Info("schema migrated", "database", cfg.DBName)
			return nil
		},
	}
}

func runMigrations(ctx context.Context, cfg cmd.Config) error {
	db, err := cmd.OpenDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return postgres.Migrate(ctx, db)
}

// tokenCommand issues access tokens for local testing; production tokens come from the
// identity provider sharing JWT_SECRET.
func (a *app) tokenCommand() *cobra.Command {
	var (
		subject string
		name    string
		role    string
		ttl     time.Duration
	)
	c := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, _, err := a.load()
			if err != nil {
				return err
			}
			r, err := actor.ParseRole(role)
			if err != nil {
				return err
			}
			token, err := httpin.IssueToken([]byte(cfg.JWTSecret), actor.Actor{ID: subject, Name: name, Role: r}, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.OutOrStdout(), token)
			return err
		},
	}
	c.Flags().StringVar(&subject, "sub", "", "user id (UUID)")
	c.Flags().StringVar(&name, "name", "", "display name")
	c.Flags().StringVar(&role, "role", string(actor.RoleCustomer), "role")
	c.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = c.MarkFlagRequired("sub")
	return c
}
