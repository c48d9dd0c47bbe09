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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"jobcard_portal/internal/config"
	"jobcard_portal/internal/database"
	"jobcard_portal/internal/logging"
	"jobcard_portal/internal/repositories"
	"jobcard_portal/internal/server"
	"jobcard_portal/internal/services"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jobcard-portal",
		Short:         "Project jobcard and HSE checklist portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSuperuserCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateDatabase(); err != nil {
				return err
			}
			pool, err := database.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return database.RunMigrations(cmd.Context(), pool)
		},
	}
}

func newSuperuserCmd() *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "superuser <email>",
		Short: "Grant or revoke superuser rights for a user who has signed in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateDatabase(); err != nil {
				return err
			}
			pool, err := database.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			admin := services.NewAdminService(
				repositories.NewUserRepository(pool),
				repositories.NewProjectRepository(pool),
				repositories.NewMemberRepository(pool),
			)
			if err := admin.SetSuperuser(cmd.Context(), args[0], !revoke); err != nil {
				return err
			}
			if revoke {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer a superuser\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now a superuser\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove superuser rights instead of granting them")
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.LogLevel, cfg.LogFile)
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		return err
	}

	rdb, err := connectRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	srv, err := server.NewServer(cfg, pool, rdb)
	if err != nil {
		return err
	}
	return run(srv, pool)
}

// connectRedis fails fast with a clear message when Redis is unreachable.
func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}
	logging.Logger.WithField("addr", cfg.RedisAddr).Info("connected to Redis")
	return rdb, nil
}

func run(srv *http.Server, pool *pgxpool.Pool) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logging.Logger.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.WithError(err).Error("server shutdown")
	}
	logging.Logger.WithField("total_conns", pool.Stat().TotalConns()).Info("server exiting")
	return nil
}
