package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medsbuddy/medsbuddy/internal/config"
	"github.com/medsbuddy/medsbuddy/internal/domain/alerts"
	"github.com/medsbuddy/medsbuddy/internal/domain/caretaker"
	"github.com/medsbuddy/medsbuddy/internal/domain/medication"
	"github.com/medsbuddy/medsbuddy/internal/domain/profile"
	"github.com/medsbuddy/medsbuddy/internal/platform/auth"
	"github.com/medsbuddy/medsbuddy/internal/platform/db"
	"github.com/medsbuddy/medsbuddy/internal/platform/middleware"
	"github.com/medsbuddy/medsbuddy/internal/platform/notification"
	"github.com/medsbuddy/medsbuddy/internal/platform/scheduling"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medsbuddy-server",
		Short: "MedsBuddy medication adherence API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(checkMissedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func checkMissedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-missed",
		Short: "Run the missed-dose check once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(os.Getenv("ENV"))

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			sender, err := emailSenderFor(cfg, logger)
			if err != nil {
				return err
			}

			job := alerts.NewJob(alerts.NewSourcePG(pool), sender, logger)
			result, err := job.Run(ctx)
			if err != nil {
				return err
			}

			out, err := json.Marshal(result)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

// newLogger returns the process logger. Development gets human-readable
// console output; everything else gets JSON lines.
func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// emailSenderFor picks the outbound mail implementation. Without SMTP
// settings alerts are recorded in memory only, which keeps local
// development working without a relay.
func emailSenderFor(cfg *config.Config, logger zerolog.Logger) (notification.EmailSender, error) {
	if !cfg.SMTPConfigured() {
		logger.Warn().Msg("SMTP not configured, caretaker emails will not be delivered")
		return &notification.MockEmailSender{}, nil
	}
	return notification.NewSMTPSender(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     strconv.Itoa(cfg.SMTPPort),
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	})
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Env)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Repositories and services
	profileRepo := profile.NewRepoPG(pool)
	profileSvc := profile.NewService(profileRepo)

	medRepo := medication.NewRepoPG(pool)
	logRepo := medication.NewLogRepoPG(pool)
	medSvc := medication.NewService(medRepo, logRepo, profileSvc)

	caretakerSvc := caretaker.NewService(profileSvc, medSvc)

	sender, err := emailSenderFor(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure email sender")
	}
	alertJob := alerts.NewJob(alerts.NewSourcePG(pool), sender, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Authenticated API
	api := e.Group("/api/v1")
	if cfg.IsDev() {
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	profile.NewHandler(profileSvc).RegisterRoutes(api)
	medication.NewHandler(medSvc).RegisterRoutes(api)
	caretaker.NewHandler(caretakerSvc).RegisterRoutes(api)

	// Internal endpoints authenticated by the cron secret, not user JWTs.
	internal := e.Group("/internal")
	alerts.NewHandler(alertJob, cfg.CronSecret).RegisterRoutes(internal)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/healthz/db", db.HealthHandler(pool))

	// Optional in-process scheduler for the missed-dose check. Deployments
	// with an external cron hit POST /internal/check-missed instead.
	if cfg.CronEnabled {
		cronJob := func(ctx context.Context) error {
			_, err := alertJob.Run(ctx)
			return err
		}
		cr, err := scheduling.New(cfg.CronSchedule, cronJob, 5*time.Minute, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid cron schedule")
		}
		cr.Start()
		defer cr.Stop()
		logger.Info().Str("schedule", cfg.CronSchedule).Msg("missed-dose scheduler started")
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
