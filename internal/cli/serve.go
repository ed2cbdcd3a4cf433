package cli

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/raychrisgdp/taskgenie/internal/config"
	"github.com/raychrisgdp/taskgenie/internal/database"
	"github.com/raychrisgdp/taskgenie/internal/handlers"
	"github.com/raychrisgdp/taskgenie/internal/logging"
	"github.com/raychrisgdp/taskgenie/internal/middleware"
	"github.com/raychrisgdp/taskgenie/internal/repository"
	"github.com/raychrisgdp/taskgenie/internal/services"
)

// newServeCommand creates the serve command.
func newServeCommand() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the taskgenie REST API server.

The database schema is checked on startup and upgraded to the latest
version when needed. With migration_policy = "permissive" a failed
upgrade leaves the server running in a degraded state instead of
aborting.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Host = host
			}
			if port != 0 {
				cfg.Port = port
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind address (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")

	return cmd
}

func runServe(cfg *config.Config) error {
	if err := cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}

	logger, closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	store, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.Bootstrap(cfg.MigrationPolicy, logger); err != nil {
		return err
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := newRouter(cfg, store, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info("server starting",
		"addr", addr,
		"version", cfg.AppVersion,
		"db_state", store.State().String())
	return router.Run(addr)
}

// newRouter wires middleware, handlers and routes into a gin engine.
func newRouter(cfg *config.Config, store *database.Store, logger *slog.Logger) *gin.Engine {
	repo := repository.NewTaskRepository(store.DB())
	taskService := services.NewTaskService(repo, cfg.NotificationOffsets())
	taskHandler := handlers.NewTaskHandler(taskService)
	telemetryHandler := handlers.NewTelemetryHandler(store, cfg)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogging(logger))

	router.GET("/health", telemetryHandler.Health)
	if cfg.TelemetryEnabled {
		router.GET("/api/v1/telemetry", telemetryHandler.Telemetry)
	}

	tasks := router.Group("/tasks")
	{
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("", taskHandler.ListTasks)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.POST("/:id/attachments", taskHandler.CreateAttachment)
		tasks.GET("/:id/attachments", taskHandler.ListAttachments)
	}

	return router
}
