package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raychrisgdp/taskgenie/internal/config"
	"github.com/raychrisgdp/taskgenie/internal/database"
)

// TelemetryHandler reports process health and store status. It observes but
// never mutates core state.
type TelemetryHandler struct {
	store     *database.Store
	cfg       *config.Config
	startTime time.Time
}

func NewTelemetryHandler(store *database.Store, cfg *config.Config) *TelemetryHandler {
	return &TelemetryHandler{
		store:     store,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// Health handles GET /health.
func (h *TelemetryHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.cfg.AppVersion,
	})
}

// Telemetry handles GET /api/v1/telemetry. It always answers 200; problems
// are reported in the payload so a degraded process stays observable.
func (h *TelemetryHandler) Telemetry(c *gin.Context) {
	connected, dbErr := h.checkDB(c)

	status := "ok"
	if !connected || h.store.State() == database.StateDegraded {
		status = "degraded"
	}

	db := gin.H{
		"connected":         connected,
		"migration_version": h.migrationVersion(),
		"state":             h.store.State().String(),
	}
	if dbErr != "" {
		db["error"] = dbErr
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"version":  h.cfg.AppVersion,
		"uptime_s": int(time.Since(h.startTime).Seconds()),
		"db":       db,
	})
}

func (h *TelemetryHandler) checkDB(c *gin.Context) (bool, string) {
	sqlDB, err := h.store.DB().DB()
	if err != nil {
		return false, err.Error()
	}
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// migrationVersion returns the persisted schema version, or nil when the
// marker table does not exist.
func (h *TelemetryHandler) migrationVersion() any {
	version, err := database.NewMigrator(h.store).CurrentVersion()
	if err != nil || version == "" {
		return nil
	}
	return version
}
