package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"docvault/internal/cache"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports liveness and dependency health.
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewHealthHandler creates a health handler; cache may be nil.
func NewHealthHandler(db *gorm.DB, cache *cache.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// HealthResponse describes the state of the service and its stores.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

// Live godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready godoc
// @Summary Database readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz/db [get]
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "up", Cache: "disabled"}
	if h.cache != nil {
		// a failed cache ping does not fail readiness
		resp.Cache = "up"
		if err := h.cache.Ping(ctx); err != nil {
			resp.Cache = "down"
		}
	}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		resp.Status, resp.Database = "unavailable", "down"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
