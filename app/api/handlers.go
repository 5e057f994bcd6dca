package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goncharom/yomu/app/config"
	"github.com/goncharom/yomu/app/database"
	"github.com/goncharom/yomu/app/newsletter"
	"github.com/goncharom/yomu/app/schedule"
)

func NewHandler(cfg *config.Config, schedules *schedule.Set,
	runs database.RunRepository, coordinator *newsletter.Coordinator) *Handler {
	return &Handler{
		config:      cfg,
		schedules:   schedules,
		runs:        runs,
		coordinator: coordinator,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"phase":     string(h.coordinator.Phase()),
		"sources":   len(h.config.Sources),
		"schedules": h.schedules.Expressions(),
	}

	if nextFire, err := h.schedules.NextFire(time.Now()); err == nil {
		health["next_fire_at"] = nextFire.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	records, err := h.runs.ListRuns()
	if err != nil {
		slog.Error("Database error", "operation", "list_runs", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	sources := make([]map[string]interface{}, 0, len(h.config.Sources))
	for _, sourceKey := range h.config.Sources {
		info := map[string]interface{}{
			"source":              sourceKey,
			"last_successful_run": nil,
		}
		if record := findRun(records, sourceKey); record != nil && record.LastSuccessfulRun != nil {
			info["last_successful_run"] = record.LastSuccessfulRun.Format(time.RFC3339)
		}
		sources = append(sources, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"phase":   string(h.coordinator.Phase()),
		"sources": sources,
	})
}

func findRun(records []database.RunRecord, sourceKey string) *database.RunRecord {
	for i := range records {
		if records[i].SourceKey == sourceKey {
			return &records[i]
		}
	}
	return nil
}
