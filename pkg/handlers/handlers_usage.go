package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/ttr-scheduler/pkg/database"
)

// RecordUsage adds the request to the calling key's usage for today
func (h *Handler) RecordUsage(c *gin.Context, d database.UsageDelta) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	if err := database.UpsertUsage(h.DB, apiKey.ID, time.Now().Format("2006-01-02"), d); err != nil {
		h.logger().Error("could not record usage", slog.Uint64("key_id", uint64(apiKey.ID)), slog.Any("error", err))
	}
}

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	usage, err := database.UsageHistory(h.DB, apiKey.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	// Calculate totals
	var totalRequests, totalPositions, totalPeople, totalHours int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalPositions += int64(u.TotalPositions)
		totalPeople += int64(u.TotalPeople)
		totalHours += int64(u.HoursPlanned)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests":      totalRequests,
			"positions":     totalPositions,
			"people":        totalPeople,
			"hours_planned": totalHours,
		},
	})
}
