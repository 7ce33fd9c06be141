package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/crm-sync-service/internal/models"
	"github.com/PratikDhanave/crm-sync-service/internal/store"
)

// OutcomeCounter counts audit log rows.
type OutcomeCounter interface {
	CountOutcomes(ctx context.Context, f store.OutcomeFilter) (int64, error)
}

// RegisterStatsRoutes registers the audit query endpoint.
//
// GET /sync-stats?record_type=...&status=...&from=...&to=...
// - record_type and status are optional filters
// - Returns the number of processed records in the window [from,to)
// - 503 when the audit log is disabled (no DB_URL)
func RegisterStatsRoutes(r gin.IRoutes, counter OutcomeCounter) {
	r.GET("/sync-stats", func(c *gin.Context) {
		if counter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync audit log disabled"})
			return
		}

		recordType := c.Query("record_type")
		status := c.Query("status")
		fromStr := c.Query("from")
		toStr := c.Query("to")

		if fromStr == "" || toStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from, to are required"})
			return
		}

		switch models.SyncStatus(status) {
		case "", models.StatusSynced, models.StatusSkipped, models.StatusFailed:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be synced, skipped or failed"})
			return
		}

		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}

		from = from.UTC()
		to = to.UTC()

		// Validate window to avoid confusing results.
		if !from.Before(to) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be < to"})
			return
		}

		count, err := counter.CountOutcomes(c.Request.Context(), store.OutcomeFilter{
			RecordType: recordType,
			Status:     status,
			From:       from,
			To:         to,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"record_type": recordType,
			"status":      status,
			"count":       count,
		})
	})
}
