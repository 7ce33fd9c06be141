package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/crm-sync-service/internal/auth"
	"github.com/PratikDhanave/crm-sync-service/internal/models"
	"github.com/PratikDhanave/crm-sync-service/internal/syncer"
)

// Processor syncs a single trigger record.
type Processor interface {
	Process(ctx context.Context, rec models.Record) models.SyncOutcome
}

// RegisterTriggerRoutes registers the trigger entry point.
//
// POST /triggers
// - Requires X-API-Key (trigger source)
// - Body is one flat Salesforce record; batches are not accepted
// - Always answers 200 with the sync outcome once the body parses:
//   per-record failures are reported, never retried
func RegisterTriggerRoutes(r gin.IRoutes, p Processor) {
	r.POST("/triggers", func(c *gin.Context) {
		var rec models.Record
		if err := c.ShouldBindJSON(&rec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
		if len(rec) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "record required"})
			return
		}

		ctx := syncer.WithSource(c.Request.Context(), auth.Source(c))
		c.JSON(http.StatusOK, p.Process(ctx, rec))
	})
}
