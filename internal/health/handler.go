package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keshav-protos/medai-clinical-view/internal/shared/server/respond"
)

// Handler serves service liveness and the cached analyzer status.
type Handler struct {
	Monitor *Monitor
}

// RegisterRoutes attaches health routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
	rg.GET("/status/analyzer", h.analyzer)
}

func (h *Handler) health(c *gin.Context) {
	respond.OK(c, gin.H{"status": "ok"})
}

func (h *Handler) analyzer(c *gin.Context) {
	snap := h.Monitor.Snapshot()
	status := http.StatusOK
	if snap.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	respond.JSON(c, status, snap)
}
