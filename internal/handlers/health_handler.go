package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"numbersapi/internal/metrics"
)

// @Summary      Health check
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       / [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Numbers API running"})
}

// Metrics serves the process counters in Prometheus text format.
func Metrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4")
	c.Status(http.StatusOK)
	metrics.WritePrometheus(c.Writer)
}
