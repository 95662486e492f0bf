package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oldmonad/cloudinv/internal/app"
	cerrors "github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"github.com/oldmonad/cloudinv/pkg/ports"
	"go.uber.org/zap"
)

// InventoryHandler exposes the inventory pipeline over HTTP.
type InventoryHandler struct {
	app app.AppRunner
}

func NewInventoryHandler(app app.AppRunner) *InventoryHandler {
	return &InventoryHandler{app: app}
}

type refreshRequest struct {
	SkipPublish bool `json:"skip_publish"`
}

// Health answers GET /healthz.
func (h *InventoryHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Refresh processes POST /inventory/refresh. The body is optional.
func (h *InventoryHandler) Refresh(c *gin.Context) {
	logger.Log.Debug("Handling inventory refresh request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path))

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonErr := cerrors.NewErrInvalidJSON(err)
		logger.Log.Warn("Invalid refresh request", zap.Error(jsonErr))
		c.JSON(http.StatusBadRequest, gin.H{"error": jsonErr.Error()})
		return
	}

	result, err := h.app.Run(c.Request.Context(), app.RunOptions{
		SkipPublish: req.SkipPublish,
		Source:      ports.HTTP,
	})
	if err != nil {
		runErr := cerrors.NewErrAppRun(err)
		logger.Log.Error("Inventory refresh failed", zap.Error(runErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": runErr.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
