package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/ganadero/internal/domain/models"
	"github.com/mamadbah2/ganadero/internal/service/digest"
)

// DigestService sends a KPI digest.
type DigestService interface {
	Send(ctx context.Context, to string) (*models.DigestReceipt, error)
}

// DigestHandler lets operators trigger the WhatsApp digest on demand.
type DigestHandler struct {
	svc    DigestService
	logger *zap.Logger
}

// NewDigestHandler constructs the HTTP handler adapter.
func NewDigestHandler(svc DigestService, logger *zap.Logger) *DigestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DigestHandler{svc: svc, logger: logger}
}

// Send delivers a digest. The body is optional.
func (h *DigestHandler) Send(c *gin.Context) {
	var req models.DigestRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("invalid digest payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	receipt, err := h.svc.Send(c.Request.Context(), req.To)
	if err != nil {
		if errors.Is(err, digest.ErrNoRecipient) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if status, body := errorBody(err); status == http.StatusServiceUnavailable {
			c.JSON(status, body)
			return
		}
		h.logger.Error("failed sending digest", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send digest"})
		return
	}

	c.JSON(http.StatusAccepted, receipt)
}
