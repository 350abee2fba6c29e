package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mamadbah2/ganadero/internal/domain/models"
	"github.com/mamadbah2/ganadero/internal/service/analytics"
)

// AnalyticsService is the engine surface served over HTTP.
type AnalyticsService interface {
	ComputeSnapshotWithLimit(ctx context.Context, feedLimit int) (*models.KpiSnapshot, error)
	ComputeBuyerPricing(ctx context.Context, buyerID string) (*models.BuyerPricing, error)
}

// AnalyticsHandler exposes snapshots, buyer pricing and the snapshot stream.
type AnalyticsHandler struct {
	svc            AnalyticsService
	validator      *validator.Validate
	upgrader       websocket.Upgrader
	streamInterval time.Duration
	logger         *zap.Logger
}

// NewAnalyticsHandler constructs the HTTP handler adapter.
func NewAnalyticsHandler(svc AnalyticsService, streamInterval time.Duration, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if streamInterval <= 0 {
		streamInterval = 30 * time.Second
	}
	return &AnalyticsHandler{
		svc:       svc,
		validator: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		streamInterval: streamInterval,
		logger:         logger,
	}
}

type snapshotParams struct {
	FeedLimit *int `form:"feed_limit" validate:"omitempty,min=1,max=50"`
}

// Snapshot serves the current KPI snapshot.
func (h *AnalyticsHandler) Snapshot(c *gin.Context) {
	var params snapshotParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feed_limit must be an integer"})
		return
	}
	if err := h.validator.Struct(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	var feedLimit int
	if params.FeedLimit != nil {
		feedLimit = *params.FeedLimit
	}

	snapshot, err := h.svc.ComputeSnapshotWithLimit(c.Request.Context(), feedLimit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// BuyerPricing serves weighted prices per category for one buyer.
func (h *AnalyticsHandler) BuyerPricing(c *gin.Context) {
	buyerID := c.Param("id")
	if err := h.validator.Var(buyerID, "required,max=64,printascii"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid buyer id"})
		return
	}

	pricing, err := h.svc.ComputeBuyerPricing(c.Request.Context(), buyerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pricing)
}

// Stream pushes a snapshot on connect and then every stream interval until the
// client disconnects.
func (h *AnalyticsHandler) Stream(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "analytics_stream"))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	readWait := 2*h.streamInterval + 10*time.Second
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	// The read pump only detects client close; inbound messages are discarded.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		if err := h.push(ctx, conn); err != nil {
			logger.Debug("stream closed", zap.Error(err))
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			logger.Debug("stream context done")
			return
		}
	}
}

func (h *AnalyticsHandler) push(ctx context.Context, conn *websocket.Conn) error {
	snapshot, err := h.svc.ComputeSnapshotWithLimit(ctx, 0)
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err != nil {
		h.logger.Warn("stream snapshot failed", zap.Error(err))
		_, body := errorBody(err)
		return conn.WriteJSON(body)
	}
	if err := conn.WriteJSON(snapshot); err != nil {
		return err
	}
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (h *AnalyticsHandler) respondError(c *gin.Context, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("analytics request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, body)
}

func errorBody(err error) (int, gin.H) {
	switch {
	case errors.Is(err, analytics.ErrInvalidBuyer):
		return http.StatusBadRequest, gin.H{"error": analytics.ErrInvalidBuyer.Error()}
	case errors.Is(err, analytics.ErrAnimalsUnavailable):
		return http.StatusServiceUnavailable, gin.H{"error": analytics.ErrAnimalsUnavailable.Error(), "retry": true}
	case errors.Is(err, analytics.ErrPricingUnavailable):
		return http.StatusServiceUnavailable, gin.H{"error": analytics.ErrPricingUnavailable.Error(), "retry": true}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, gin.H{"error": "record store timed out", "retry": true}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal error"}
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "min", "max":
		return "feed_limit must be between 1 and 50"
	default:
		return fe.Field() + " is invalid"
	}
}
