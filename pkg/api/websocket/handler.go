package websocket

import (
	"context"
	"net/http"

	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for MVP
	},
}

// Handler upgrades client connections and runs the bus-to-socket relay
type Handler struct {
	bus      ports.ProgressBus
	registry *Registry
	metrics  ports.MetricsCollector
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(bus ports.ProgressBus, registry *Registry, metrics ports.MetricsCollector, logger *zap.Logger) *Handler {
	return &Handler{
		bus:      bus,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// Start subscribes the relay to both event namespaces. Subscription is eager:
// it happens once at startup, not per connection, so events published while
// no client is connected flow through the relay and are dropped there. Both
// namespaces share one subscription, so a client's result event cannot
// overtake its earlier activity events.
func (h *Handler) Start(ctx context.Context) error {
	if err := h.bus.PSubscribe(ctx, h.relay, domain.ActivityPattern, domain.ResultsPattern); err != nil {
		return err
	}

	h.logger.Info("event relay started")
	return nil
}

// relay forwards one bus message, verbatim, to the connection registered for
// the channel's client id
func (h *Handler) relay(ctx context.Context, channel string, payload []byte) {
	clientID, ok := domain.ClientFromChannel(channel)
	if !ok {
		h.logger.Warn("message on unrecognized channel", zap.String("channel", channel))
		return
	}

	if h.registry.Send(clientID, payload) {
		h.metrics.RecordEventDelivered()
	} else {
		h.metrics.RecordEventDropped()
	}
}

// HandleConnection upgrades an HTTP request to a WebSocket connection and
// keeps it registered until the client disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	clientID := c.Param("client_id")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	h.registry.Register(clientID, conn)
	defer func() {
		h.registry.Unregister(clientID, conn)
		_ = conn.Close()
	}()

	h.logger.Info("WebSocket connection established",
		zap.String("client_id", clientID),
		zap.String("remote", c.ClientIP()))

	// Clients only listen; the read loop exists to observe disconnects and
	// answer control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
