package websocket

import (
	"sync"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/ports"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// writeTimeout bounds a single socket write so a peer that stopped reading
// times out into the remove-on-failure path instead of blocking a writer.
const writeTimeout = 10 * time.Second

// client pairs a connection with the mutex serializing writes to it. The
// connection permits only one concurrent writer, and the activity and result
// relays can target the same client at the same time.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Registry tracks the live connection for each client id. A client has at
// most one connection; a new connection replaces the old one.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*client
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// NewRegistry creates a new connection registry
func NewRegistry(metrics ports.MetricsCollector, logger *zap.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*client),
		metrics: metrics,
		logger:  logger,
	}
}

// Register records a client's connection, replacing and closing any previous one
func (r *Registry) Register(clientID string, conn *websocket.Conn) {
	r.mu.Lock()
	previous := r.clients[clientID]
	r.clients[clientID] = &client{conn: conn}
	count := len(r.clients)
	r.mu.Unlock()

	if previous != nil {
		_ = previous.conn.Close()
	}

	r.metrics.SetLiveConnections(count)
	r.logger.Info("client connected", zap.String("client_id", clientID))
}

// Unregister removes a client's connection if it is still the registered one
func (r *Registry) Unregister(clientID string, conn *websocket.Conn) {
	r.mu.Lock()
	if c, ok := r.clients[clientID]; ok && c.conn == conn {
		delete(r.clients, clientID)
	}
	count := len(r.clients)
	r.mu.Unlock()

	r.metrics.SetLiveConnections(count)
	r.logger.Info("client disconnected", zap.String("client_id", clientID))
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Send delivers one payload to the client's connection. It reports false when
// no connection is registered. The registry lock covers only the map lookup;
// the write itself is serialized by the connection's own mutex, so one stalled
// peer cannot block delivery to other clients. A write failure removes the
// connection.
func (r *Registry) Send(clientID string, payload []byte) bool {
	r.mu.Lock()
	c, ok := r.clients[clientID]
	r.mu.Unlock()

	if !ok {
		return false
	}

	c.mu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := c.conn.WriteMessage(websocket.TextMessage, payload)
	c.mu.Unlock()

	if err != nil {
		r.logger.Warn("failed to write to client, dropping connection",
			zap.String("client_id", clientID),
			zap.Error(err))
		r.drop(clientID, c)
		return false
	}

	return true
}

// drop removes a failed connection if it is still the registered one
func (r *Registry) drop(clientID string, failed *client) {
	r.mu.Lock()
	if r.clients[clientID] == failed {
		delete(r.clients, clientID)
	}
	count := len(r.clients)
	r.mu.Unlock()

	_ = failed.conn.Close()
	r.metrics.SetLiveConnections(count)
}
