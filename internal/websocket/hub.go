// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	wstypes "contenthub-service/internal/domain/websocket"
	"contenthub-service/internal/pkg/jwt"
	"contenthub-service/internal/pkg/metrics"
	"contenthub-service/internal/pkg/session"

	"go.uber.org/zap"
)

type Hub struct {
	// Registered clients by user ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client

	broadcast chan *BroadcastMessage

	jwtVerifier    *jwt.Verifier
	sessionManager *session.Manager
	logger         *zap.Logger
}

// BroadcastMessage targets every client of UserIDs, or everyone when nil.
type BroadcastMessage struct {
	UserIDs []int64
	Message *wstypes.WSMessage
}

func NewHub(jwtVerifier *jwt.Verifier, sessionManager *session.Manager, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:        make(map[int64]map[*Client]bool),
		Register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan *BroadcastMessage, 256),
		jwtVerifier:    jwtVerifier,
		sessionManager: sessionManager,
		logger:         logger,
	}
}

// AuthenticateClient validates the access token and its live session.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.jwtVerifier.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	blacklisted, err := h.sessionManager.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, ErrTokenBlacklisted
	}

	if _, err := h.sessionManager.GetSession(ctx, claims.UserID, claims.ID); err != nil {
		return nil, ErrSessionExpired
	}

	return &ClientAuth{
		UserID:    claims.UserID,
		Username:  claims.Username,
		SessionID: claims.ID,
		Device:    claims.Device,
	}, nil
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	total := h.totalClients()
	h.mu.Unlock()

	metrics.WebsocketConnections.Inc()
	h.logger.Info("websocket client connected",
		zap.Int64("user_id", client.userID),
		zap.String("session_id", client.sessionID),
		zap.Int("total", total),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, wstypes.ConnectedData{
		UserID:   client.userID,
		ClientID: client.sessionID,
		Message:  "Connected",
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}

	delete(clients, client)
	client.Close()
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}

	metrics.WebsocketConnections.Dec()
	h.logger.Info("websocket client disconnected",
		zap.Int64("user_id", client.userID),
		zap.String("session_id", client.sessionID),
		zap.Int("total", h.totalClients()),
	)
}

func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.UserIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				client.SendMessage(msg.Message)
			}
		}
		return
	}

	for _, userID := range msg.UserIDs {
		for client := range h.clients[userID] {
			client.SendMessage(msg.Message)
		}
	}
}

// SendToUser queues msg for every connection of userID. It never blocks;
// when the queue is full the message is dropped.
func (h *Hub) SendToUser(userID int64, msg *wstypes.WSMessage) {
	select {
	case h.broadcast <- &BroadcastMessage{UserIDs: []int64{userID}, Message: msg}:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message",
			zap.Int64("user_id", userID),
			zap.String("type", string(msg.Type)),
		)
	}
}

func (h *Hub) GetConnectedClients(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

// IsUserConnected checks if a user has any active connections
func (h *Hub) IsUserConnected(userID int64) bool {
	return h.GetConnectedClients(userID) > 0
}

// ForceLogout tells the connections bound to sessionID that the session
// ended and closes them. Other sessions of the user stay open unless
// sessionID is empty.
func (h *Hub) ForceLogout(userID int64, sessionID string, reason string) {
	msg := wstypes.NewMessage(wstypes.EventTypeForceLogout, wstypes.SessionEventData{
		SessionID: sessionID,
		Reason:    reason,
		Message:   "You have been logged out",
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[userID]
	for client := range clients {
		if sessionID != "" && client.sessionID != sessionID {
			continue
		}
		client.SendMessage(msg)
		client.Close()
		delete(clients, client)
		metrics.WebsocketConnections.Dec()
	}
	if len(clients) == 0 {
		delete(h.clients, userID)
	}
}

// DisconnectUser forcefully disconnects all sessions for a user
func (h *Hub) DisconnectUser(userID int64, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[userID]
	if !ok {
		return
	}

	disconnectMsg := wstypes.NewMessage(wstypes.EventTypeDisconnected, map[string]interface{}{
		"reason": reason,
	})
	for client := range clients {
		client.SendMessage(disconnectMsg)
		client.Close()
		metrics.WebsocketConnections.Dec()
	}

	delete(h.clients, userID)
	h.logger.Info("disconnected all websocket clients",
		zap.Int64("user_id", userID),
		zap.String("reason", reason),
	)
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for client := range clients {
			client.Close()
			metrics.WebsocketConnections.Dec()
		}
		delete(h.clients, userID)
	}
}
