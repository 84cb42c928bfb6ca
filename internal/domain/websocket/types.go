// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Session events
	EventTypeSessionExpired EventType = "session:expired"
	EventTypeForceLogout    EventType = "session:force_logout"

	// Subscription ledger events (server -> client)
	EventTypeSubscriptionActivated EventType = "subscription:activated"
	EventTypeSubscriptionCancelled EventType = "subscription:cancelled"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType              `json:"type"`
	Data      interface{}            `json:"data,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	ID        string                 `json:"id,omitempty"`
}

// ConnectedData is sent once after the upgrade.
type ConnectedData struct {
	UserID   int64  `json:"user_id"`
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SessionEventData for session events
type SessionEventData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

// SubscriptionEventData describes a ledger change.
type SubscriptionEventData struct {
	EntryID          int64      `json:"entry_id"`
	PlanID           int64      `json:"plan_id"`
	PlanName         string     `json:"plan_name,omitempty"`
	IsActive         bool       `json:"is_active"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
}

// Helper to create messages
func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        generateMessageID(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}

func generateMessageID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
