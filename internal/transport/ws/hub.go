package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Staff feed message types
const (
	MsgRecentComplaints MessageType = "recent_complaints"
	MsgComplaintFiled   MessageType = "complaint_filed"
	MsgComplaintUpdated MessageType = "complaint_updated"
)

// Intake chat message types
const (
	MsgTranscriptEntry  MessageType = "transcript_entry"
	MsgSessionRestarted MessageType = "session_restarted"
	MsgValidationError  MessageType = "validation_error"
	MsgBusy             MessageType = "busy"
	MsgError            MessageType = "error"
)

// Intake chat commands sent by the client
const (
	CmdAnswer  MessageType = "answer"
	CmdRestart MessageType = "restart"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans staff notifications out to every connected feed
type Hub struct {
	staffConns map[*Connection]bool

	mu     sync.RWMutex
	logger *zap.Logger

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Message
}

// Connection represents a WebSocket connection
type Connection struct {
	UserID string // Empty for anonymous intake chats
	Send   chan []byte

	mu     sync.Mutex
	closed bool
}

// NewConnection creates a connection with a buffered send queue
func NewConnection(userID string) *Connection {
	return &Connection{
		UserID: userID,
		Send:   make(chan []byte, 256),
	}
}

// enqueue queues data without blocking. It reports false when the buffer is
// full or the connection is closed.
func (c *Connection) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		staffConns: make(map[*Connection]bool),
		logger:     logger,
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.staffConns[conn] = true
			h.mu.Unlock()
			h.logger.Info("staff feed connected", zap.String("user_id", conn.UserID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if h.staffConns[conn] {
				delete(h.staffConns, conn)
				conn.close()
				h.logger.Info("staff feed disconnected", zap.String("user_id", conn.UserID))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg)
			for conn := range h.staffConns {
				if !conn.enqueue(data) {
					h.logger.Warn("dropping feed message, buffer full", zap.String("user_id", conn.UserID))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a staff feed connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a staff feed connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Count returns the number of connected staff feeds
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.staffConns)
}

// BroadcastToStaff sends a message to every staff feed (implements service.Broadcaster)
func (h *Hub) BroadcastToStaff(msgType string, payload interface{}) {
	h.broadcast <- newMessage(MessageType(msgType), payload)
}

func newMessage(msgType MessageType, payload interface{}) *Message {
	msg := &Message{Type: msgType}
	if payload != nil {
		msg.Payload, _ = json.Marshal(payload)
	}
	return msg
}

func encode(msgType MessageType, payload interface{}) []byte {
	data, _ := json.Marshal(newMessage(msgType, payload))
	return data
}
