package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"grievanceportal/internal/catalog"
	"grievanceportal/internal/service"
	"grievanceportal/internal/wizard"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// answerQueueSize bounds answers waiting behind the one being applied
	answerQueueSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the REST layer
	},
}

// answerPayload is the payload of an "answer" command
type answerPayload struct {
	Text string `json:"text"`
}

// errorPayload accompanies validation_error, busy and error messages
type errorPayload struct {
	Error      string `json:"error"`
	QuestionID string `json:"questionId,omitempty"`
}

// Handler handles WebSocket connections
type Handler struct {
	hub          *Hub
	authSvc      *service.AuthService
	intakeSvc    *service.IntakeService
	complaintSvc *service.ComplaintService
	logger       *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, intakeSvc *service.IntakeService, complaintSvc *service.ComplaintService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		hub:          hub,
		authSvc:      authSvc,
		intakeSvc:    intakeSvc,
		complaintSvc: complaintSvc,
		logger:       logger,
	}
}

// FeedWS handles GET /v1/ws/feed?token=
func (h *Handler) FeedWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := NewConnection(claims.UserID)
	recent, err := h.complaintSvc.Recent(r.Context(), service.RecentLimit)
	if err != nil {
		h.logger.Error("failed to load recent complaints", zap.Error(err))
	}
	conn.enqueue(encode(MsgRecentComplaints, recent))

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, func() { h.hub.Unregister(conn) }, nil)
}

// IntakeWS handles GET /v1/ws/intake?department=&lang=
func (h *Handler) IntakeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	chat, err := h.intakeSvc.OpenChat(q.Get("department"), q.Get("lang"))
	if errors.Is(err, catalog.ErrUnknownDepartment) || errors.Is(err, catalog.ErrUnsupportedLanguage) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "could not start intake", http.StatusInternalServerError)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := NewConnection("")
	for _, entry := range chat.Transcript() {
		conn.enqueue(encode(MsgTranscriptEntry, entry))
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := newChatSession(ctx, h, chat, conn)

	go s.run()
	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, func() {
		cancel()
		conn.close()
	}, s.handle)
}

// chatSession binds one in-memory wizard to one connection. Answers are
// applied by a single worker in the order they were read.
type chatSession struct {
	handler *Handler
	chat    *wizard.Controller
	conn    *Connection
	ctx     context.Context
	answers chan string
}

func newChatSession(ctx context.Context, h *Handler, chat *wizard.Controller, conn *Connection) *chatSession {
	return &chatSession{
		handler: h,
		chat:    chat,
		conn:    conn,
		ctx:     ctx,
		answers: make(chan string, answerQueueSize),
	}
}

// run applies queued answers until the connection closes
func (s *chatSession) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case text := <-s.answers:
			s.answer(text)
		}
	}
}

func (s *chatSession) handle(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.conn.enqueue(encode(MsgError, errorPayload{Error: "malformed message"}))
		return
	}

	switch msg.Type {
	case CmdAnswer:
		var p answerPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				s.conn.enqueue(encode(MsgError, errorPayload{Error: "malformed answer"}))
				return
			}
		}
		// The worker may be blocked in classification; the read loop
		// rejects answers arriving meanwhile instead of queuing them.
		if s.chat.Busy() {
			s.reportError(wizard.ErrBusy)
			return
		}
		select {
		case s.answers <- p.Text:
		default:
			s.reportError(wizard.ErrBusy)
		}

	case CmdRestart:
		if err := s.chat.Restart(); err != nil {
			s.reportError(err)
			return
		}
		s.conn.enqueue(encode(MsgSessionRestarted, s.chat.Transcript()))

	default:
		s.conn.enqueue(encode(MsgError, errorPayload{Error: "unknown message type"}))
	}
}

func (s *chatSession) answer(text string) {
	out, err := s.handler.intakeSvc.AnswerChat(s.ctx, s.chat, text)
	if err != nil {
		s.reportError(err)
		return
	}
	for _, entry := range out.Appended {
		s.conn.enqueue(encode(MsgTranscriptEntry, entry))
	}
}

func (s *chatSession) reportError(err error) {
	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr):
		s.conn.enqueue(encode(MsgValidationError, errorPayload{Error: verr.Message, QuestionID: verr.QuestionID}))
	case errors.Is(err, wizard.ErrBusy):
		s.conn.enqueue(encode(MsgBusy, errorPayload{Error: err.Error()}))
	default:
		s.conn.enqueue(encode(MsgError, errorPayload{Error: err.Error()}))
	}
}

func (h *Handler) readPump(wsConn *websocket.Conn, onClose func(), onMessage func([]byte)) {
	defer func() {
		onClose()
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			break
		}
		if onMessage != nil {
			onMessage(message)
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
