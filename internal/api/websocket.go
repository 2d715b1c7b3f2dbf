package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/md2xlsx/webui/internal/dragdrop"
	"github.com/md2xlsx/webui/internal/metrics"
	"github.com/md2xlsx/webui/internal/session"
	"github.com/vmihailenco/msgpack/v5"
)

// WebSocket message types for the UI session protocol
const (
	// Client -> Server messages
	MsgTypePing          = "ping"
	MsgTypeDragEnter     = "drag:enter"
	MsgTypeDragOver      = "drag:over"
	MsgTypeDragLeave     = "drag:leave"
	MsgTypeDrop          = "drop"
	MsgTypeInputChange   = "input:change"
	MsgTypeOptionSet     = "option:set"
	MsgTypeSubmit        = "submit"
	MsgTypeNoticeDismiss = "notice:dismiss"
	MsgTypePreview       = "preview"
	MsgTypeFormReset     = "form:reset"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypePong      = "pong"
	MsgTypeError     = "error"
)

// EncodingMsgpack selects binary server frames via ?encoding=msgpack.
const EncodingMsgpack = "msgpack"

// WSMessage is a client message.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSOutMessage is a server message, sent as JSON text or msgpack binary.
type WSOutMessage struct {
	Type      string      `json:"type" msgpack:"type"`
	ID        string      `json:"id,omitempty" msgpack:"id,omitempty"`
	Payload   interface{} `json:"payload,omitempty" msgpack:"payload,omitempty"`
	Timestamp int64       `json:"timestamp" msgpack:"timestamp"`
}

// FilesPayload carries files for drop and input:change.
type FilesPayload struct {
	Files []session.IncomingFile `json:"files"`
}

// OptionPayload carries option:set.
type OptionPayload struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

// DismissPayload carries notice:dismiss.
type DismissPayload struct {
	ID string `json:"id"`
}

// PreviewRequestPayload carries preview.
type PreviewRequestPayload struct {
	Index int `json:"index"`
}

// ConnectedPayload is sent once the session exists.
type ConnectedPayload struct {
	SessionID string `json:"sessionId" msgpack:"sessionId"`
}

// WSErrorResponse reports a protocol error.
type WSErrorResponse struct {
	Message string `json:"message" msgpack:"message"`
	Code    string `json:"code,omitempty" msgpack:"code,omitempty"`
}

var dragKinds = map[string]dragdrop.EventKind{
	MsgTypeDragEnter: dragdrop.Enter,
	MsgTypeDragOver:  dragdrop.Over,
	MsgTypeDragLeave: dragdrop.Leave,
}

// WebSocketHandler connects browser tabs to UI sessions
type WebSocketHandler struct {
	sessions       SessionManager
	upgrader       websocket.Upgrader
	maxMessageSize int64
	metrics        *metrics.Metrics
}

// NewWebSocketHandler creates a new UI session WebSocket handler. maxMessageSize
// bounds a single client frame, which must fit a dropped file encoded as base64.
// Only same-origin pages and the listed origins may open a session; "*" allows any.
func NewWebSocketHandler(sessions SessionManager, maxMessageSize int64, m *metrics.Metrics, origins []string) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(origins),
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		maxMessageSize: maxMessageSize,
		metrics:        m,
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			allowed[strings.ToLower(o)] = true
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if allowed[strings.ToLower(origin)] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// wsConn serializes writes; gorilla allows one concurrent writer.
type wsConn struct {
	ws      *websocket.Conn
	binary  bool
	mu      sync.Mutex
	metrics *metrics.Metrics
}

func (c *wsConn) send(msg WSOutMessage) {
	msg.Timestamp = time.Now().UnixMilli()

	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.binary {
		var data []byte
		data, err = msgpack.Marshal(msg)
		if err == nil {
			err = c.ws.WriteMessage(websocket.BinaryMessage, data)
		}
	} else {
		err = c.ws.WriteJSON(msg)
	}
	if err != nil {
		c.metrics.WebSocketError("write")
		fmt.Printf("[WebSocket] Failed to send message: %v\n", err)
	}
}

func (c *wsConn) sendError(id, message, code string) {
	c.send(WSOutMessage{
		Type:    MsgTypeError,
		ID:      id,
		Payload: WSErrorResponse{Message: message, Code: code},
	})
}

// HandleWebSocket upgrades HTTP connection to WebSocket and runs one UI session
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	if wsh.sessions.Full() {
		return NewServiceUnavailableError("too many active sessions")
	}

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return NewBadRequestError("websocket upgrade failed", err)
	}
	defer ws.Close()
	if wsh.maxMessageSize > 0 {
		ws.SetReadLimit(wsh.maxMessageSize)
	}

	conn := &wsConn{
		ws:      ws,
		binary:  c.QueryParam("encoding") == EncodingMsgpack,
		metrics: wsh.metrics,
	}

	sess, err := wsh.sessions.Create(func(o session.Outbound) {
		conn.send(WSOutMessage{Type: o.Type, ID: o.ID, Payload: o.Payload})
	})
	if err != nil {
		conn.sendError("", err.Error(), "SESSION_LIMIT")
		return nil
	}
	defer wsh.sessions.Close(sess.ID)

	fmt.Printf("[WebSocket] Client connected: session %s\n", sess.ID[:8])
	conn.send(WSOutMessage{Type: MsgTypeConnected, Payload: ConnectedPayload{SessionID: sess.ID}})

	// Main message loop
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsh.metrics.WebSocketError("read")
				fmt.Printf("[WebSocket] Connection error: %v\n", err)
			}
			break
		}
		wsh.sessions.Touch(sess.ID)
		wsh.dispatch(conn, sess, msg)
	}

	fmt.Printf("[WebSocket] Client disconnected: session %s\n", sess.ID[:8])
	return nil
}

func (wsh *WebSocketHandler) dispatch(conn *wsConn, sess *session.Session, msg WSMessage) {
	if kind, ok := dragKinds[msg.Type]; ok {
		sess.Drag(msg.ID, kind)
		return
	}

	switch msg.Type {
	case MsgTypePing:
		// Respond with pong to keep connection alive
		conn.send(WSOutMessage{Type: MsgTypePong, ID: msg.ID})
	case MsgTypeDrop:
		var payload FilesPayload
		if wsh.decode(conn, msg, &payload) {
			sess.Drop(msg.ID, payload.Files)
		}
	case MsgTypeInputChange:
		var payload FilesPayload
		if wsh.decode(conn, msg, &payload) {
			sess.Change(payload.Files)
		}
	case MsgTypeOptionSet:
		var payload OptionPayload
		if wsh.decode(conn, msg, &payload) {
			sess.SetOption(msg.ID, payload.Name, payload.Value)
		}
	case MsgTypeSubmit:
		sess.Submit(msg.ID)
	case MsgTypeNoticeDismiss:
		var payload DismissPayload
		if wsh.decode(conn, msg, &payload) {
			sess.Dismiss(payload.ID)
		}
	case MsgTypePreview:
		var payload PreviewRequestPayload
		if wsh.decode(conn, msg, &payload) {
			sess.Preview(msg.ID, payload.Index)
		}
	case MsgTypeFormReset:
		sess.Reset()
	default:
		conn.sendError(msg.ID, "Unknown message type: "+msg.Type, "INVALID_TYPE")
	}
}

func (wsh *WebSocketHandler) decode(conn *wsConn, msg WSMessage, v interface{}) bool {
	if len(msg.Payload) == 0 {
		conn.sendError(msg.ID, "Missing payload for "+msg.Type, "INVALID_PAYLOAD")
		return false
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		wsh.metrics.WebSocketError("payload")
		conn.sendError(msg.ID, "Invalid "+msg.Type+" payload: "+err.Error(), "INVALID_PAYLOAD")
		return false
	}
	return true
}
