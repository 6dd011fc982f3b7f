package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/blockflow/pkg/layout"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sceneMessage is pushed to every websocket client.
type sceneMessage struct {
	Type  string       `json:"type"` // always "scene"
	Scene layout.Scene `json:"scene"`
}

// hub fans scene updates out to the connected websocket clients. A client
// whose buffer is full is dropped rather than slowing the others down.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *log.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func newHub(logger *log.Logger) *hub {
	return &hub{clients: make(map[*client]struct{}), logger: logger}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.close()
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast sends sc to every client.
func (h *hub) broadcast(sc layout.Scene) {
	msg, err := json.Marshal(sceneMessage{Type: "scene", Scene: sc})
	if err != nil {
		h.logger.Error("encode scene", "err", err)
		return
	}
	h.mu.Lock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()
	for _, c := range slow {
		h.logger.Warn("dropping slow websocket client")
		h.remove(c)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// writePump drains the send buffer and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWebSocket upgrades the connection, sends the current scene and then
// streams every later one. Incoming messages are ignored.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if msg, err := json.Marshal(sceneMessage{Type: "scene", Scene: s.in.Scene()}); err == nil {
		c.send <- msg
	}
	s.hub.add(c)
	go c.writePump()

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read", "err", err)
			}
			break
		}
	}
	s.hub.remove(c)
}

// publish pushes the current scene to websocket clients.
func (s *Server) publish() {
	if s.hub.count() == 0 {
		return
	}
	s.hub.broadcast(s.in.Scene())
}
