package refserver

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"chessview/src/engine"
	"chessview/src/logx"
)

const writeWait = time.Second

// hub fans position events out to every connected watcher.
type hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	log   logx.Logger
}

func newHub(log logx.Logger) *hub {
	return &hub{conns: map[*websocket.Conn]struct{}{}, log: log}
}

func (h *hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	h.log.Debugf("watcher joined, %d connected", n)
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func (h *hub) broadcast(ev engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteJSON(ev); err != nil {
			h.log.Debugf("drop watcher: %v", err)
			delete(h.conns, c)
			_ = c.Close()
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// serve keeps the connection registered until the peer goes away.
func (h *hub) serve(c *websocket.Conn) {
	h.add(c)
	defer h.remove(c)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
