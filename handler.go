package liveframe

import (
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Handler returns the Host's HTTP surface: WebSocket upgrades drive pages;
// plain GETs serve the rendered host page or the embedded client script.
func (h *Host) Handler() http.Handler {
	return &liveHandler{host: h}
}

// liveHandler handles both WebSocket and HTTP requests
type liveHandler struct {
	host *Host
}

func (lh *liveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		lh.handleWebSocket(w, r)
		return
	}
	lh.handleHTTP(w, r)
}

func (lh *liveHandler) handleHTTP(w http.ResponseWriter, r *http.Request) {
	// HEAD is a capability check; headers only
	if r.Method == http.MethodHead {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if strings.HasSuffix(r.URL.Path, "/"+clientScriptName) {
		lh.host.serveClientScript(w, r)
		return
	}

	lh.host.servePage(w, r)
}

// wsSink serializes command writes onto one WebSocket connection.
type wsSink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSink) Send(c Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(c)
}

func (lh *liveHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := lh.host.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	host := lh.host

	// Resume the caller's page when its id is still live; otherwise sweep
	// abandoned pages and start a fresh one.
	var page *Page
	resumed := false
	if id := r.URL.Query().Get("page"); id != "" {
		if existing, ok := host.ResumePage(id); ok {
			page = existing
			resumed = true
		}
	}
	if page == nil {
		host.registry.Sweep()
		page, err = host.NewPage()
		if err != nil {
			log.Printf("Failed to create page: %v", err)
			return
		}
	}

	sink := &wsSink{conn: conn}

	// The page id goes out first so the client can present it when
	// reconnecting, ahead of any buffered commands.
	if err := sink.Send(Command{Op: OpPage, Text: page.ID()}); err != nil {
		log.Printf("Failed to send page id: %v", err)
		return
	}

	page.attach(sink)
	defer page.detach()

	if !resumed {
		host.StartSessions(page)
	}

	// message loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		msg, err := parseClientMessage(data)
		if err != nil {
			log.Printf("Failed to parse message: %v", err)
			continue
		}

		if err := page.handleMessage(msg); err != nil {
			log.Printf("Message error: %v", err)
			continue
		}
	}
}
