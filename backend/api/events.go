package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"strix/backend/repository/events"
)

// wsFrame 推送帧：type 对应前端监听的频道名
type wsFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type wsClient struct {
	conn   *websocket.Conn
	outbox chan wsFrame
}

// eventHub 把事件总线桥接到 WebSocket 客户端。
// 慢客户端的发送缓冲满时直接丢帧，不阻塞总线。
type eventHub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newEventHub(bus *events.Bus) *eventHub {
	hub := &eventHub{
		upgrader: websocket.Upgrader{
			// 前端从 file:// 或 localhost 页面发起，不校验 Origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
	}
	if bus != nil {
		bus.SubscribeAll(hub.broadcast)
	}
	return hub
}

func (h *eventHub) handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Events] websocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn, outbox: make(chan wsFrame, 32)}
	h.add(client)
	defer h.remove(client)

	go func() {
		for frame := range client.outbox {
			if err := conn.WriteJSON(frame); err != nil {
				conn.Close()
				return
			}
		}
		conn.Close()
	}()

	// 读循环只用于感知断连，收到的消息一律忽略
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *eventHub) add(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

func (h *eventHub) remove(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.outbox)
}

func (h *eventHub) broadcast(event events.Event) {
	frame, ok := frameFor(event)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.outbox <- frame:
		default:
		}
	}
}

// frameFor 把内部事件映射为前端频道帧
func frameFor(event events.Event) (wsFrame, bool) {
	switch e := event.(type) {
	case events.VPNStatusEvent:
		return wsFrame{Type: "vpn-status", Payload: e.Status}, true
	case events.ThemeEvent:
		return wsFrame{Type: "apply-theme", Payload: e.Theme}, true
	case events.PermissionPolicyEvent:
		return wsFrame{Type: "permission-policy", Payload: e.Policy}, true
	case events.SessionProxyEvent:
		return wsFrame{Type: "session-proxy", Payload: gin.H{"rules": e.Rules}}, true
	case events.DownloadEvent:
		switch e.EventType {
		case events.EventDownloadStarted:
			return wsFrame{Type: "download-started", Payload: e.Item}, true
		case events.EventDownloadCompleted:
			return wsFrame{Type: "download-completed", Payload: e.Item}, true
		case events.EventDownloadFailed:
			return wsFrame{Type: "download-failed", Payload: e.Item}, true
		}
	case events.SettingsEvent:
		return wsFrame{Type: "settings-changed", Payload: gin.H{"key": e.Key}}, true
	case events.HistoryEvent:
		return wsFrame{Type: "history-changed", Payload: gin.H{}}, true
	}
	return wsFrame{}, false
}
