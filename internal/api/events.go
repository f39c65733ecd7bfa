package api

import (
	"net/http"
	"sync"

	"lenabot/internal/model"
	"lenabot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventFeed broadcasts quota and bonus events to connected ops clients.
// It implements service.EventPublisher.
type EventFeed struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewEventFeed() *EventFeed {
	return &EventFeed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func NewEventRoutes(handler *gin.RouterGroup, feed *EventFeed) {
	handler.GET("/ws/events", feed.handleWebSocket)
}

func (f *EventFeed) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	f.mu.Lock()
	f.conns[conn] = struct{}{}
	f.mu.Unlock()

	log.Info("ops client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Drain the read side so pings and close frames are processed.
	go func() {
		defer f.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish sends the event to every connected client; a slow or dead
// client is dropped rather than blocking the callers.
func (f *EventFeed) Publish(event model.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Logger().Error("failed to marshal event", zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for conn := range f.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(f.conns, conn)
			_ = conn.Close()
		}
	}
}

func (f *EventFeed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	delete(f.conns, conn)
	f.mu.Unlock()
	_ = conn.Close()
}
