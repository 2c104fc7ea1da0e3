package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nightjar-editor/nightjar/internal/environment"
	"github.com/nightjar-editor/nightjar/internal/logging"
	"github.com/nightjar-editor/nightjar/internal/updates"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local IPC only, bound to loopback
	},
}

// wsHandler streams environment events to connected renderers.
type wsHandler struct {
	env    *environment.Environment
	logger *logging.Logger
}

func newWSHandler(env *environment.Environment, logger *logging.Logger) *wsHandler {
	return &wsHandler{env: env, logger: logger.Named("ws")}
}

type wsMessage struct {
	Type string `json:"type"`
}

// HandleConnection upgrades the request and relays update and error
// events until the client disconnects.
func (h *wsHandler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Writes race between the read loop and event subscriptions.
	var writeMu sync.Mutex
	send := func(data any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(data)
	}

	send(map[string]any{
		"type":    "system",
		"message": "connected",
	})

	updateSub := h.env.OnUpdateAvailable(func(info updates.Info) {
		if err := send(map[string]any{
			"type":            "update-available",
			"release_version": info.ReleaseVersion,
			"timestamp":       time.Now().Unix(),
		}); err != nil {
			h.logger.Warn("failed to push update event", zap.Error(err))
		}
	})
	defer updateSub.Dispose()

	errorSub := h.env.OnDidThrowError(func(ev *environment.ErrorEvent) {
		if err := send(map[string]any{
			"type":      "uncaught-error",
			"message":   ev.Message,
			"url":       ev.URL,
			"line":      ev.Line,
			"column":    ev.Column,
			"handled":   ev.Handled(),
			"timestamp": time.Now().Unix(),
		}); err != nil {
			h.logger.Warn("failed to push error event", zap.Error(err))
		}
	})
	defer errorSub.Dispose()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "ping":
			send(map[string]any{"type": "pong"})
		case "activity":
			h.env.NoteActivity()
		default:
			send(map[string]any{
				"type":    "error",
				"message": "unknown message type",
			})
		}
	}
}
