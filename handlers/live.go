package handlers

import (
	"net/http"
	"time"

	"superbryn/config"
	"superbryn/services/voice"
	"superbryn/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The voice agent connects from inside the deployment; origin checks
	// belong to the edge proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsTransport adapts a websocket connection to the session frame pipe.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) ReadFrame() (*voice.InboundFrame, error) {
	var f voice.InboundFrame
	if err := t.conn.ReadJSON(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (t *wsTransport) WriteJSON(v interface{}) error {
	return t.conn.WriteJSON(v)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

// LiveSession upgrades the connection and hands it to a session orchestrator.
// The request blocks until the session closes.
func LiveSession(c *gin.Context) {
	logger := utils.GetLogger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	idle := time.Duration(config.AppConfig.SessionIdleTimeoutMin) * time.Minute
	if idle <= 0 {
		idle = 5 * time.Minute
	}

	session := voice.NewSession(&wsTransport{conn: conn}, ToolDispatcher, Sessions, idle)
	if err := Registry.Add(session); err != nil {
		logger.Warn("live session rejected",
			zap.String("sessionID", session.ID), zap.Error(err))
		_ = conn.WriteJSON(&voice.ErrorFrame{
			Type: voice.FrameSessionError, Code: "capacity",
			Message: "live session capacity reached, try again shortly",
		})
		_ = conn.Close()
		return
	}
	defer Registry.Remove(session.ID)

	session.Run(c.Request.Context())
}
