package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/domain/entities"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio frames
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type writeData struct {
	// Type is the websocket message type, websocket.TextMessage or
	// websocket.BinaryMessage.
	Type    int
	Payload []byte
}

// Client is a middleman between one websocket connection and the session
// pipeline. It implements usecase.Conn.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan writeData

	id       string
	identity entities.Identity
	logger   *zap.Logger

	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, identity entities.Identity, logger *zap.Logger) *Client {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan writeData, 256),
		id:       uuid.NewString(),
		identity: identity,
		logger:   logger,
	}
}

// ReadFrame blocks for the next binary audio frame. Non-binary messages are
// skipped. It fails once the client disconnects.
func (c *Client) ReadFrame() ([]byte, error) {
	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error", zap.Error(err))
			}
			return nil, err
		}
		if messageType == websocket.BinaryMessage {
			return message, nil
		}
		c.logger.Debug("Skipping non-binary message",
			zap.Int("type", messageType))
	}
}

// ReadText blocks for the next text message.
func (c *Client) ReadText() (string, error) {
	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if messageType == websocket.TextMessage {
			return string(message), nil
		}
	}
}

// Emit marshals an envelope and queues it for delivery. A stalled client has
// its message dropped rather than blocking the pipeline.
func (c *Client) Emit(env entities.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	select {
	case c.send <- writeData{Type: websocket.TextMessage, Payload: payload}:
		return nil
	default:
		c.logger.Warn("Dropping message for slow client",
			zap.String("clientID", c.id),
			zap.String("responseType", string(env.ResponseType)))
		return nil
	}
}

// Close shuts the underlying connection, unblocking any pending reads.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// writePump pumps queued messages to the websocket connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
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
