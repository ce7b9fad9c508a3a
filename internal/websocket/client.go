package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Client é o intermediário entre a conexão websocket e o hub
type Client struct {
	conn *websocket.Conn

	// Send recebe as mensagens já serializadas
	Send chan []byte

	// OperationID acompanhado (AllOperations = todos)
	OperationID string
	RemoteAddr  string

	Hub         *Hub
	ConnectedAt time.Time

	mu     sync.Mutex
	closed bool
}

// NewClient cria um cliente sem conexão (usado pelo hub e nos testes)
func NewClient(hub *Hub, operationID string) *Client {
	return &Client{
		Send:        make(chan []byte, sendBuffer),
		OperationID: operationID,
		Hub:         hub,
		ConnectedAt: time.Now(),
	}
}

// ServeWS faz o upgrade da conexão. ?operation_id= restringe os eventos a uma análise.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("remote_addr", c.ClientIP()).Msg("Falha no upgrade websocket")
		return
	}

	client := NewClient(h, c.Query("operation_id"))
	client.conn = conn
	client.RemoteAddr = c.ClientIP()

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump só processa pings do cliente e detecta desconexão
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn().Err(err).Str("operation_id", c.OperationID).Msg("Conexão websocket fechada inesperadamente")
			}
			return
		}
		c.handleMessage(message)
	}
}

// writePump é o único escritor da conexão
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Debug().Err(err).Str("operation_id", c.OperationID).Msg("Mensagem inválida do cliente")
		return
	}

	if msg.Type == "ping" {
		c.SendMessage(Message{Type: "pong", Timestamp: c.Hub.now()})
	}
}

// SendMessage envia uma mensagem só para este cliente, descartando se o buffer estiver cheio
func (c *Client) SendMessage(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		c.Hub.logger.Error().Err(err).Msg("Falha ao serializar mensagem")
		return
	}

	if !c.trySend(data) {
		c.Hub.logger.Warn().Str("operation_id", c.OperationID).Msg("Mensagem descartada")
	}
}

// trySend não bloqueia; false quando o buffer está cheio ou o cliente já foi fechado
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}
