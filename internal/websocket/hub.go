package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/metrics"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// AllOperations é a chave de inscrição dos clientes que recebem todas as análises
const AllOperations = ""

// Hub mantém os clientes conectados, agrupados pela operação que acompanham
type Hub struct {
	// Clientes por operation ID (AllOperations = todos)
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mutex  sync.RWMutex
	logger *zerolog.Logger
	now    func() time.Time
}

// Message é o envelope de toda mensagem enviada ao cliente
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ProgressEvent é o payload das mensagens "progress"
type ProgressEvent struct {
	model.Progress
	Percent float64 `json:"percent,omitempty"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// API protegida por token; origem não é validada
		return true
	},
}

// NewHub cria um novo hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.Global(),
		now:        time.Now,
	}
}

// Run processa registros até o contexto ser cancelado
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	if h.clients[client.OperationID] == nil {
		h.clients[client.OperationID] = make(map[*Client]bool)
	}
	h.clients[client.OperationID][client] = true
	h.mutex.Unlock()

	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("operation_id", client.OperationID).
		Str("remote_addr", client.RemoteAddr).
		Msg("Cliente websocket registrado")

	client.SendMessage(Message{
		Type:      "connection",
		Data:      map[string]string{"status": "connected", "operation_id": client.OperationID},
		Timestamp: h.now(),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(client)
}

// removeLocked exige h.mutex em modo escrita
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.OperationID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	client.closeSend()
	metrics.Get().DecrementWSConnection()
	if len(clients) == 0 {
		delete(h.clients, client.OperationID)
	}

	h.logger.Info().
		Str("operation_id", client.OperationID).
		Int("remaining_connections", len(clients)).
		Msg("Cliente websocket removido")
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Report envia um evento de progresso para quem acompanha a operação e para os
// inscritos em todas. Implementa service.ProgressReporter.
func (h *Hub) Report(ctx context.Context, p model.Progress) {
	event := ProgressEvent{Progress: p}
	if p.Total > 0 {
		event.Percent = float64(p.Current) / float64(p.Total) * 100
	}
	h.Publish(p.OperationID, Message{Type: "progress", Data: event, Timestamp: h.now()})
}

// Publish envia msg aos clientes da operação e aos inscritos em AllOperations.
// Cliente com buffer cheio é desconectado.
func (h *Hub) Publish(operationID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("operation_id", operationID).Msg("Falha ao serializar mensagem")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	keys := []string{AllOperations}
	if operationID != AllOperations {
		keys = append(keys, operationID)
	}

	for _, key := range keys {
		for client := range h.clients[key] {
			if client.trySend(data) {
				metrics.Get().IncrementWSMessageOut()
				continue
			}
			h.logger.Warn().
				Str("operation_id", key).
				Msg("Buffer do cliente cheio, encerrando conexão")
			h.removeLocked(client)
		}
	}
}

// GetConnectionCount retorna o total de conexões ativas
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}

// GetOperationConnectionCount retorna as conexões inscritas numa operação
func (h *Hub) GetOperationConnectionCount(operationID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[operationID])
}
