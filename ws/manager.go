package ws

import (
	"sync"

	"wagyu_backend/internal/logger"
)

// WebSocketManager tracks connected dashboard clients. A user may hold
// several connections (tabs); symbol subscriptions are kept per connection.
type WebSocketManager struct {
	clients    map[*Client]struct{}
	byUser     map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan any
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*Client]struct{}),
		byUser:     make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan any),
	}
}

func (manager *WebSocketManager) Run() {
	for {
		select {
		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client] = struct{}{}
			if manager.byUser[client.UserID] == nil {
				manager.byUser[client.UserID] = make(map[*Client]struct{})
			}
			manager.byUser[client.UserID][client] = struct{}{}
			total := len(manager.clients)
			manager.mu.Unlock()
			logger.Debug("ws client registered", "user_id", client.UserID, "total", total)

		case client := <-manager.unregister:
			manager.removeClient(client)

		case message := <-manager.broadcast:
			manager.broadcastMessage(message)
		}
	}
}

func (manager *WebSocketManager) removeClient(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if _, ok := manager.clients[client]; !ok {
		return
	}
	close(client.Send)
	delete(manager.clients, client)

	if set := manager.byUser[client.UserID]; set != nil {
		delete(set, client)
		if len(set) == 0 {
			delete(manager.byUser, client.UserID)
		}
	}
	logger.Debug("ws client unregistered", "user_id", client.UserID, "total", len(manager.clients))
}

// SendToUser fans a message out to every connection of one user. Used for
// import-finished and analytics-refresh notifications.
func (manager *WebSocketManager) SendToUser(userID string, message any) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	for client := range manager.byUser[userID] {
		manager.trySend(client, message)
	}
}

// BroadcastTick delivers a price tick to every client subscribed to the
// symbol.
func (manager *WebSocketManager) BroadcastTick(symbol string, message any) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	for client := range manager.clients {
		if client.IsSubscribed(symbol) {
			manager.trySend(client, message)
		}
	}
}

func (manager *WebSocketManager) Broadcast(message any) {
	manager.broadcast <- message
}

func (manager *WebSocketManager) broadcastMessage(message any) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	for client := range manager.clients {
		manager.trySend(client, message)
	}
}

// trySend drops the client when its send buffer is full; a reader that slow
// is not coming back.
func (manager *WebSocketManager) trySend(client *Client, message any) {
	select {
	case client.Send <- message:
	default:
		go func() {
			manager.unregister <- client
		}()
		logger.Warn("ws client dropped, send buffer full", "user_id", client.UserID)
	}
}

func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients)
}

func (manager *WebSocketManager) IsUserConnected(userID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.byUser[userID]) > 0
}
