package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type connection struct {
	conn *websocket.Conn
	name string
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

// ConnectionManager tracks one live socket per player.
type ConnectionManager struct {
	connections map[string]*connection
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*connection),
	}
}

// AddConnection registers conn for playerID, closing any older socket.
func (cm *ConnectionManager) AddConnection(playerID string, conn *websocket.Conn, name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if old, exists := cm.connections[playerID]; exists {
		old.conn.Close()
	}
	cm.connections[playerID] = &connection{conn: conn, name: name}
}

// RemoveConnectionIfMatching drops playerID only while conn is still the
// registered socket, so a reconnect is not torn down by the old one.
func (cm *ConnectionManager) RemoveConnectionIfMatching(playerID string, conn *websocket.Conn) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	current, exists := cm.connections[playerID]
	if !exists || current.conn != conn {
		return false
	}
	current.conn.Close()
	delete(cm.connections, playerID)
	return true
}

func (cm *ConnectionManager) IsConnected(playerID string) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	_, exists := cm.connections[playerID]
	return exists
}

func (cm *ConnectionManager) Name(playerID string) (string, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	c, exists := cm.connections[playerID]
	if !exists {
		return "", false
	}
	return c.name, true
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// SendMessage writes message to playerID. Unknown players are skipped.
func (cm *ConnectionManager) SendMessage(playerID string, message ServerMessage) error {
	cm.mu.RLock()
	c, exists := cm.connections[playerID]
	cm.mu.RUnlock()

	if !exists {
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(message)
}

// ping sends a keep-alive to playerID's socket under its write lock.
func (cm *ConnectionManager) ping(playerID string, conn *websocket.Conn) error {
	cm.mu.RLock()
	c, exists := cm.connections[playerID]
	cm.mu.RUnlock()

	if !exists || c.conn != conn {
		return websocket.ErrCloseSent
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}
