package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WSChannel adapts a gorilla websocket connection to PushChannel. gorilla
// allows only one concurrent writer, so writes serialize on a mutex.
type WSChannel struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWSChannel(conn *websocket.Conn) *WSChannel {
	return &WSChannel{conn: conn}
}

func (c *WSChannel) Send(message any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(message)
}

func (c *WSChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
