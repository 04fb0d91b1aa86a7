package websocket

import (
	"github.com/gorilla/websocket"
)

// gorillaConn adapts *websocket.Conn to Connection. Every method except
// RemoteAddr is promoted from the embedded connection.
type gorillaConn struct {
	*websocket.Conn
}

// NewConnectionWrapper wraps a gorilla connection
func NewConnectionWrapper(conn *websocket.Conn) Connection {
	return gorillaConn{Conn: conn}
}

func (c gorillaConn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
