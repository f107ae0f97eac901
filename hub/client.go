package hub

import (
	"github.com/gorilla/websocket"

	"github.com/Zabi-Anwari/CollabCore/wire"
)

// Client is one websocket connection attached to a hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump moves inbound frames from the connection into the hub. Join
// frames are diverted to the roster; everything else is forwarded
// opaquely, malformed frames included — validation is the receiving
// engine's job.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if p, err := wire.DecodeProbe(data); err == nil && p.Type == wire.TypeJoin {
			name := p.Name
			if name == "" {
				name = p.Site
			}
			c.hub.joins <- join{client: c, name: name}
			continue
		}
		c.hub.frames <- frame{origin: c, data: data}
	}
}

// writePump drains the send channel onto the connection.
func (c *Client) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
