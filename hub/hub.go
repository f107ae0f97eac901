// Package hub implements the relay: a fan-out broadcaster that forwards
// every inbound frame to every other connection on the same document,
// unmodified. It holds no document state and validates nothing —
// correctness lives entirely in the receiving engines. The one frame it
// interprets is join, which it intercepts to maintain and rebroadcast
// the active roster.
package hub

import (
	"sort"

	"github.com/apex/log"

	"github.com/Zabi-Anwari/CollabCore/wire"
)

// frame is one raw websocket payload moving through the hub. A nil
// origin marks a frame injected by the Redis bridge.
type frame struct {
	origin *Client
	data   []byte
}

// join is an intercepted join announcement.
type join struct {
	client *Client
	name   string
}

// Hub fans frames out to every client of one document.
type Hub struct {
	doc        string
	clients    map[*Client]bool
	names      map[*Client]string
	register   chan *Client
	unregister chan *Client
	frames     chan frame
	joins      chan join
	bridge     *Bridge
	log        *log.Entry
}

func newHub(doc string, bridge *Bridge) *Hub {
	return &Hub{
		doc:        doc,
		clients:    make(map[*Client]bool),
		names:      make(map[*Client]string),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		frames:     make(chan frame),
		joins:      make(chan join),
		bridge:     bridge,
		log:        log.WithField("doc", doc),
	}
}

// run is the hub's single event loop. Every roster and fan-out decision
// happens here, one frame at a time.
func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.log.WithField("clients", len(h.clients)).Info("client registered")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; !ok {
				break
			}
			delete(h.clients, c)
			close(c.send)
			h.log.WithField("clients", len(h.clients)).Info("client unregistered")
			if _, named := h.names[c]; named {
				delete(h.names, c)
				h.broadcastRoster()
			}
		case j := <-h.joins:
			h.names[j.client] = j.name
			h.broadcastRoster()
		case f := <-h.frames:
			h.fanOut(f)
		}
	}
}

// fanOut forwards a frame to every client except its origin, and hands
// locally originated frames to the bridge for other relay instances.
func (h *Hub) fanOut(f frame) {
	for c := range h.clients {
		if c == f.origin {
			continue
		}
		select {
		case c.send <- f.data:
		default:
			// Slow consumer; drop it rather than stall the document.
			close(c.send)
			delete(h.clients, c)
			delete(h.names, c)
		}
	}
	if h.bridge != nil && f.origin != nil {
		h.bridge.Publish(h.doc, f.data)
	}
}

// broadcastRoster sends the current user-list to every client,
// including the one whose join or departure triggered it.
func (h *Hub) broadcastRoster() {
	users := make([]string, 0, len(h.names))
	for _, name := range h.names {
		users = append(users, name)
	}
	sort.Strings(users)
	data, err := wire.NewUserList(users).Encode()
	if err != nil {
		h.log.WithError(err).Error("encoding roster")
		return
	}
	h.fanOut(frame{data: data})
}
