package hub

import (
	"net/http"
	"sync"

	"github.com/apex/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server hosts one hub per document and upgrades websocket connections
// onto them. With a Redis client it bridges every document's traffic to
// the other relay instances serving it.
type Server struct {
	mu   sync.Mutex
	hubs map[string]*Hub
	rdb  *redis.Client
}

// NewServer creates a relay server. rdb may be nil for a single
// standalone instance.
func NewServer(rdb *redis.Client) *Server {
	return &Server{hubs: make(map[string]*Hub), rdb: rdb}
}

// Handler returns the relay's HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws/{doc}", s.serveWS)
	return r
}

// hub returns the document's hub, creating and starting it on first use.
func (s *Server) hub(doc string) *Hub {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.hubs[doc]; ok {
		return h
	}
	var bridge *Bridge
	if s.rdb != nil {
		bridge = NewBridge(s.rdb)
	}
	h := newHub(doc, bridge)
	s.hubs[doc] = h
	go h.run()
	if bridge != nil {
		bridge.subscribe(h)
	}
	return h
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	doc := mux.Vars(r)["doc"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).WithField("doc", doc).Error("websocket upgrade")
		return
	}
	h := s.hub(doc)
	c := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- c
	go c.writePump()
	go c.readPump()
}
