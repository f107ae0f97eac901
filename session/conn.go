package session

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"

	"github.com/Zabi-Anwari/CollabCore/wire"
)

// Run dials the relay and pumps inbound messages into Handle until ctx
// is canceled. Lost connections are redialed with exponential backoff;
// after every (re)connect the session announces itself and re-issues
// request-sync, which only takes effect if the local document is still
// empty.
func (s *Session) Run(ctx context.Context, url string) error {
	for {
		conn, err := s.dial(ctx, url)
		if err != nil {
			return err
		}
		s.attach(conn)
		s.readLoop(ctx, conn)
		s.SetSender(nil)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Info("connection lost, reconnecting")
	}
}

func (s *Session) dial(ctx context.Context, url string) (*websocket.Conn, error) {
	var conn *websocket.Conn
	op := func() error {
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			s.log.WithError(err).Warn("dial failed")
			return err
		}
		conn = c
		return nil
	}
	b := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	s.log.WithField("url", url).Info("connected")
	return conn, nil
}

// attach installs a sender writing to conn and performs the handshake.
func (s *Session) attach(conn *websocket.Conn) {
	var wmu sync.Mutex
	s.SetSender(func(m wire.Message) error {
		wmu.Lock()
		defer wmu.Unlock()
		return conn.WriteJSON(m)
	})
	s.emitHandshake()
}

func (s *Session) emitHandshake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit(wire.NewJoin(s.site, s.name), wire.NewRequestSync(s.site))
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := wire.Decode(data)
		if err != nil {
			s.log.WithError(err).Debug("dropping malformed frame")
			continue
		}
		s.Handle(msg)
	}
}
