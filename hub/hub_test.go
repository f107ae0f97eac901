package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zabi-Anwari/CollabCore/wire"
)

// fakeClient attaches to the hub's channels without a websocket.
func fakeClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan []byte, 16)}
	h.register <- c
	return c
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func TestFanOutSkipsOrigin(t *testing.T) {
	h := newHub("doc", nil)
	go h.run()

	a := fakeClient(h)
	b := fakeClient(h)
	c := fakeClient(h)

	payload := []byte(`{"type":"insert","siteId":"s1"}`)
	h.frames <- frame{origin: a, data: payload}

	assert.Equal(t, payload, recv(t, b))
	assert.Equal(t, payload, recv(t, c))
	select {
	case data := <-a.send:
		t.Fatalf("origin received its own frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestJoinMaintainsRoster(t *testing.T) {
	h := newHub("doc", nil)
	go h.run()

	a := fakeClient(h)
	b := fakeClient(h)

	h.joins <- join{client: a, name: "alice"}
	for _, c := range []*Client{a, b} {
		msg, err := wire.Decode(recv(t, c))
		require.NoError(t, err)
		assert.Equal(t, wire.TypeUserList, msg.Type)
		assert.Equal(t, []string{"alice"}, msg.Users)
	}

	h.joins <- join{client: b, name: "bob"}
	for _, c := range []*Client{a, b} {
		msg, err := wire.Decode(recv(t, c))
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, msg.Users)
	}

	// Departure of a joined client rebroadcasts the shrunken roster.
	h.unregister <- b
	msg, err := wire.Decode(recv(t, a))
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, msg.Users)
}

func TestOpaqueForwarding(t *testing.T) {
	h := newHub("doc", nil)
	go h.run()

	a := fakeClient(h)
	b := fakeClient(h)

	// The relay forwards frames it cannot parse; validation is the
	// receiver's job.
	garbage := []byte("not even json")
	h.frames <- frame{origin: a, data: garbage}
	assert.Equal(t, garbage, recv(t, b))
}
