package hub

import (
	"context"
	"encoding/json"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Bridge fans frames out across relay instances through Redis pub/sub,
// one channel per document. Each bridge tags published frames with its
// instance id and drops its own frames on receipt, so a frame crosses
// the bridge at most once.
type Bridge struct {
	rdb      *redis.Client
	instance string
	ctx      context.Context
}

// bridgeFrame is the envelope published on the document channel.
type bridgeFrame struct {
	Instance string `json:"instance"`
	Data     []byte `json:"data"`
}

// NewBridge wraps an established Redis client.
func NewBridge(rdb *redis.Client) *Bridge {
	return &Bridge{
		rdb:      rdb,
		instance: uuid.NewString(),
		ctx:      context.Background(),
	}
}

// Publish sends a locally originated frame to the document channel.
func (b *Bridge) Publish(doc string, data []byte) {
	payload, err := json.Marshal(bridgeFrame{Instance: b.instance, Data: data})
	if err != nil {
		log.WithError(err).Error("encoding bridge frame")
		return
	}
	if err := b.rdb.Publish(b.ctx, doc, payload).Err(); err != nil {
		log.WithError(err).WithField("doc", doc).Error("publishing to bridge")
	}
}

// subscribe feeds frames published by other instances into the hub.
func (b *Bridge) subscribe(h *Hub) {
	pubsub := b.rdb.Subscribe(b.ctx, h.doc)
	go func() {
		defer pubsub.Close()
		for msg := range pubsub.Channel() {
			var bf bridgeFrame
			if err := json.Unmarshal([]byte(msg.Payload), &bf); err != nil {
				h.log.WithError(err).Error("decoding bridge frame")
				continue
			}
			if bf.Instance == b.instance {
				continue
			}
			h.frames <- frame{data: bf.Data}
		}
	}()
}
