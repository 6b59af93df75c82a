package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const roomChannelPrefix = "chat:room:"

// Bridge carries events between instances over Redis pub/sub. Every room
// broadcast goes out through Publish; each instance's subscriber fans incoming
// events out to its local hub, including the publishing instance's own.
type Bridge struct {
	hub  *Hub
	rdb  *redis.Client
	once sync.Once
}

func NewBridge(hub *Hub, rdb *redis.Client) *Bridge {
	return &Bridge{hub: hub, rdb: rdb}
}

// Publish sends an event to a room across all instances.
func (b *Bridge) Publish(ctx context.Context, room string, event Event) error {
	event.Room = room
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, roomChannelPrefix+room, data).Err()
}

// Start launches the shared subscriber exactly once.
func (b *Bridge) Start(ctx context.Context) {
	b.once.Do(func() {
		go b.run(ctx)
	})
}

func (b *Bridge) run(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := b.rdb.PSubscribe(ctx, roomChannelPrefix+"*")
			defer pubsub.Close()

			log.Printf("✅ Realtime Redis subscriber started (pattern: %s*)", roomChannelPrefix)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("⚠️ Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal realtime event: %v", err)
					continue
				}

				b.hub.Broadcast(event.Room, event)
			}
		}()
	}
}
