// Package realtime pushes chat messages and notifications to websocket
// clients. Messages are fanned out across instances through a Broker.
package realtime

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DeliverFunc receives every message published on any topic
type DeliverFunc func(topic string, payload []byte)

// Broker moves published messages to every subscribed hub, possibly on other instances
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	// Run delivers messages until ctx is cancelled
	Run(ctx context.Context, deliver DeliverFunc) error
}

// LocalBroker delivers messages within the current process
type LocalBroker struct {
	mu       sync.RWMutex
	nextID   int
	delivers map[int]DeliverFunc
}

// NewLocalBroker creates an in-process broker
func NewLocalBroker() *LocalBroker {
	return &LocalBroker{delivers: make(map[int]DeliverFunc)}
}

// Publish hands the payload to every running subscriber synchronously
func (b *LocalBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, d := range b.delivers {
		d(topic, payload)
	}
	return nil
}

// Run registers deliver until ctx is done
func (b *LocalBroker) Run(ctx context.Context, deliver DeliverFunc) error {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.delivers[id] = deliver
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	delete(b.delivers, id)
	b.mu.Unlock()
	return nil
}

const defaultChannelPrefix = "groupbuy:realtime:"

// RedisBroker fans messages out through Redis pub/sub
type RedisBroker struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

// NewRedisBroker creates a broker on a shared Redis client
func NewRedisBroker(client redis.UniversalClient, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{client: client, prefix: defaultChannelPrefix, logger: logger}
}

// Publish sends the payload to the topic's Redis channel
func (b *RedisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, b.prefix+topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// Run pattern-subscribes to every topic and delivers until ctx is cancelled
func (b *RedisBroker) Run(ctx context.Context, deliver DeliverFunc) error {
	pubsub := b.client.PSubscribe(ctx, b.prefix+"*")
	defer pubsub.Close()

	// Receive blocks until the subscription is confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	b.logger.Info("Realtime broker subscribed to Redis", zap.String("pattern", b.prefix+"*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			deliver(strings.TrimPrefix(msg.Channel, b.prefix), []byte(msg.Payload))
		}
	}
}

// NewBroker returns a Redis broker when a client is given, otherwise a local one
func NewBroker(client redis.UniversalClient, logger *zap.Logger) Broker {
	if client == nil {
		return NewLocalBroker()
	}
	return NewRedisBroker(client, logger)
}

var (
	_ Broker = (*LocalBroker)(nil)
	_ Broker = (*RedisBroker)(nil)
)
