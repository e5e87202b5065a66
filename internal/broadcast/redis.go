package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ Bus = (*RedisBus)(nil)

const defaultRedisChannelPrefix = "auditportal:changes:"

// RedisBus publishes changes on one Redis pub/sub channel per key and fans
// received messages out to local handlers. Redis delivers messages from one
// connection in publish order.
type RedisBus struct {
	client *goredis.Client
	prefix string
	reg    *registry
	logger *zap.Logger

	pubsub    *goredis.PubSub
	ownClient bool
	cancel    context.CancelFunc
	done      chan struct{}
	once      sync.Once
}

// NewRedisBus pattern-subscribes to every change channel under prefix and
// starts the receive loop. The caller keeps ownership of client.
func NewRedisBus(ctx context.Context, client *goredis.Client, prefix string, logger *zap.Logger) (*RedisBus, error) {
	if prefix == "" {
		prefix = defaultRedisChannelPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ps := client.PSubscribe(ctx, prefix+"*")
	// Wait for subscription confirmation so no publish after return is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s*: %w", prefix, err)
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	b := &RedisBus{
		client: client,
		prefix: prefix,
		reg:    newRegistry(),
		logger: logger.Named("redis-bus"),
		pubsub: ps,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go b.loop(loopCtx)
	return b, nil
}

func (b *RedisBus) loop(ctx context.Context) {
	defer close(b.done)
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var c Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				b.logger.Warn("drop malformed change", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if c.Key == "" {
				c.Key = strings.TrimPrefix(msg.Channel, b.prefix)
			}
			b.reg.dispatch(c)
		}
	}
}

// Publish sends c on the channel for c.Key.
func (b *RedisBus) Publish(ctx context.Context, c Change) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := b.client.Publish(ctx, b.prefix+c.Key, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", c.Key, err)
	}
	return nil
}

// Subscribe registers h for key.
func (b *RedisBus) Subscribe(key string, h Handler) func() {
	return b.reg.add(key, h)
}

// Close stops the receive loop and the subscription.
func (b *RedisBus) Close() error {
	var err error
	b.once.Do(func() {
		b.cancel()
		err = b.pubsub.Close()
		<-b.done
		if b.ownClient {
			err = errors.Join(err, b.client.Close())
		}
	})
	return err
}
