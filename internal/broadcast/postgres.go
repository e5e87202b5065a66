package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var _ Bus = (*PostgresBus)(nil)

const (
	defaultPostgresChannel = "auditportal_changes"
	// NOTIFY payloads are capped at 8000 bytes; values travel through storage instead.
	maxNotifyPayload = 7999
)

// PostgresBus relays changes through LISTEN/NOTIFY. Notifications never carry
// the collection value, so receivers reload the key from storage.
type PostgresBus struct {
	channel string
	reg     *registry
	logger  *zap.Logger

	listen *pgx.Conn
	pubMu  sync.Mutex
	pub    *pgx.Conn

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewPostgresBus opens a listening and a publishing connection to dsn and
// starts the notification loop.
func NewPostgresBus(ctx context.Context, dsn, channel string, logger *zap.Logger) (*PostgresBus, error) {
	if channel == "" {
		channel = defaultPostgresChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	listen, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect listener: %w", err)
	}
	if _, err := listen.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		_ = listen.Close(ctx)
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}
	pub, err := pgx.Connect(ctx, dsn)
	if err != nil {
		_ = listen.Close(ctx)
		return nil, fmt.Errorf("connect publisher: %w", err)
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	b := &PostgresBus{
		channel: channel,
		reg:     newRegistry(),
		logger:  logger.Named("postgres-bus"),
		listen:  listen,
		pub:     pub,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go b.loop(loopCtx)
	return b, nil
}

func (b *PostgresBus) loop(ctx context.Context) {
	defer close(b.done)
	for {
		n, err := b.listen.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			b.logger.Error("wait for notification", zap.Error(err))
			return
		}
		c, err := decodeNotice(n.Payload)
		if err != nil {
			b.logger.Warn("drop malformed change", zap.Error(err))
			continue
		}
		b.reg.dispatch(c)
	}
}

// encodeNotice strips the value and serializes c for a NOTIFY payload.
func encodeNotice(c Change) (string, error) {
	c.Value = nil
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal change: %w", err)
	}
	if len(data) > maxNotifyPayload {
		return "", fmt.Errorf("change notice for %s exceeds %d bytes", c.Key, maxNotifyPayload)
	}
	return string(data), nil
}

func decodeNotice(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, err
	}
	if c.Key == "" {
		return Change{}, errors.New("change notice without key")
	}
	return c, nil
}

// Publish sends a NOTIFY for c.Key.
func (b *PostgresBus) Publish(ctx context.Context, c Change) error {
	payload, err := encodeNotice(c)
	if err != nil {
		return err
	}
	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	if _, err := b.pub.Exec(ctx, "SELECT pg_notify($1, $2)", b.channel, payload); err != nil {
		return fmt.Errorf("notify %s: %w", c.Key, err)
	}
	return nil
}

// Subscribe registers h for key.
func (b *PostgresBus) Subscribe(key string, h Handler) func() {
	return b.reg.add(key, h)
}

// Close stops the notification loop and closes both connections.
func (b *PostgresBus) Close() error {
	var err error
	b.once.Do(func() {
		b.cancel()
		<-b.done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(b.listen.Close(ctx), b.pub.Close(ctx))
	})
	return err
}
