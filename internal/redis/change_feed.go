package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sameezy667/ResQ-sub000/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// ChangeFeed carries INSERT/UPDATE/DELETE notifications over redis
// pub/sub, one channel per watched table. Delivery order holds within a
// channel; nothing is promised across channels.
type ChangeFeed struct {
	client *goredis.Client
	logger *slog.Logger
	prefix string

	mu   sync.Mutex
	subs map[string]*subscription
}

type subscription struct {
	ps   *goredis.PubSub
	done chan struct{}
}

func NewChangeFeed(r *Redis, logger *slog.Logger) *ChangeFeed {
	return &ChangeFeed{
		client: r.Client,
		logger: logger,
		prefix: "changes:",
		subs:   make(map[string]*subscription),
	}
}

func (f *ChangeFeed) channel(table string) string {
	return f.prefix + table
}

// Publish is best-effort fan-out; the write it describes has already
// committed.
func (f *ChangeFeed) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel(ev.Table), b).Err()
}

// Subscribe opens one channel per table and decodes events onto the
// returned channel. Undecodable payloads are logged and skipped so one
// bad message never kills the stream.
func (f *ChangeFeed) Subscribe(ctx context.Context, table string) (<-chan domain.ChangeEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.subs[table]; exists {
		return nil, fmt.Errorf("already subscribed to %s", table)
	}

	ps := f.client.Subscribe(ctx, f.channel(table))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", table, err)
	}
	sub := &subscription{ps: ps, done: make(chan struct{})}
	f.subs[table] = sub

	out := make(chan domain.ChangeEvent, 64)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev domain.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				f.logger.Warn("dropping undecodable change event",
					slog.String("table", table),
					slog.Any("error", err),
				)
				continue
			}
			// the consumer may be gone with out full; done is the
			// sender's exit path since Close can't unblock a send
			select {
			case out <- ev:
			case <-sub.done:
				return
			}
		}
	}()

	return out, nil
}

func (f *ChangeFeed) Unsubscribe(table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.subs[table]
	if !ok {
		return nil
	}
	delete(f.subs, table)
	close(sub.done)
	return sub.ps.Close()
}
