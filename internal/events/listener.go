package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderChangeChannel is the Postgres NOTIFY channel repositories write to
// (pg_notify inside the status-update transaction).
const OrderChangeChannel = "order_changes"

// Listener bridges the persistence layer's live-subscription primitive
// (Postgres LISTEN/NOTIFY) into the hub, so the engine reacts to order writes
// made by any node without polling.
type Listener struct {
	pool *pgxpool.Pool
	hub  *Hub
}

func NewListener(pool *pgxpool.Pool, hub *Hub) *Listener {
	return &Listener{pool: pool, hub: hub}
}

// Run blocks on WaitForNotification until ctx is cancelled. The connection is
// re-acquired with a short backoff after any failure.
func (l *Listener) Run(ctx context.Context) {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("Listener: connection lost, retrying", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(3 * time.Second):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	// Close before Release so the pool destroys the connection instead of
	// recycling it still subscribed to the channel.
	defer func() {
		conn.Conn().Close(context.Background())
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+OrderChangeChannel); err != nil {
		return err
	}
	slog.Info("Listener: subscribed", "channel", OrderChangeChannel)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var change OrderChange
		if err := json.Unmarshal([]byte(notification.Payload), &change); err != nil {
			slog.Error("Listener: bad payload", "payload", notification.Payload, "error", err)
			continue
		}
		l.hub.Publish(change)
	}
}
