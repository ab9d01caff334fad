package internal

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v4"
	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/state"
)

// Watcher relays state changes committed by other processes onto the local bus.
type Watcher struct {
	connString string
	bus        *state.Bus
	logger     *zap.SugaredLogger
}

func NewWatcher(connString string, bus *state.Bus, logger *zap.SugaredLogger) *Watcher {
	return &Watcher{connString: connString, bus: bus, logger: logger}
}

// Run listens until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, w.connString)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err = conn.Exec(ctx, "LISTEN "+stateChannel); err != nil {
		return err
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		e, ok := parseNotification(n.Payload)
		if !ok {
			w.logger.Warnf("unexpected state notification %q", n.Payload)
			continue
		}
		w.bus.Publish(e)
	}
}

// parseNotification reads a "key:version" payload.
func parseNotification(payload string) (state.Event, bool) {
	i := strings.LastIndexByte(payload, ':')
	if i <= 0 {
		return state.Event{}, false
	}

	v, err := strconv.ParseInt(payload[i+1:], 10, 64)
	if err != nil {
		return state.Event{}, false
	}
	return state.Event{Key: payload[:i], Version: v, Remote: true}, true
}
