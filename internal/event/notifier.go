package event

import (
	"context"

	"go.uber.org/zap"
)

// Notifier receives engine-emitted domain events. The engine does not know
// who consumes them.
type Notifier interface {
	Publish(ctx context.Context, e Event)
}

// Sink is a single delivery target. Sinks may fail; the fan-out logs and
// swallows their errors so a broken observer never fails a booking.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// Fanout delivers each event to every sink, best-effort.
type Fanout struct {
	sinks []Sink
	log   *zap.Logger
}

func NewFanout(log *zap.Logger, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, log: log}
}

func (f *Fanout) Publish(ctx context.Context, e Event) {
	for _, s := range f.sinks {
		if err := s.Deliver(ctx, e); err != nil {
			f.log.Warn("event delivery failed",
				zap.String("type", string(e.Type)),
				zap.String("slot_id", e.SlotID),
				zap.Error(err),
			)
		}
	}
}

// Nop is a Notifier that drops everything. Useful as a default.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
