package workers

import (
	"chat-relay/contract"
	"context"
	"log/slog"
	"time"
)

// DeliveryFanout drains the delivery channel and pushes each event to
// its target sinks.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering across rooms, durability, or retries. A slow or dead sink is
// bounded by sinkTimeout and never blocks delivery to the other members.
//
// DeliveryFanout is safe for concurrent use by multiple goroutines.
type DeliveryFanout struct {
	log         *slog.Logger
	deliveries  chan contract.Delivery
	sinkTimeout time.Duration
}

func NewDeliveryFanout(log *slog.Logger, deliveries chan contract.Delivery, sinkTimeout time.Duration) *DeliveryFanout {
	return &DeliveryFanout{log: log, deliveries: deliveries, sinkTimeout: sinkTimeout}
}

func (w *DeliveryFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping delivery fanout")
			return nil
		case d, ok := <-w.deliveries:
			if !ok {
				return nil
			}
			w.Fanout(ctx, d)
		}
	}
}

// Fanout pushes one event to every target sink, each under its own timeout.
func (w *DeliveryFanout) Fanout(ctx context.Context, d contract.Delivery) {
	for _, sink := range d.Targets {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, d.Event); err != nil {
			w.log.Warn("Sink dropped event", "room", d.Event.Room(), "error", err)
		}
		cancel()
	}
}
