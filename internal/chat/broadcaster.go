package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
)

type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger
}

func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{registry: registry, logger: logger}
}

// Broadcast enqueues msg into the mailbox of every registered peer except
// exclude. Each recipient is sent to from its own goroutine, so a full mailbox
// only holds up its own delivery; Broadcast returns once every send has been
// accepted or has failed. A peer whose mailbox is closed is dropped from the
// registry.
func (b *Broadcaster) Broadcast(exclude string, msg *Message) {
	start := time.Now()
	targets := lo.Filter(b.registry.Snapshot(), func(e Entry, _ int) bool {
		return e.Addr != exclude
	})

	var wg sync.WaitGroup
	wg.Add(len(targets))
	for _, target := range targets {
		go func(target Entry) {
			defer wg.Done()
			if err := target.Mailbox.Send(msg); err != nil {
				// The owning session may already have removed the entry.
				if b.registry.RemoveIf(target.Addr, target.Mailbox) {
					PeersEvicted.Inc()
					b.logger.Warn("failed to send message, peer removed", "peer", target.Addr, "error", err)
					return
				}
				b.logger.Debug("failed to send message", "peer", target.Addr, "error", err)
			}
		}(target)
	}
	wg.Wait()

	kind := msg.Kind().String()
	MessagesTotal.WithLabelValues(kind).Inc()
	BroadcastDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
