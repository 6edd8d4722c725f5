package observability

import (
	"context"
	"log/slog"
	"sync"
)

// Aggregate merges several event sources into a single channel. The
// output closes once every source has closed or the context is
// cancelled.
func Aggregate(ctx context.Context, sources ...<-chan Event) <-chan Event {
	out := make(chan Event)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src <-chan Event) {
			defer wg.Done()
			for {
				select {
				case e, ok := <-src:
					if !ok {
						return
					}
					select {
					case out <- e:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}(src)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Log drains events into the logger until the channel closes. Run it
// on its own goroutine to keep an audit trail of engine activity.
func Log(logger *slog.Logger, events <-chan Event) {
	for e := range events {
		attrs := []any{"kind", e.Kind, "session", e.SessionID}
		if e.Scenario != "" {
			attrs = append(attrs, "scenario", e.Scenario, "line", e.Line)
		}
		if len(e.Frames) > 0 {
			attrs = append(attrs, "frames", e.Frames)
		}
		if e.Retries > 0 {
			attrs = append(attrs, "retries", e.Retries)
		}
		if e.To != "" {
			attrs = append(attrs, "from", e.From, "to", e.To, "depth", e.Depth)
		}
		logger.Info("engine event", attrs...)
	}
}
