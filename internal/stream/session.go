package stream

import (
	"bufio"
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/field-report-service/internal/domain"
)

// keepAliveInterval is how often a comment frame is emitted to defeat
// idle-connection timeouts in intermediary proxies.
const keepAliveInterval = 25 * time.Second

// SnapshotFunc fetches the current report listing for the init event.
type SnapshotFunc func(ctx context.Context) ([]domain.Report, error)

// Session drives the live-feed protocol over one connection: an init snapshot
// (or an in-band error if the fetch fails), then hub broadcasts forwarded as
// framed events, with periodic keepalives. Write failures terminate the
// session; teardown always unsubscribes and stops the keepalive timer.
type Session struct {
	hub      *Hub
	snapshot SnapshotFunc
	logger   *zap.Logger
}

// NewSession builds a session bound to the hub and snapshot source.
func NewSession(hub *Hub, snapshot SnapshotFunc, logger *zap.Logger) *Session {
	return &Session{hub: hub, snapshot: snapshot, logger: logger}
}

// Run blocks until the connection closes, the context is done, or a write
// fails. A failed snapshot does not prevent promotion to the subscribed
// state: the client still receives future live events.
func (s *Session) Run(ctx context.Context, w *bufio.Writer) {
	if reports, err := s.snapshot(ctx); err != nil {
		s.logger.Warn("live feed snapshot failed", zap.Error(err))
		if writeErr := writeEvent(w, Event{Name: EventError, Data: ErrorPayload{Error: err.Error()}}); writeErr != nil {
			return
		}
	} else {
		if writeErr := writeEvent(w, Event{Name: EventInit, Data: InitPayload{Reports: reports}}); writeErr != nil {
			return
		}
	}

	if err := writeComment(w, "connected"); err != nil {
		return
	}

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				// evicted by the hub
				return
			}
			if err := writeEvent(w, ev); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := writeComment(w, "ping"); err != nil {
				return
			}
		}
	}
}

func writeEvent(w *bufio.Writer, ev Event) error {
	frame, err := ev.Frame()
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	return w.Flush()
}

func writeComment(w *bufio.Writer, text string) error {
	if _, err := w.WriteString(": " + text + "\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
