package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/field-report-service/internal/domain"
)

// syncBuffer is a goroutine-safe writer that can be made to fail after a set
// number of bytes, standing in for a dropped connection.
type syncBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	failAfter int
	written   int
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failAfter > 0 && b.written >= b.failAfter {
		return 0, errors.New("connection closed")
	}
	b.written += len(p)
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func snapshotOf(reports ...domain.Report) SnapshotFunc {
	return func(context.Context) ([]domain.Report, error) {
		return reports, nil
	}
}

func TestSessionSendsSnapshotThenLiveEvents(t *testing.T) {
	hub := testHub()
	buf := &syncBuffer{}
	session := NewSession(hub, snapshotOf(domain.Report{ID: "r-1", Status: domain.ReportStatusReceived}), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		session.Run(ctx, bufio.NewWriter(buf))
		close(done)
	}()

	waitFor(t, func() bool { return hub.Count() == 1 }, "session never subscribed")

	hub.Broadcast(ReportCreated(domain.Report{ID: "r-2", Status: domain.ReportStatusReceived}))
	waitFor(t, func() bool { return strings.Contains(buf.String(), "event: report.created") }, "live event never written")

	cancel()
	<-done

	out := buf.String()
	initIdx := strings.Index(out, "event: init")
	createdIdx := strings.Index(out, "event: report.created")
	if initIdx == -1 || createdIdx == -1 || initIdx > createdIdx {
		t.Fatalf("init must precede live events, got:\n%s", out)
	}
	if !strings.Contains(out, `"r-1"`) {
		t.Fatalf("snapshot row missing from init event:\n%s", out)
	}
	if !strings.Contains(out, ": connected\n\n") {
		t.Fatalf("connected comment missing:\n%s", out)
	}
	if hub.Count() != 0 {
		t.Fatalf("session left %d subscribers registered", hub.Count())
	}
}

func TestSessionSnapshotFailureStillSubscribes(t *testing.T) {
	hub := testHub()
	buf := &syncBuffer{}
	failing := func(context.Context) ([]domain.Report, error) {
		return nil, errors.New("store offline")
	}
	session := NewSession(hub, failing, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		session.Run(ctx, bufio.NewWriter(buf))
		close(done)
	}()

	waitFor(t, func() bool { return hub.Count() == 1 }, "failed snapshot must not prevent subscription")

	hub.Broadcast(ReportUpdated(domain.Report{ID: "r-9", Status: domain.ReportStatusApproved}))
	waitFor(t, func() bool { return strings.Contains(buf.String(), "event: report.updated") }, "live event never delivered after snapshot failure")

	cancel()
	<-done

	out := buf.String()
	if !strings.Contains(out, "event: error") || !strings.Contains(out, "store offline") {
		t.Fatalf("in-band error event missing:\n%s", out)
	}
	if strings.Contains(out, "event: init") {
		t.Fatalf("unexpected init event after snapshot failure:\n%s", out)
	}
}

func TestSessionWriteFailureUnsubscribes(t *testing.T) {
	hub := testHub()
	buf := &syncBuffer{}
	session := NewSession(hub, snapshotOf(), zap.NewNop())

	done := make(chan struct{})
	go func() {
		session.Run(context.Background(), bufio.NewWriter(buf))
		close(done)
	}()

	waitFor(t, func() bool { return hub.Count() == 1 }, "session never subscribed")

	// fail every write from here on; the next delivery tears the session down
	buf.mu.Lock()
	buf.failAfter = 1
	buf.mu.Unlock()

	hub.Broadcast(ReportCreated(domain.Report{ID: "r-1"}))

	<-done
	if hub.Count() != 0 {
		t.Fatalf("failed writer still registered: %d subscribers", hub.Count())
	}
}
