package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/field-report-service/internal/domain"
)

// reconnectBackoff is the fixed delay between feed connection attempts.
const reconnectBackoff = 1500 * time.Millisecond

// ErrClientRunning is returned when Run is called on a client that already
// has an active feed attempt.
var ErrClientRunning = errors.New("stream client already running")

// FeedCallbacks dispatches decoded feed events. Nil callbacks are skipped.
type FeedCallbacks struct {
	OnInit    func([]domain.Report)
	OnCreated func(domain.Report)
	OnUpdated func(domain.Report)
	OnError   func(string)
}

// Client consumes the admin live feed, reconnecting with a fixed backoff on
// any termination until its context is cancelled. At most one connection
// attempt is active per client at a time.
type Client struct {
	URL        string
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Callbacks  FeedCallbacks

	running atomic.Bool
}

// Run connects and consumes the feed until ctx is cancelled. Every stream
// termination or connection error schedules a reconnect after the backoff.
func (c *Client) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrClientRunning
	}
	defer c.running.Store(false)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	for {
		if err := c.consume(ctx, httpClient); err != nil && c.Logger != nil {
			c.Logger.Warn("live feed disconnected", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectBackoff):
		}
	}
}

func (c *Client) consume(ctx context.Context, httpClient *http.Client) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	return ParseFeed(resp.Body, func(name string, data []byte) {
		c.dispatch(name, data)
	})
}

func (c *Client) dispatch(name string, data []byte) {
	switch EventName(name) {
	case EventInit:
		var payload InitPayload
		if json.Unmarshal(data, &payload) == nil && c.Callbacks.OnInit != nil {
			c.Callbacks.OnInit(payload.Reports)
		}
	case EventReportCreated:
		var report domain.Report
		if json.Unmarshal(data, &report) == nil && report.ID != "" && c.Callbacks.OnCreated != nil {
			c.Callbacks.OnCreated(report)
		}
	case EventReportUpdated:
		var report domain.Report
		if json.Unmarshal(data, &report) == nil && report.ID != "" && c.Callbacks.OnUpdated != nil {
			c.Callbacks.OnUpdated(report)
		}
	case EventError:
		var payload ErrorPayload
		if json.Unmarshal(data, &payload) == nil && c.Callbacks.OnError != nil {
			c.Callbacks.OnError(payload.Error)
		}
	}
}

// ParseFeed incrementally reads a text event stream: comment lines are
// ignored, repeated data lines are concatenated, and one event is emitted per
// blank line. Event boundaries are never assumed to align with transport
// chunk boundaries. Returns when the stream ends.
func ParseFeed(r io.Reader, emit func(name string, data []byte)) error {
	reader := bufio.NewReader(r)
	eventName := ""
	var data strings.Builder

	flush := func() {
		if data.Len() > 0 && eventName != "" {
			emit(eventName, []byte(data.String()))
		}
		eventName = ""
		data.Reset()
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, ":"):
			// comment / keepalive
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(line[len("data:"):]))
		}
	}
}

// ReportList is the client-side listing the feed is applied to. Init replaces
// the whole list; created/updated events upsert by id, inserting unseen
// identifiers at the head (the listing is newest first) and replacing known
// ones in place.
type ReportList struct {
	reports []domain.Report
}

// Replace swaps in the snapshot listing.
func (l *ReportList) Replace(reports []domain.Report) {
	l.reports = append([]domain.Report(nil), reports...)
}

// Upsert inserts or replaces one row by id.
func (l *ReportList) Upsert(report domain.Report) {
	for i := range l.reports {
		if l.reports[i].ID == report.ID {
			l.reports[i] = report
			return
		}
	}
	l.reports = append([]domain.Report{report}, l.reports...)
}

// Reports returns the current listing.
func (l *ReportList) Reports() []domain.Report {
	return l.reports
}
