package stream

import (
	"encoding/json"
	"fmt"

	"github.com/spec-kit/field-report-service/internal/domain"
)

// EventName identifies a wire event on the live feed.
type EventName string

const (
	EventInit          EventName = "init"
	EventReportCreated EventName = "report.created"
	EventReportUpdated EventName = "report.updated"
	EventError         EventName = "error"
)

// Event is one live-feed event. The hub owns it only for the duration of a
// broadcast call; there is no queuing or retention.
type Event struct {
	Name EventName
	Data any
}

// InitPayload is the full current listing sent once per connection.
type InitPayload struct {
	Reports []domain.Report `json:"reports"`
}

// ErrorPayload carries an in-band failure, e.g. a failed init snapshot.
type ErrorPayload struct {
	Error string `json:"error"`
}

// ReportCreated builds the event for a freshly inserted report row.
func ReportCreated(report domain.Report) Event {
	return Event{Name: EventReportCreated, Data: report}
}

// ReportUpdated builds the event for an updated report row.
func ReportUpdated(report domain.Report) Event {
	return Event{Name: EventReportUpdated, Data: report}
}

// Frame renders the event in text/event-stream framing: an event line, a data
// line with the JSON payload, and a terminating blank line.
func (e Event) Frame() ([]byte, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Name, data)), nil
}
