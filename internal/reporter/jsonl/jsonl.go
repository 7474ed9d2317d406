// Package jsonl implements a reporter that writes one JSON object per
// lifecycle event, newline-delimited, suitable for --report-file.
package jsonl

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/reporter"
)

var _ reporter.Reporter = (*Reporter)(nil)

// Event is the envelope written for every lifecycle call.
type Event struct {
	Type      string             `json:"type"`
	Time      time.Time          `json:"time"`
	Model     string             `json:"model,omitempty"`
	Name      string             `json:"name,omitempty"`
	Status    model.StepStatus   `json:"status,omitempty"`
	Message   string             `json:"message,omitempty"`
	Statistics *model.Statistics `json:"statistics,omitempty"`
}

// Reporter serializes every event to w as newline-delimited JSON.
type Reporter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	events []Event
}

// New constructs a jsonl Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{enc: json.NewEncoder(w)}
}

func (r *Reporter) write(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	_ = r.enc.Encode(e)
}

func (r *Reporter) Start(models *model.ModelSet, expression string) {
	r.write(Event{Type: "start", Time: timeNow(), Message: expression})
}

func (r *Reporter) End(stats model.Statistics) {
	s := stats
	r.write(Event{Type: "end", Time: timeNow(), Statistics: &s})
}

func (r *Reporter) StepStart(step model.Step) {
	r.write(Event{Type: "stepStart", Time: timeNow(), Model: step.ModelName, Name: step.Name})
}

func (r *Reporter) StepEnd(step model.Step, result model.StepOutcome) {
	r.write(Event{
		Type:    "stepEnd",
		Time:    timeNow(),
		Model:   step.ModelName,
		Name:    step.Name,
		Status:  result.Status,
		Message: result.Message,
	})
}

// Report returns every event recorded so far, in emission order.
func (r *Reporter) Report() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// timeNow is a var so tests can pin deterministic timestamps.
var timeNow = time.Now
