// Package events provides the asynchronous notification bus that fans
// domain changes out to registered consumers (view refresh, re-sort and
// re-scroll side effects live outside this module). Publishing never
// blocks the caller: when the buffer is full events are dropped and
// counted.
package events

import (
	"time"

	"github.com/slateboard/slateboard-go/internal/model"
)

// Origin tells whether a change was issued locally or pushed by a remote
// collaborator over the event stream. Remote changes flow through the
// same apply path as local ones; consumers use the origin only for side
// effects such as scroll-into-view.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Event is implemented by every bus event.
type Event interface {
	Name() string
	Project() string
	Origin() Origin
}

// FrameStatusEvent announces a frame status change.
type FrameStatusEvent struct {
	ProjectID string
	FrameID   string
	Status    model.FrameStatus
	Source    Origin
	Timestamp time.Time
}

func (e FrameStatusEvent) Name() string    { return "frame-status-updated" }
func (e FrameStatusEvent) Project() string { return e.ProjectID }
func (e FrameStatusEvent) Origin() Origin  { return e.Source }

// FramesReloadedEvent announces that the project's frame list was
// replaced wholesale (fetch or board mutation).
type FramesReloadedEvent struct {
	ProjectID string
	Count     int
	Source    Origin
	Timestamp time.Time
}

func (e FramesReloadedEvent) Name() string    { return "frames-reloaded" }
func (e FramesReloadedEvent) Project() string { return e.ProjectID }
func (e FramesReloadedEvent) Origin() Origin  { return e.Source }

// ScheduleChangedEvent announces that a schedule changed identity or
// content and cached copies may be stale.
type ScheduleChangedEvent struct {
	ProjectID  string
	ScheduleID string
	Source     Origin
	Timestamp  time.Time
}

func (e ScheduleChangedEvent) Name() string    { return "schedule-changed" }
func (e ScheduleChangedEvent) Project() string { return e.ProjectID }
func (e ScheduleChangedEvent) Origin() Origin  { return e.Source }

// Consumer receives bus events. ProcessEvent runs on a worker goroutine
// and must not block indefinitely.
type Consumer interface {
	Name() string
	ProcessEvent(event Event) error
}

// BusStats holds bus counters.
type BusStats struct {
	EventsReceived  uint64
	EventsProcessed uint64
	EventsDropped   uint64
	ConsumerErrors  uint64
}
