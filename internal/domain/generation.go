package domain

import "time"

// Status enumerates generation lifecycle states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Generation tracks a single upload-to-result attempt.
type Generation struct {
	ID               string
	OriginalFilename string
	OriginalSize     int64
	OriginalFormat   string
	OriginalURL      string
	GeneratedURL     string
	GeneratedSize    int64
	PromptUsed       string
	Description      string
	Status           Status
	ErrorMessage     string
	ProcessingTime   float64 // seconds, zero until completion
	LogoApplied      bool
	CreatedAt        time.Time
	StartedAt        time.Time
	CompletedAt      time.Time
}

// Event drives status transitions.
type Event struct {
	Kind         EventKind
	ErrorMessage string // required for EventFail
}

type EventKind string

const (
	EventStart    EventKind = "start"
	EventComplete EventKind = "complete"
	EventFail     EventKind = "fail"
)

// Transition applies ev to g and returns an updated copy. The entity is
// never mutated in place. Transitions only move forward:
//
//	pending -> processing -> completed | failed
//
// CompletedAt is set exactly once, when the record reaches a terminal
// state, and ProcessingTime is derived from CompletedAt - StartedAt when
// both are known.
func Transition(g Generation, ev Event, now time.Time) (Generation, error) {
	if g.Status.Terminal() {
		return g, NewError(KindDatabaseError, "generation "+g.ID+" is already "+string(g.Status), "")
	}
	switch ev.Kind {
	case EventStart:
		if g.Status != StatusPending {
			return g, NewError(KindDatabaseError, "cannot start generation in status "+string(g.Status), "")
		}
		g.Status = StatusProcessing
		g.StartedAt = now
		return g, nil
	case EventComplete:
		g.Status = StatusCompleted
		g.CompletedAt = now
		if !g.StartedAt.IsZero() {
			g.ProcessingTime = now.Sub(g.StartedAt).Seconds()
		}
		return g, nil
	case EventFail:
		if ev.ErrorMessage == "" {
			return g, NewError(KindDatabaseError, "failed generation requires an error message", "")
		}
		g.Status = StatusFailed
		g.ErrorMessage = ev.ErrorMessage
		g.CompletedAt = now
		if !g.StartedAt.IsZero() {
			g.ProcessingTime = now.Sub(g.StartedAt).Seconds()
		}
		return g, nil
	default:
		return g, NewError(KindDatabaseError, "unknown event "+string(ev.Kind), "")
	}
}
