// Package lifecycle derives a round's temporal status and the action the
// viewer may take on it. All functions are pure; callers pass the current
// time explicitly and decide how often to re-evaluate.
package lifecycle

import (
	"fmt"
	"time"

	"quizzz-client/internal/domain"
)

// Status is the temporal status of a round.
type Status string

const (
	StatusComing   Status = "coming"
	StatusCurrent  Status = "current"
	StatusFinished Status = "finished"
)

// Action is what the viewer may do with a round.
type Action string

const (
	ActionReview Action = "review"
	ActionPlay   Action = "play"
	ActionNone   Action = "none"
)

// ValidateWindow checks that finish is strictly after start.
func ValidateWindow(start, finish time.Time) error {
	if !finish.After(start) {
		return fmt.Errorf("window %s..%s: %w", start.Format(time.RFC3339), finish.Format(time.RFC3339), domain.ErrInvalidWindow)
	}
	return nil
}

// ClassifyWindow returns coming before start, current in [start, finish),
// finished from finish on. It panics if the window is empty or inverted.
func ClassifyWindow(start, finish, now time.Time) Status {
	if err := ValidateWindow(start, finish); err != nil {
		panic(fmt.Errorf("lifecycle: %w", err))
	}
	switch {
	case now.Before(start):
		return StatusComing
	case now.Before(finish):
		return StatusCurrent
	default:
		return StatusFinished
	}
}

// Classify returns the status of a round at now.
func Classify(round domain.Round, now time.Time) Status {
	return ClassifyWindow(round.StartTime, round.FinishTime, now)
}

// PermittedAction returns review for the quiz author or a viewer who already
// submitted a play, regardless of the window; play while the round is
// current; none otherwise.
func PermittedAction(round domain.Round, now time.Time) Action {
	status := Classify(round, now)
	if round.IsAuthor || round.HasPlayed() {
		return ActionReview
	}
	if status == StatusCurrent {
		return ActionPlay
	}
	return ActionNone
}

// Remaining is the time left until a round finishes, split for display.
type Remaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// TimeLeft returns the time until finish, zero once finished.
func TimeLeft(finish, now time.Time) Remaining {
	left := finish.Sub(now)
	if left <= 0 {
		return Remaining{}
	}
	minutes := int(left / time.Minute)
	return Remaining{
		Days:    minutes / (24 * 60),
		Hours:   minutes % (24 * 60) / 60,
		Minutes: minutes % 60,
	}
}

func (r Remaining) String() string {
	return fmt.Sprintf("%dd %dh %dm", r.Days, r.Hours, r.Minutes)
}
