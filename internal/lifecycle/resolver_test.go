package lifecycle

import (
	"errors"
	"testing"
	"time"

	"quizzz-client/internal/domain"
)

var (
	t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t1 = t0.Add(48 * time.Hour)
)

func TestClassifyBoundaries(t *testing.T) {
	round := domain.Round{StartTime: t0, FinishTime: t1}

	cases := []struct {
		now  time.Time
		want Status
	}{
		{t0.Add(-time.Millisecond), StatusComing},
		{t0, StatusCurrent},
		{t1.Add(-time.Millisecond), StatusCurrent},
		{t1, StatusFinished},
		{t1.Add(time.Hour), StatusFinished},
	}
	for _, c := range cases {
		if got := Classify(round, c.now); got != c.want {
			t.Fatalf("now=%s: expected %s, got %s", c.now, c.want, got)
		}
	}
}

func TestPermittedActionAuthorAndPlayerOverride(t *testing.T) {
	playID := int64(7)
	author := domain.Round{StartTime: t0, FinishTime: t1, IsAuthor: true}
	player := domain.Round{StartTime: t0, FinishTime: t1, UserPlayID: &playID, UserPlayIsSubmitted: true}

	for _, now := range []time.Time{t0.Add(-time.Hour), t0, t1} {
		if got := PermittedAction(author, now); got != ActionReview {
			t.Fatalf("author at %s: expected review, got %s", now, got)
		}
		if got := PermittedAction(player, now); got != ActionReview {
			t.Fatalf("player at %s: expected review, got %s", now, got)
		}
	}
}

func TestPermittedActionForOtherViewers(t *testing.T) {
	playID := int64(3)
	fresh := domain.Round{StartTime: t0, FinishTime: t1}
	started := domain.Round{StartTime: t0, FinishTime: t1, UserPlayID: &playID}

	if got := PermittedAction(fresh, t0.Add(-time.Second)); got != ActionNone {
		t.Fatalf("coming round: expected none, got %s", got)
	}
	if got := PermittedAction(fresh, t0); got != ActionPlay {
		t.Fatalf("current round: expected play, got %s", got)
	}
	if got := PermittedAction(started, t0.Add(time.Hour)); got != ActionPlay {
		t.Fatalf("started play: expected play, got %s", got)
	}
	if got := PermittedAction(fresh, t1); got != ActionNone {
		t.Fatalf("finished round: expected none, got %s", got)
	}
}

func TestClassifyPanicsOnInvalidWindow(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, domain.ErrInvalidWindow) {
			t.Fatalf("expected ErrInvalidWindow panic, got %v", r)
		}
	}()
	Classify(domain.Round{StartTime: t1, FinishTime: t0}, t0)
}

func TestValidateWindow(t *testing.T) {
	if err := ValidateWindow(t0, t1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateWindow(t0, t0); !errors.Is(err, domain.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for empty window, got %v", err)
	}
}

func TestTimeLeft(t *testing.T) {
	finish := t0.Add(26*time.Hour + 5*time.Minute + 30*time.Second)
	got := TimeLeft(finish, t0)
	if got != (Remaining{Days: 1, Hours: 2, Minutes: 5}) {
		t.Fatalf("unexpected remaining %+v", got)
	}
	if got := TimeLeft(t0, t1); got != (Remaining{}) {
		t.Fatalf("expected zero remaining after finish, got %+v", got)
	}
}
