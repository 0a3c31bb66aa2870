package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"quizzz-client/internal/domain"
	"quizzz-client/internal/lifecycle"
	"quizzz-client/internal/submit"
)

// RoundScheduler schedules finalized quizzes as rounds of a tournament.
type RoundScheduler struct {
	backend TournamentBackend
	log     logrus.FieldLogger
	now     func() time.Time
	form    *submit.Coordinator[domain.Round]
}

func NewRoundScheduler(backend TournamentBackend, log logrus.FieldLogger, timeout time.Duration) *RoundScheduler {
	return NewRoundSchedulerWithClock(backend, log, timeout, time.Now)
}

// NewRoundSchedulerWithClock is used by tests to pin the current time.
func NewRoundSchedulerWithClock(backend TournamentBackend, log logrus.FieldLogger, timeout time.Duration, now func() time.Time) *RoundScheduler {
	return &RoundScheduler{
		backend: backend,
		log:     log,
		now:     now,
		form: submit.New[domain.Round](
			submit.WithTimeout(timeout),
			submit.WithObserver(func(from, to submit.State) {
				log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("round form state")
			}),
		),
	}
}

// FormState reports the outcome of the last create or update.
func (s *RoundScheduler) FormState() submit.Snapshot[domain.Round] {
	return s.form.Snapshot()
}

// Rounds lists the rounds of a tournament.
func (s *RoundScheduler) Rounds(ctx context.Context, communityID, tournamentID int64) ([]domain.Round, error) {
	return s.backend.ListRounds(ctx, communityID, tournamentID)
}

// Round fetches one round.
func (s *RoundScheduler) Round(ctx context.Context, communityID, roundID int64) (domain.Round, error) {
	return s.backend.GetRound(ctx, communityID, roundID)
}

// Pool lists finalized quizzes not yet scheduled in any round.
func (s *RoundScheduler) Pool(ctx context.Context, communityID int64) ([]domain.Quiz, error) {
	return s.backend.QuizPool(ctx, communityID)
}

// Create schedules a new round. The window is checked locally first.
func (s *RoundScheduler) Create(ctx context.Context, communityID, tournamentID int64, in domain.RoundInput) (domain.Round, error) {
	return s.submit(ctx, in, func(ctx context.Context) (domain.Round, error) {
		return s.backend.CreateRound(ctx, communityID, tournamentID, in)
	})
}

// Update changes a round's window or quiz. Finished rounds are read-only.
func (s *RoundScheduler) Update(ctx context.Context, communityID, roundID int64, in domain.RoundInput) (domain.Round, error) {
	if err := s.ensureEditable(ctx, communityID, roundID); err != nil {
		return domain.Round{}, err
	}
	return s.submit(ctx, in, func(ctx context.Context) (domain.Round, error) {
		return s.backend.UpdateRound(ctx, communityID, roundID, in)
	})
}

// Delete removes a round in any status, finished ones included.
func (s *RoundScheduler) Delete(ctx context.Context, communityID, roundID int64) error {
	return s.backend.DeleteRound(ctx, communityID, roundID)
}

func (s *RoundScheduler) ensureEditable(ctx context.Context, communityID, roundID int64) error {
	round, err := s.backend.GetRound(ctx, communityID, roundID)
	if err != nil {
		return err
	}
	if lifecycle.ValidateWindow(round.StartTime, round.FinishTime) != nil {
		// a broken window can only be fixed by editing it
		return nil
	}
	if lifecycle.Classify(round, s.now()) == lifecycle.StatusFinished {
		return fmt.Errorf("round %d: %w", roundID, domain.ErrRoundFinished)
	}
	return nil
}

func (s *RoundScheduler) submit(ctx context.Context, in domain.RoundInput, op submit.Operation[domain.Round]) (domain.Round, error) {
	invalid := checkInput(in)
	var out domain.Round
	err := s.form.Submit(ctx, func(ctx context.Context) (domain.Round, error) {
		if invalid != nil {
			return domain.Round{}, invalid
		}
		return op(ctx)
	}, func(round domain.Round) {
		out = round
	})
	if err != nil {
		s.log.WithError(err).Warn("round submit failed")
		return domain.Round{}, err
	}
	return out, nil
}
