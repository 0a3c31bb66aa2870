package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"quizzz-client/internal/domain"
	"quizzz-client/internal/lifecycle"
)

// BoardRound is a round classified at the board's refresh time.
type BoardRound struct {
	Round    domain.Round         `json:"round"`
	Status   lifecycle.Status     `json:"status"`
	Action   lifecycle.Action     `json:"action"`
	TimeLeft *lifecycle.Remaining `json:"time_left,omitempty"`
}

// Board is a snapshot of a tournament: its rounds and standings.
type Board struct {
	CommunityID  int64             `json:"community_id"`
	TournamentID int64             `json:"tournament_id"`
	Rounds       []BoardRound      `json:"rounds"`
	Standings    []domain.Standing `json:"standings"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// RoundBoard fetches tournament boards and fans refreshed snapshots out to
// subscribers. Re-evaluation is driven by callers (Refresh or Watch).
type RoundBoard struct {
	backend BoardBackend
	log     logrus.FieldLogger
	now     func() time.Time
	sf      singleflight.Group

	mu          sync.Mutex
	subscribers map[string]map[chan Board]struct{}
}

func NewRoundBoard(backend BoardBackend, log logrus.FieldLogger) *RoundBoard {
	return NewRoundBoardWithClock(backend, log, time.Now)
}

// NewRoundBoardWithClock is used by tests for deterministic classification.
func NewRoundBoardWithClock(backend BoardBackend, log logrus.FieldLogger, now func() time.Time) *RoundBoard {
	return &RoundBoard{
		backend:     backend,
		log:         log,
		now:         now,
		subscribers: make(map[string]map[chan Board]struct{}),
	}
}

func boardKey(communityID, tournamentID int64) string {
	return fmt.Sprintf("%d:%d", communityID, tournamentID)
}

// Snapshot fetches rounds and standings concurrently and classifies every
// round at the current time. Rounds with an invalid window are skipped.
func (b *RoundBoard) Snapshot(ctx context.Context, communityID, tournamentID int64) (Board, error) {
	var (
		rounds    []domain.Round
		standings []domain.Standing
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rounds, err = b.backend.ListRounds(gctx, communityID, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		standings, err = b.backend.Standings(gctx, communityID, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Board{}, err
	}

	now := b.now()
	board := Board{
		CommunityID:  communityID,
		TournamentID: tournamentID,
		Rounds:       make([]BoardRound, 0, len(rounds)),
		Standings:    standings,
		UpdatedAt:    now,
	}
	sortStandings(board.Standings)
	for _, round := range rounds {
		if err := lifecycle.ValidateWindow(round.StartTime, round.FinishTime); err != nil {
			b.log.WithError(err).WithField("round_id", round.ID).Warn("skipping round with invalid window")
			continue
		}
		entry := BoardRound{
			Round:  round,
			Status: lifecycle.Classify(round, now),
			Action: lifecycle.PermittedAction(round, now),
		}
		if entry.Status == lifecycle.StatusCurrent {
			left := lifecycle.TimeLeft(round.FinishTime, now)
			entry.TimeLeft = &left
		}
		board.Rounds = append(board.Rounds, entry)
	}
	return board, nil
}

// Refresh takes a new snapshot and publishes it to the tournament's
// subscribers. Concurrent refreshes of one tournament share a fetch.
func (b *RoundBoard) Refresh(ctx context.Context, communityID, tournamentID int64) (Board, error) {
	key := boardKey(communityID, tournamentID)
	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		board, err := b.Snapshot(ctx, communityID, tournamentID)
		if err != nil {
			return Board{}, err
		}
		b.broadcast(key, board)
		return board, nil
	})
	if err != nil {
		return Board{}, err
	}
	return result.(Board), nil
}

// Watch refreshes every interval until ctx is done. Fetch failures are
// passed to onError and do not stop the loop.
func (b *RoundBoard) Watch(ctx context.Context, communityID, tournamentID int64, every time.Duration, onError func(error)) {
	refresh := func() {
		if _, err := b.Refresh(ctx, communityID, tournamentID); err != nil && ctx.Err() == nil {
			b.log.WithError(err).WithField("tournament_id", tournamentID).Warn("board refresh failed")
			if onError != nil {
				onError(err)
			}
		}
	}
	refresh()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// Subscribe returns a channel receiving every published board of a
// tournament. The caller must invoke the returned cancel function.
func (b *RoundBoard) Subscribe(communityID, tournamentID int64) (<-chan Board, func()) {
	key := boardKey(communityID, tournamentID)
	ch := make(chan Board, 1)

	b.mu.Lock()
	subs, ok := b.subscribers[key]
	if !ok {
		subs = make(map[chan Board]struct{})
		b.subscribers[key] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[key]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(b.subscribers, key)
		}
	}
	return ch, cancel
}

func (b *RoundBoard) broadcast(key string, board Board) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[key] {
		select {
		case ch <- board:
		default:
			// slow subscriber: replace the stale board with the latest
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
}
