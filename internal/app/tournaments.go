package app

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"quizzz-client/internal/domain"
	"quizzz-client/internal/submit"
)

// TournamentService manages a community's tournaments.
type TournamentService struct {
	backend TournamentBackend
	log     logrus.FieldLogger
	form    *submit.Coordinator[domain.Tournament]
}

func NewTournamentService(backend TournamentBackend, log logrus.FieldLogger, timeout time.Duration) *TournamentService {
	return &TournamentService{
		backend: backend,
		log:     log,
		form:    submit.New[domain.Tournament](submit.WithTimeout(timeout)),
	}
}

// FormState reports the outcome of the last create or update.
func (s *TournamentService) FormState() submit.Snapshot[domain.Tournament] {
	return s.form.Snapshot()
}

func (s *TournamentService) List(ctx context.Context, communityID int64) ([]domain.Tournament, error) {
	return s.backend.ListTournaments(ctx, communityID)
}

func (s *TournamentService) Create(ctx context.Context, communityID int64, in domain.TournamentInput) (domain.Tournament, error) {
	return s.submit(ctx, in, func(ctx context.Context) (domain.Tournament, error) {
		return s.backend.CreateTournament(ctx, communityID, in)
	})
}

func (s *TournamentService) Update(ctx context.Context, communityID, tournamentID int64, in domain.TournamentInput) (domain.Tournament, error) {
	return s.submit(ctx, in, func(ctx context.Context) (domain.Tournament, error) {
		return s.backend.UpdateTournament(ctx, communityID, tournamentID, in)
	})
}

func (s *TournamentService) Delete(ctx context.Context, communityID, tournamentID int64) error {
	return s.backend.DeleteTournament(ctx, communityID, tournamentID)
}

// Standings returns the tournament table, best first.
func (s *TournamentService) Standings(ctx context.Context, communityID, tournamentID int64) ([]domain.Standing, error) {
	standings, err := s.backend.Standings(ctx, communityID, tournamentID)
	if err != nil {
		return nil, err
	}
	sortStandings(standings)
	return standings, nil
}

func sortStandings(standings []domain.Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].User < standings[j].User
	})
}

func (s *TournamentService) submit(ctx context.Context, in domain.TournamentInput, op submit.Operation[domain.Tournament]) (domain.Tournament, error) {
	invalid := checkInput(in)
	var out domain.Tournament
	err := s.form.Submit(ctx, func(ctx context.Context) (domain.Tournament, error) {
		if invalid != nil {
			return domain.Tournament{}, invalid
		}
		return op(ctx)
	}, func(t domain.Tournament) {
		out = t
	})
	if err != nil {
		s.log.WithError(err).Warn("tournament submit failed")
		return domain.Tournament{}, err
	}
	return out, nil
}
