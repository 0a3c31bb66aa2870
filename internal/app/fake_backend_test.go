package app_test

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"quizzz-client/internal/api"
	"quizzz-client/internal/domain"
)

// fakeBackend is an in-memory stand-in for the REST API.
type fakeBackend struct {
	mu sync.Mutex

	quizzes     map[int64]domain.Quiz
	rounds      map[int64]domain.Round
	standings   []domain.Standing
	tournaments map[int64]domain.Tournament
	playQuiz    domain.PlayQuiz
	review      domain.Play

	updates     []domain.QuizUpdate
	roundInputs []domain.RoundInput
	submissions []domain.PlaySubmission
	started     int
	deleted     []int64

	updateErr error
	roundsErr error
	block     chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		quizzes:     make(map[int64]domain.Quiz),
		rounds:      make(map[int64]domain.Round),
		tournaments: make(map[int64]domain.Tournament),
	}
}

func (f *fakeBackend) ListQuizzes(context.Context, int64) ([]domain.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Quiz, 0, len(f.quizzes))
	for _, q := range f.quizzes {
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeBackend) CreateQuiz(_ context.Context, _ int64, in domain.QuizCreate) (domain.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.quizzes) + 1)
	quiz := domain.Quiz{ID: id, Name: in.Name, Description: in.Description}
	f.quizzes[id] = quiz
	return quiz, nil
}

func (f *fakeBackend) GetQuiz(_ context.Context, _ int64, quizID int64) (domain.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	quiz, ok := f.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, &api.APIError{Status: 404, Message: "Not found."}
	}
	return quiz, nil
}

func (f *fakeBackend) UpdateQuiz(ctx context.Context, _ int64, quizID int64, in domain.QuizUpdate) (domain.Quiz, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return domain.Quiz{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return domain.Quiz{}, f.updateErr
	}
	quiz := f.quizzes[quizID]
	quiz.Name = in.Name
	quiz.Description = in.Description
	quiz.Introduction = in.Introduction
	quiz.IsFinalized = in.IsFinalized
	quiz.Questions = in.Questions
	f.quizzes[quizID] = quiz
	return quiz, nil
}

func (f *fakeBackend) DeleteQuiz(_ context.Context, _ int64, quizID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.quizzes, quizID)
	f.deleted = append(f.deleted, quizID)
	return nil
}

func (f *fakeBackend) ListTournaments(context.Context, int64) ([]domain.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Tournament, 0, len(f.tournaments))
	for _, t := range f.tournaments {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeBackend) CreateTournament(_ context.Context, communityID int64, in domain.TournamentInput) (domain.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.tournaments) + 1)
	t := domain.Tournament{ID: id, Name: in.Name, IsActive: in.IsActive, Community: communityID}
	f.tournaments[id] = t
	return t, nil
}

func (f *fakeBackend) UpdateTournament(_ context.Context, communityID, tournamentID int64, in domain.TournamentInput) (domain.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := domain.Tournament{ID: tournamentID, Name: in.Name, IsActive: in.IsActive, Community: communityID}
	f.tournaments[tournamentID] = t
	return t, nil
}

func (f *fakeBackend) DeleteTournament(_ context.Context, _ int64, tournamentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tournaments, tournamentID)
	return nil
}

func (f *fakeBackend) Standings(context.Context, int64, int64) ([]domain.Standing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Standing(nil), f.standings...), nil
}

func (f *fakeBackend) ListRounds(context.Context, int64, int64) ([]domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roundsErr != nil {
		return nil, f.roundsErr
	}
	out := make([]domain.Round, 0, len(f.rounds))
	for id := int64(1); id <= int64(len(f.rounds)); id++ {
		if r, ok := f.rounds[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBackend) GetRound(_ context.Context, _ int64, roundID int64) (domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[roundID]
	if !ok {
		return domain.Round{}, &api.APIError{Status: 404, Message: "Not found."}
	}
	return r, nil
}

func (f *fakeBackend) CreateRound(_ context.Context, _ int64, tournamentID int64, in domain.RoundInput) (domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roundInputs = append(f.roundInputs, in)
	id := int64(len(f.rounds) + 1)
	r := domain.Round{ID: id, StartTime: in.StartTime, FinishTime: in.FinishTime, Tournament: tournamentID, Quiz: domain.Quiz{ID: in.Quiz}}
	f.rounds[id] = r
	return r, nil
}

func (f *fakeBackend) UpdateRound(_ context.Context, _ int64, roundID int64, in domain.RoundInput) (domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roundInputs = append(f.roundInputs, in)
	r := f.rounds[roundID]
	r.StartTime, r.FinishTime, r.Quiz = in.StartTime, in.FinishTime, domain.Quiz{ID: in.Quiz}
	f.rounds[roundID] = r
	return r, nil
}

func (f *fakeBackend) DeleteRound(_ context.Context, _ int64, roundID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rounds, roundID)
	f.deleted = append(f.deleted, roundID)
	return nil
}

func (f *fakeBackend) QuizPool(context.Context, int64) ([]domain.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Quiz
	for _, q := range f.quizzes {
		if q.IsFinalized {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeBackend) StartRound(context.Context, int64, int64) (domain.PlayQuiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	return f.playQuiz, nil
}

func (f *fakeBackend) SubmitRound(_ context.Context, _ int64, roundID int64, in domain.PlaySubmission) (domain.Play, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, in)
	return domain.Play{Round: roundID, Answers: in.Answers, ClientStartTime: in.ClientStartTime, ClientFinishTime: in.ClientFinishTime}, nil
}

func (f *fakeBackend) ReviewRound(context.Context, int64, int64) (domain.Play, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.review, nil
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
