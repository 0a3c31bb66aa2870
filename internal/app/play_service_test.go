package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizzz-client/internal/app"
	"quizzz-client/internal/domain"
	"quizzz-client/internal/infra/memory"
)

func TestPlayFlow(t *testing.T) {
	ctx := context.Background()
	backend := playableBackend()
	sessions := memory.NewSessionStore()
	clock := boardNow
	service := app.NewPlayServiceWithClock(backend, sessions, quietLogger(), time.Second, func() time.Time { return clock })

	session, err := service.Start(ctx, 1, 4)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !session.ClientStartTime.Equal(boardNow) {
		t.Fatalf("unexpected client start time %s", session.ClientStartTime)
	}

	// answer out of order; the payload follows the quiz order
	reopened, err := service.Open(ctx, 4)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	mustNoErr(t, service.Choose(ctx, reopened, 3, 31))
	mustNoErr(t, service.Choose(ctx, reopened, 1, 12))
	if err := service.Choose(ctx, reopened, 1, 31); !errors.Is(err, domain.ErrOptionNotFound) {
		t.Fatalf("expected ErrOptionNotFound, got %v", err)
	}
	if err := service.Choose(ctx, reopened, 9, 91); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}

	clock = boardNow.Add(90 * time.Second)
	play, err := service.Submit(ctx, reopened)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	sent := backend.submissions[0]
	if len(sent.Answers) != 2 || sent.Answers[0].QuestionID != 1 || sent.Answers[1].QuestionID != 3 {
		t.Fatalf("unexpected answers %+v", sent.Answers)
	}
	if play.ClientElapsed() != 90*time.Second {
		t.Fatalf("unexpected elapsed %s", play.ClientElapsed())
	}
	if _, err := service.Open(ctx, 4); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected play session dropped after submit, got %v", err)
	}
}

func TestStartRefusesRoundsThatAreNotPlayable(t *testing.T) {
	ctx := context.Background()
	playID := int64(5)
	cases := map[string]domain.Round{
		"coming":   {ID: 4, StartTime: boardNow.Add(time.Hour), FinishTime: boardNow.Add(2 * time.Hour)},
		"finished": {ID: 4, StartTime: boardNow.Add(-2 * time.Hour), FinishTime: boardNow},
		"author":   {ID: 4, StartTime: boardNow.Add(-time.Hour), FinishTime: boardNow.Add(time.Hour), IsAuthor: true},
		"played": {ID: 4, StartTime: boardNow.Add(-time.Hour), FinishTime: boardNow.Add(time.Hour),
			UserPlayID: &playID, UserPlayIsSubmitted: true},
	}
	for name, round := range cases {
		backend := playableBackend()
		backend.rounds[4] = round
		service := app.NewPlayServiceWithClock(backend, memory.NewSessionStore(), quietLogger(), time.Second, fixedClock(boardNow))
		if _, err := service.Start(ctx, 1, 4); !errors.Is(err, domain.ErrRoundNotPlayable) {
			t.Fatalf("%s: expected ErrRoundNotPlayable, got %v", name, err)
		}
		if backend.started != 0 {
			t.Fatalf("%s: round must not be started", name)
		}
	}
}

func TestReviewLinesUpAnswers(t *testing.T) {
	backend := playableBackend()
	start := boardNow
	finish := boardNow.Add(2 * time.Minute)
	backend.review = domain.Play{
		Round:            4,
		Result:           1,
		ClientStartTime:  start,
		ClientFinishTime: finish,
		Answers: []domain.Answer{
			{QuestionID: 1, OptionID: 12},
			{QuestionID: 3, OptionID: 32},
		},
		Quiz: &domain.Quiz{Questions: []domain.Question{
			{ID: 1, Text: "a", Options: []domain.Option{{ID: 11}, {ID: 12, IsCorrect: true}}},
			{ID: 2, Text: "b", Options: []domain.Option{{ID: 21, IsCorrect: true}, {ID: 22}}},
			{ID: 3, Text: "c", Options: []domain.Option{{ID: 31, IsCorrect: true}, {ID: 32}}},
		}},
	}
	service := app.NewPlayServiceWithClock(backend, memory.NewSessionStore(), quietLogger(), time.Second, fixedClock(boardNow))

	review, err := service.Review(context.Background(), 1, 4)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if review.Questions != 3 || review.Result != 1 || review.Elapsed != 2*time.Minute {
		t.Fatalf("unexpected summary %+v", review)
	}
	if !review.Items[0].IsCorrect || review.Items[1].Chosen != nil || review.Items[2].IsCorrect {
		t.Fatalf("unexpected items %+v", review.Items)
	}
	if *review.Items[2].Correct != 31 {
		t.Fatalf("expected correct option 31, got %d", *review.Items[2].Correct)
	}
}

func playableBackend() *fakeBackend {
	backend := newFakeBackend()
	backend.rounds[4] = domain.Round{ID: 4, StartTime: boardNow.Add(-time.Hour), FinishTime: boardNow.Add(time.Hour)}
	backend.playQuiz = domain.PlayQuiz{
		Name: "Arithmetic",
		Questions: []domain.PlayQuestion{
			{ID: 1, Text: "a", Options: []domain.PlayOption{{ID: 11}, {ID: 12}}},
			{ID: 2, Text: "b", Options: []domain.PlayOption{{ID: 21}, {ID: 22}}},
			{ID: 3, Text: "c", Options: []domain.PlayOption{{ID: 31}, {ID: 32}}},
		},
	}
	return backend
}
