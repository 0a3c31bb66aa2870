package app

import (
	"context"

	"quizzz-client/internal/domain"
)

// SessionRepository abstracts where draft and play sessions are kept
// between invocations (memory, file, Redis, Postgres).
type SessionRepository interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// QuizRepository loads quiz content through a cache.
type QuizRepository interface {
	GetQuiz(ctx context.Context, communityID, quizID int64) (domain.Quiz, error)
	Invalidate(ctx context.Context, communityID, quizID int64)
}

// QuizBackend is the part of the REST API that edits quizzes.
type QuizBackend interface {
	ListQuizzes(ctx context.Context, communityID int64) ([]domain.Quiz, error)
	CreateQuiz(ctx context.Context, communityID int64, in domain.QuizCreate) (domain.Quiz, error)
	UpdateQuiz(ctx context.Context, communityID, quizID int64, in domain.QuizUpdate) (domain.Quiz, error)
	DeleteQuiz(ctx context.Context, communityID, quizID int64) error
}

// TournamentBackend is the part of the REST API that manages tournaments
// and their rounds.
type TournamentBackend interface {
	ListTournaments(ctx context.Context, communityID int64) ([]domain.Tournament, error)
	CreateTournament(ctx context.Context, communityID int64, in domain.TournamentInput) (domain.Tournament, error)
	UpdateTournament(ctx context.Context, communityID, tournamentID int64, in domain.TournamentInput) (domain.Tournament, error)
	DeleteTournament(ctx context.Context, communityID, tournamentID int64) error
	Standings(ctx context.Context, communityID, tournamentID int64) ([]domain.Standing, error)

	ListRounds(ctx context.Context, communityID, tournamentID int64) ([]domain.Round, error)
	GetRound(ctx context.Context, communityID, roundID int64) (domain.Round, error)
	CreateRound(ctx context.Context, communityID, tournamentID int64, in domain.RoundInput) (domain.Round, error)
	UpdateRound(ctx context.Context, communityID, roundID int64, in domain.RoundInput) (domain.Round, error)
	DeleteRound(ctx context.Context, communityID, roundID int64) error
	QuizPool(ctx context.Context, communityID int64) ([]domain.Quiz, error)
}

// PlayBackend is the part of the REST API used to play rounds.
type PlayBackend interface {
	GetRound(ctx context.Context, communityID, roundID int64) (domain.Round, error)
	StartRound(ctx context.Context, communityID, roundID int64) (domain.PlayQuiz, error)
	SubmitRound(ctx context.Context, communityID, roundID int64, in domain.PlaySubmission) (domain.Play, error)
	ReviewRound(ctx context.Context, communityID, roundID int64) (domain.Play, error)
}

// BoardBackend is what the round board polls.
type BoardBackend interface {
	ListRounds(ctx context.Context, communityID, tournamentID int64) ([]domain.Round, error)
	Standings(ctx context.Context, communityID, tournamentID int64) ([]domain.Standing, error)
}

// CommunityBackend is the part of the REST API that manages memberships.
type CommunityBackend interface {
	UserCommunities(ctx context.Context, userID int64) ([]domain.Membership, error)
	CreateCommunity(ctx context.Context, in domain.CommunityCreate) (domain.Membership, error)
	JoinCommunity(ctx context.Context, in domain.JoinCommunity) (domain.Membership, error)
	LeaveCommunity(ctx context.Context, communityID, userID int64) error
}
