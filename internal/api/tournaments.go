package api

import (
	"context"
	"fmt"

	"quizzz-client/internal/domain"
)

func tournamentsPath(communityID int64) string {
	return fmt.Sprintf("/api/communities/%d/tournaments/", communityID)
}

func tournamentPath(communityID, tournamentID int64) string {
	return fmt.Sprintf("/api/communities/%d/tournaments/%d/", communityID, tournamentID)
}

func roundsPath(communityID, tournamentID int64) string {
	return fmt.Sprintf("/api/communities/%d/tournaments/%d/rounds/", communityID, tournamentID)
}

func roundPath(communityID, roundID int64) string {
	return fmt.Sprintf("/api/communities/%d/tournaments/rounds/%d/", communityID, roundID)
}

// ListTournaments returns a community's tournaments.
func (c *Client) ListTournaments(ctx context.Context, communityID int64) ([]domain.Tournament, error) {
	var out []domain.Tournament
	if err := c.get(ctx, tournamentsPath(communityID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTournament creates a tournament.
func (c *Client) CreateTournament(ctx context.Context, communityID int64, in domain.TournamentInput) (domain.Tournament, error) {
	var out domain.Tournament
	err := c.post(ctx, tournamentsPath(communityID), in, &out)
	return out, err
}

// UpdateTournament renames or (de)activates a tournament.
func (c *Client) UpdateTournament(ctx context.Context, communityID, tournamentID int64, in domain.TournamentInput) (domain.Tournament, error) {
	var out domain.Tournament
	err := c.put(ctx, tournamentPath(communityID, tournamentID), in, &out)
	return out, err
}

// DeleteTournament deletes a tournament and its rounds.
func (c *Client) DeleteTournament(ctx context.Context, communityID, tournamentID int64) error {
	return c.delete(ctx, tournamentPath(communityID, tournamentID))
}

// Standings returns the tournament standings, best first.
func (c *Client) Standings(ctx context.Context, communityID, tournamentID int64) ([]domain.Standing, error) {
	var out []domain.Standing
	path := fmt.Sprintf("/api/communities/%d/tournaments/%d/standings/", communityID, tournamentID)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRounds returns the rounds of a tournament as seen by the current user.
func (c *Client) ListRounds(ctx context.Context, communityID, tournamentID int64) ([]domain.Round, error) {
	var out []domain.Round
	if err := c.get(ctx, roundsPath(communityID, tournamentID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRound fetches one round.
func (c *Client) GetRound(ctx context.Context, communityID, roundID int64) (domain.Round, error) {
	var out domain.Round
	err := c.get(ctx, roundPath(communityID, roundID), &out)
	return out, err
}

// CreateRound schedules a finalized quiz in a tournament.
func (c *Client) CreateRound(ctx context.Context, communityID, tournamentID int64, in domain.RoundInput) (domain.Round, error) {
	var out domain.Round
	err := c.post(ctx, roundsPath(communityID, tournamentID), in, &out)
	return out, err
}

// UpdateRound changes a round's window or quiz.
func (c *Client) UpdateRound(ctx context.Context, communityID, roundID int64, in domain.RoundInput) (domain.Round, error) {
	var out domain.Round
	err := c.put(ctx, roundPath(communityID, roundID), in, &out)
	return out, err
}

// DeleteRound deletes a round.
func (c *Client) DeleteRound(ctx context.Context, communityID, roundID int64) error {
	return c.delete(ctx, roundPath(communityID, roundID))
}

// QuizPool lists finalized quizzes of a community not yet attached to a round.
func (c *Client) QuizPool(ctx context.Context, communityID int64) ([]domain.Quiz, error) {
	var out []domain.Quiz
	path := fmt.Sprintf("/api/communities/%d/tournaments/quiz-pool/", communityID)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
