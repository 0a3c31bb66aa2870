package api

import (
	"context"
	"fmt"

	"quizzz-client/internal/domain"
)

func playPath(communityID, roundID int64, action string) string {
	return fmt.Sprintf("/api/communities/%d/play/%d/%s/", communityID, roundID, action)
}

// StartRound starts the server clock (if not started yet) and returns the
// quiz to play, without correctness flags.
func (c *Client) StartRound(ctx context.Context, communityID, roundID int64) (domain.PlayQuiz, error) {
	var out domain.PlayQuiz
	err := c.post(ctx, playPath(communityID, roundID, "start"), nil, &out)
	return out, err
}

// SubmitRound stops the server clock and submits the answers.
func (c *Client) SubmitRound(ctx context.Context, communityID, roundID int64, in domain.PlaySubmission) (domain.Play, error) {
	var out domain.Play
	err := c.post(ctx, playPath(communityID, roundID, "submit"), in, &out)
	return out, err
}

// ReviewRound fetches the viewer's play with the quiz and its correct options.
func (c *Client) ReviewRound(ctx context.Context, communityID, roundID int64) (domain.Play, error) {
	var out domain.Play
	err := c.get(ctx, playPath(communityID, roundID, "review"), &out)
	return out, err
}
