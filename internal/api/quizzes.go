package api

import (
	"context"
	"fmt"

	"quizzz-client/internal/domain"
)

func quizzesPath(communityID int64) string {
	return fmt.Sprintf("/api/communities/%d/quizzes/", communityID)
}

func quizPath(communityID, quizID int64) string {
	return fmt.Sprintf("/api/communities/%d/quizzes/%d/", communityID, quizID)
}

// ListQuizzes returns the quizzes the current user authored in a community.
func (c *Client) ListQuizzes(ctx context.Context, communityID int64) ([]domain.Quiz, error) {
	var out []domain.Quiz
	if err := c.get(ctx, quizzesPath(communityID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateQuiz creates an empty quiz; the backend initializes its questions.
func (c *Client) CreateQuiz(ctx context.Context, communityID int64, in domain.QuizCreate) (domain.Quiz, error) {
	var out domain.Quiz
	err := c.post(ctx, quizzesPath(communityID), in, &out)
	return out, err
}

// GetQuiz fetches a quiz with nested questions and options.
func (c *Client) GetQuiz(ctx context.Context, communityID, quizID int64) (domain.Quiz, error) {
	var out domain.Quiz
	err := c.get(ctx, quizPath(communityID, quizID), &out)
	return out, err
}

// UpdateQuiz replaces a quiz's editable fields, questions and options.
func (c *Client) UpdateQuiz(ctx context.Context, communityID, quizID int64, in domain.QuizUpdate) (domain.Quiz, error) {
	var out domain.Quiz
	err := c.put(ctx, quizPath(communityID, quizID), in, &out)
	return out, err
}

// DeleteQuiz deletes a quiz.
func (c *Client) DeleteQuiz(ctx context.Context, communityID, quizID int64) error {
	return c.delete(ctx, quizPath(communityID, quizID))
}
