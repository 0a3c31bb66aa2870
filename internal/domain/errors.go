package domain

import "errors"

var (
	// ErrNotFound is matched by backend errors with a 404 status.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound is returned when no saved editing or play session exists.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuizFinalized is returned when editing a quiz that was submitted to the pool.
	ErrQuizFinalized = errors.New("quiz is finalized and read-only")
	// ErrInvalidWindow indicates a round whose finish time is not after its start time.
	ErrInvalidWindow = errors.New("round finish time must be after start time")
	// ErrRoundFinished is returned when editing a round whose window has closed.
	ErrRoundFinished = errors.New("round is finished")
	// ErrRoundNotPlayable is returned when the viewer may not play a round right now.
	ErrRoundNotPlayable = errors.New("round cannot be played")
	// ErrQuestionNotFound indicates a question ID that is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates an option ID that is not part of the question.
	ErrOptionNotFound = errors.New("option not found")
)
