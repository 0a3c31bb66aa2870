package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// QuestionID identifies a question within the backend.
type QuestionID int64

// OptionID identifies a question option within the backend.
type OptionID int64

// Author is the owner of a quiz or chat message. The backend sends either a
// bare user id or a nested user object depending on the endpoint.
type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

func (a *Author) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] != '{' {
		return json.Unmarshal(data, &a.ID)
	}
	type plain Author
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Author(p)
	return nil
}

// Option is a possible answer for a question.
type Option struct {
	ID        OptionID `json:"id"`
	Text      string   `json:"text"`
	IsCorrect bool     `json:"is_correct"`
}

// Question models a multiple choice question with an ordered set of options.
type Question struct {
	ID          QuestionID `json:"id"`
	Text        string     `json:"text"`
	Explanation string     `json:"explanation"`
	Options     []Option   `json:"options"`
}

// Quiz is a set of questions authored for a community.
type Quiz struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Introduction string     `json:"introduction"`
	IsFinalized  bool       `json:"is_finalized"`
	TimeCreated  time.Time  `json:"time_created"`
	TimeUpdated  time.Time  `json:"time_updated"`
	User         *Author    `json:"user,omitempty"`
	Questions    []Question `json:"questions,omitempty"`
}

// QuizCreate is the payload to create an empty quiz.
type QuizCreate struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// QuizUpdate is the payload to update a quiz together with its questions and options.
type QuizUpdate struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Introduction string     `json:"introduction"`
	IsFinalized  bool       `json:"is_finalized"`
	Questions    []Question `json:"questions"`
}

// Tournament groups rounds inside a community.
type Tournament struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	Community   int64     `json:"community"`
	TimeCreated time.Time `json:"time_created"`
}

// TournamentInput is the payload to create or update a tournament.
type TournamentInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	IsActive bool   `json:"is_active"`
}

// Round is a scheduled playing of a finalized quiz within a tournament.
type Round struct {
	ID                  int64     `json:"id"`
	StartTime           time.Time `json:"start_time"`
	FinishTime          time.Time `json:"finish_time"`
	Tournament          int64     `json:"tournament"`
	Quiz                Quiz      `json:"quiz"`
	Status              string    `json:"status,omitempty"`
	UserPlayID          *int64    `json:"user_play_id"`
	UserPlayIsSubmitted bool      `json:"user_play_is_submitted"`
	IsAuthor            bool      `json:"is_author"`
}

// HasPlayed reports whether the viewer has submitted a play for this round.
func (r Round) HasPlayed() bool {
	return r.UserPlayID != nil && r.UserPlayIsSubmitted
}

// HasStartedPlay reports whether the viewer started a play that is not submitted yet.
func (r Round) HasStartedPlay() bool {
	return r.UserPlayID != nil && !r.UserPlayIsSubmitted
}

// RoundInput is the payload to create or update a round.
type RoundInput struct {
	StartTime  time.Time `json:"start_time" validate:"required"`
	FinishTime time.Time `json:"finish_time" validate:"required,gtfield=StartTime"`
	Quiz       int64     `json:"quiz" validate:"required,gt=0"`
}

// Standing is one row of tournament standings.
type Standing struct {
	UserID         int64   `json:"user_id"`
	User           string  `json:"user"`
	Points         float64 `json:"points"`
	Rounds         int     `json:"rounds"`
	PointsPlayed   float64 `json:"points_played"`
	PointsAuthored float64 `json:"points_authored"`
	RoundsPlayed   int     `json:"rounds_played"`
	RoundsAuthored int     `json:"rounds_authored"`
}

// PlayOption is an option as shown while playing (correctness is not disclosed).
type PlayOption struct {
	ID   OptionID `json:"id"`
	Text string   `json:"text"`
}

// PlayQuestion is a question as shown while playing.
type PlayQuestion struct {
	ID      QuestionID   `json:"id"`
	Text    string       `json:"text"`
	Options []PlayOption `json:"options"`
}

// PlayQuiz is the quiz returned when a round is started.
type PlayQuiz struct {
	Name         string         `json:"name"`
	Introduction string         `json:"introduction"`
	Questions    []PlayQuestion `json:"questions"`
}

// Answer is a single selected option.
type Answer struct {
	QuestionID QuestionID `json:"question_id"`
	OptionID   OptionID   `json:"option_id"`
}

// PlaySubmission carries the answers for a round. Client times are used for
// elapsed-time display only.
type PlaySubmission struct {
	ClientStartTime  time.Time `json:"client_start_time"`
	ClientFinishTime time.Time `json:"client_finish_time"`
	Answers          []Answer  `json:"answers"`
}

// Play is a user's submitted answers for a round, with results when reviewed.
type Play struct {
	Round            int64      `json:"round,omitempty"`
	Result           int        `json:"result"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	FinishTime       *time.Time `json:"finish_time,omitempty"`
	ClientStartTime  time.Time  `json:"client_start_time"`
	ClientFinishTime time.Time  `json:"client_finish_time"`
	Answers          []Answer   `json:"answers"`
	Quiz             *Quiz      `json:"quiz,omitempty"`
	Author           *Author    `json:"author,omitempty"`
}

// ClientElapsed is the play duration as reported by the client clock.
func (p Play) ClientElapsed() time.Duration {
	if p.ClientStartTime.IsZero() || p.ClientFinishTime.IsZero() {
		return 0
	}
	return p.ClientFinishTime.Sub(p.ClientStartTime)
}

// ChatMessage is a community chat entry.
type ChatMessage struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	User        Author    `json:"user"`
	TimeCreated time.Time `json:"time_created"`
}

// ChatPage is one page of community chat messages.
type ChatPage struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []ChatMessage `json:"results"`
}

// Community is a group of users sharing quizzes, tournaments and a chat.
type Community struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Password         string    `json:"password,omitempty"`
	ApprovalRequired bool      `json:"approval_required"`
	MaxMembers       int       `json:"max_members"`
	TimeCreated      time.Time `json:"time_created"`
}

// Membership links a user to a community.
type Membership struct {
	User        int64     `json:"user"`
	Community   Community `json:"community"`
	IsAdmin     bool      `json:"is_admin"`
	IsApproved  bool      `json:"is_approved"`
	TimeCreated time.Time `json:"time_created"`
}

// CommunityCreate is the payload to create a community. The creator
// becomes its admin.
type CommunityCreate struct {
	Name             string `json:"name" validate:"required,max=100"`
	Password         string `json:"password" validate:"max=20"`
	ApprovalRequired bool   `json:"approval_required"`
	MaxMembers       int    `json:"max_members,omitempty" validate:"omitempty,gt=0"`
}

// JoinCommunity is the payload to join an existing community.
type JoinCommunity struct {
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"max=20"`
}
