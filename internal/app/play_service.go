package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"quizzz-client/internal/domain"
	"quizzz-client/internal/lifecycle"
	"quizzz-client/internal/submit"
)

// PlaySession is a started, not yet submitted play of a round.
type PlaySession struct {
	CommunityID     int64                                  `json:"community_id"`
	RoundID         int64                                  `json:"round_id"`
	Quiz            domain.PlayQuiz                        `json:"quiz"`
	ClientStartTime time.Time                              `json:"client_start_time"`
	Answers         map[domain.QuestionID]domain.OptionID `json:"answers"`
}

// Submission builds the payload with answers in quiz question order.
// Unanswered questions are left out.
func (p *PlaySession) Submission(finish time.Time) domain.PlaySubmission {
	answers := make([]domain.Answer, 0, len(p.Answers))
	for _, q := range p.Quiz.Questions {
		if opt, ok := p.Answers[q.ID]; ok {
			answers = append(answers, domain.Answer{QuestionID: q.ID, OptionID: opt})
		}
	}
	return domain.PlaySubmission{
		ClientStartTime:  p.ClientStartTime,
		ClientFinishTime: finish,
		Answers:          answers,
	}
}

// ReviewItem is one question of a reviewed play.
type ReviewItem struct {
	QuestionID  domain.QuestionID `json:"question_id"`
	Text        string            `json:"text"`
	Explanation string            `json:"explanation,omitempty"`
	Chosen      *domain.OptionID  `json:"chosen,omitempty"`
	Correct     *domain.OptionID  `json:"correct,omitempty"`
	IsCorrect   bool              `json:"is_correct"`
}

// Review is a submitted play with per-question results.
type Review struct {
	Play      domain.Play   `json:"play"`
	Items     []ReviewItem  `json:"items"`
	Result    int           `json:"result"`
	Questions int           `json:"questions"`
	Elapsed   time.Duration `json:"elapsed"`
}

// PlayService contains the round playing use cases.
type PlayService struct {
	backend  PlayBackend
	sessions SessionRepository
	log      logrus.FieldLogger
	now      func() time.Time
	submit   *submit.Coordinator[domain.Play]
}

func NewPlayService(backend PlayBackend, sessions SessionRepository, log logrus.FieldLogger, timeout time.Duration) *PlayService {
	return NewPlayServiceWithClock(backend, sessions, log, timeout, time.Now)
}

// NewPlayServiceWithClock is used by tests to pin the current time.
func NewPlayServiceWithClock(backend PlayBackend, sessions SessionRepository, log logrus.FieldLogger, timeout time.Duration, now func() time.Time) *PlayService {
	return &PlayService{
		backend:  backend,
		sessions: sessions,
		log:      log,
		now:      now,
		submit: submit.New[domain.Play](
			submit.WithTimeout(timeout),
			submit.WithObserver(func(from, to submit.State) {
				log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("play submit state")
			}),
		),
	}
}

// SubmitState reports the outcome of the last submission.
func (s *PlayService) SubmitState() submit.Snapshot[domain.Play] {
	return s.submit.Snapshot()
}

func playKey(roundID int64) string {
	return fmt.Sprintf("play:%d", roundID)
}

// Start checks that the viewer may play the round now, starts the server
// clock and records the client start time.
func (s *PlayService) Start(ctx context.Context, communityID, roundID int64) (*PlaySession, error) {
	round, err := s.backend.GetRound(ctx, communityID, roundID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateWindow(round.StartTime, round.FinishTime); err != nil {
		return nil, fmt.Errorf("round %d: %w", roundID, err)
	}
	now := s.now()
	if action := lifecycle.PermittedAction(round, now); action != lifecycle.ActionPlay {
		return nil, fmt.Errorf("round %d is %s (action %s): %w", roundID, lifecycle.Classify(round, now), action, domain.ErrRoundNotPlayable)
	}

	quiz, err := s.backend.StartRound(ctx, communityID, roundID)
	if err != nil {
		return nil, err
	}
	session := &PlaySession{
		CommunityID:     communityID,
		RoundID:         roundID,
		Quiz:            quiz,
		ClientStartTime: now,
		Answers:         make(map[domain.QuestionID]domain.OptionID),
	}
	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"round_id": roundID, "questions": len(quiz.Questions)}).Info("play started")
	return session, nil
}

// Open restores a started play.
func (s *PlayService) Open(ctx context.Context, roundID int64) (*PlaySession, error) {
	data, err := s.sessions.Load(ctx, playKey(roundID))
	if err != nil {
		return nil, err
	}
	var session PlaySession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode play %d: %w", roundID, err)
	}
	if session.Answers == nil {
		session.Answers = make(map[domain.QuestionID]domain.OptionID)
	}
	return &session, nil
}

// Choose selects an option for a question of the started quiz.
func (s *PlayService) Choose(ctx context.Context, session *PlaySession, questionID domain.QuestionID, optionID domain.OptionID) error {
	question, ok := findPlayQuestion(session.Quiz, questionID)
	if !ok {
		return fmt.Errorf("question %d: %w", questionID, domain.ErrQuestionNotFound)
	}
	found := false
	for _, opt := range question.Options {
		if opt.ID == optionID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("option %d of question %d: %w", optionID, questionID, domain.ErrOptionNotFound)
	}
	session.Answers[questionID] = optionID
	return s.persist(ctx, session)
}

// Submit sends the answers. The saved play is dropped once accepted.
func (s *PlayService) Submit(ctx context.Context, session *PlaySession) (domain.Play, error) {
	payload := session.Submission(s.now())
	var play domain.Play
	err := s.submit.Submit(ctx, func(ctx context.Context) (domain.Play, error) {
		return s.backend.SubmitRound(ctx, session.CommunityID, session.RoundID, payload)
	}, func(p domain.Play) {
		play = p
	})
	if err != nil {
		s.log.WithError(err).WithField("round_id", session.RoundID).Warn("play submit failed")
		return domain.Play{}, err
	}
	if err := s.sessions.Delete(ctx, playKey(session.RoundID)); err != nil {
		s.log.WithError(err).WithField("round_id", session.RoundID).Warn("drop play session failed")
	}
	return play, nil
}

// Review fetches a submitted play (or the author's view) and lines up the
// chosen and correct option of every question.
func (s *PlayService) Review(ctx context.Context, communityID, roundID int64) (Review, error) {
	play, err := s.backend.ReviewRound(ctx, communityID, roundID)
	if err != nil {
		return Review{}, err
	}
	return buildReview(play), nil
}

func buildReview(play domain.Play) Review {
	review := Review{
		Play:    play,
		Result:  play.Result,
		Elapsed: play.ClientElapsed(),
	}
	if play.Quiz == nil {
		return review
	}
	chosen := make(map[domain.QuestionID]domain.OptionID, len(play.Answers))
	for _, a := range play.Answers {
		chosen[a.QuestionID] = a.OptionID
	}
	for _, q := range play.Quiz.Questions {
		item := ReviewItem{QuestionID: q.ID, Text: q.Text, Explanation: q.Explanation}
		if opt, ok := chosen[q.ID]; ok {
			opt := opt
			item.Chosen = &opt
		}
		for _, o := range q.Options {
			if o.IsCorrect {
				id := o.ID
				item.Correct = &id
			}
		}
		item.IsCorrect = item.Chosen != nil && item.Correct != nil && *item.Chosen == *item.Correct
		review.Items = append(review.Items, item)
	}
	review.Questions = len(review.Items)
	return review
}

func (s *PlayService) persist(ctx context.Context, session *PlaySession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode play %d: %w", session.RoundID, err)
	}
	return s.sessions.Save(ctx, playKey(session.RoundID), data)
}

func findPlayQuestion(quiz domain.PlayQuiz, id domain.QuestionID) (domain.PlayQuestion, bool) {
	for _, q := range quiz.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.PlayQuestion{}, false
}
