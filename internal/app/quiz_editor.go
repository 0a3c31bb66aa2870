package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"quizzz-client/internal/domain"
	"quizzz-client/internal/draft"
	"quizzz-client/internal/submit"
)

// Draft is an editing session for one quiz: the quiz header plus a
// normalized draft of its questions. Saves go through a coordinator so at
// most one is in flight and its errors are retained for display.
type Draft struct {
	CommunityID  int64
	QuizID       int64
	Name         string
	Description  string
	Introduction string
	IsFinalized  bool

	Store *draft.Store
	saver *submit.Coordinator[domain.Quiz]
}

// SaveState reports the outcome of the last save.
func (d *Draft) SaveState() submit.Snapshot[domain.Quiz] {
	return d.saver.Snapshot()
}

func (d *Draft) apply(quiz domain.Quiz) {
	d.Name = quiz.Name
	d.Description = quiz.Description
	d.Introduction = quiz.Introduction
	d.IsFinalized = quiz.IsFinalized
	d.Store.InitFromWire(quiz.Questions)
}

func (d *Draft) payload(finalize bool) domain.QuizUpdate {
	return domain.QuizUpdate{
		Name:         d.Name,
		Description:  d.Description,
		Introduction: d.Introduction,
		IsFinalized:  finalize,
		Questions:    d.Store.ToWireFormat(),
	}
}

// draftRecord is the persisted form of a Draft.
type draftRecord struct {
	CommunityID  int64             `json:"community_id"`
	QuizID       int64             `json:"quiz_id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Introduction string            `json:"introduction"`
	IsFinalized  bool              `json:"is_finalized"`
	Questions    []domain.Question `json:"questions"`
	SavedAt      time.Time         `json:"saved_at"`
}

// QuizEditor contains the quiz authoring use cases.
type QuizEditor struct {
	backend  QuizBackend
	quizzes  QuizRepository
	sessions SessionRepository
	log      logrus.FieldLogger
	timeout  time.Duration
	now      func() time.Time
}

func NewQuizEditor(backend QuizBackend, quizzes QuizRepository, sessions SessionRepository, log logrus.FieldLogger, timeout time.Duration) *QuizEditor {
	return &QuizEditor{
		backend:  backend,
		quizzes:  quizzes,
		sessions: sessions,
		log:      log,
		timeout:  timeout,
		now:      time.Now,
	}
}

func draftKey(quizID int64) string {
	return fmt.Sprintf("draft:%d", quizID)
}

// List returns the viewer's quizzes in a community.
func (e *QuizEditor) List(ctx context.Context, communityID int64) ([]domain.Quiz, error) {
	return e.backend.ListQuizzes(ctx, communityID)
}

// Create makes a new empty quiz.
func (e *QuizEditor) Create(ctx context.Context, communityID int64, in domain.QuizCreate) (domain.Quiz, error) {
	if err := checkInput(in); err != nil {
		return domain.Quiz{}, err
	}
	return e.backend.CreateQuiz(ctx, communityID, in)
}

// Pull fetches a quiz and starts a fresh editing session for it,
// replacing any saved one.
func (e *QuizEditor) Pull(ctx context.Context, communityID, quizID int64) (*Draft, error) {
	e.quizzes.Invalidate(ctx, communityID, quizID)
	quiz, err := e.quizzes.GetQuiz(ctx, communityID, quizID)
	if err != nil {
		return nil, err
	}
	d := e.newDraft(communityID, quizID)
	d.apply(quiz)
	if err := e.Persist(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Open restores a saved editing session. It returns
// domain.ErrSessionNotFound when the quiz was never pulled.
func (e *QuizEditor) Open(ctx context.Context, quizID int64) (*Draft, error) {
	data, err := e.sessions.Load(ctx, draftKey(quizID))
	if err != nil {
		return nil, err
	}
	var rec draftRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode draft %d: %w", quizID, err)
	}
	d := e.newDraft(rec.CommunityID, rec.QuizID)
	d.Name = rec.Name
	d.Description = rec.Description
	d.Introduction = rec.Introduction
	d.IsFinalized = rec.IsFinalized
	d.Store.InitFromWire(rec.Questions)
	return d, nil
}

// OpenOrPull restores the saved session or pulls the quiz when none exists.
func (e *QuizEditor) OpenOrPull(ctx context.Context, communityID, quizID int64) (*Draft, error) {
	d, err := e.Open(ctx, quizID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return e.Pull(ctx, communityID, quizID)
	}
	return d, err
}

// Persist writes the session so later invocations can continue editing.
func (e *QuizEditor) Persist(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(draftRecord{
		CommunityID:  d.CommunityID,
		QuizID:       d.QuizID,
		Name:         d.Name,
		Description:  d.Description,
		Introduction: d.Introduction,
		IsFinalized:  d.IsFinalized,
		Questions:    d.Store.ToWireFormat(),
		SavedAt:      e.now(),
	})
	if err != nil {
		return fmt.Errorf("encode draft %d: %w", d.QuizID, err)
	}
	return e.sessions.Save(ctx, draftKey(d.QuizID), data)
}

// Discard drops the saved session without touching the backend.
func (e *QuizEditor) Discard(ctx context.Context, quizID int64) error {
	return e.sessions.Delete(ctx, draftKey(quizID))
}

// Edit applies fn to a draft that is still editable.
func (e *QuizEditor) Edit(d *Draft, fn func(d *Draft) error) error {
	if d.IsFinalized {
		return domain.ErrQuizFinalized
	}
	return fn(d)
}

// SetName edits the quiz name.
func (e *QuizEditor) SetName(d *Draft, name string) error {
	return e.Edit(d, func(d *Draft) error {
		d.Name = name
		return nil
	})
}

// SetDescription edits the quiz description.
func (e *QuizEditor) SetDescription(d *Draft, description string) error {
	return e.Edit(d, func(d *Draft) error {
		d.Description = description
		return nil
	})
}

// SetIntroduction edits the text shown to players before they start.
func (e *QuizEditor) SetIntroduction(d *Draft, introduction string) error {
	return e.Edit(d, func(d *Draft) error {
		d.Introduction = introduction
		return nil
	})
}

// Filler overwrites draft texts and correct options from an external
// question source.
type Filler interface {
	Fill(ctx context.Context, store *draft.Store) error
}

// Autofill replaces the draft's texts with generated questions.
func (e *QuizEditor) Autofill(ctx context.Context, d *Draft, filler Filler) error {
	if d.IsFinalized {
		return domain.ErrQuizFinalized
	}
	if err := filler.Fill(ctx, d.Store); err != nil {
		return err
	}
	if d.Name == "" {
		d.Name = "Auto Generated"
	}
	if d.Description == "" {
		d.Description = "This quiz was generated with randomly selected questions from the Open Trivia DB"
	}
	return nil
}

// SetQuestionText edits one question's text.
func (e *QuizEditor) SetQuestionText(d *Draft, questionID domain.QuestionID, text string) error {
	return e.Edit(d, func(d *Draft) error {
		if !d.Store.HasQuestion(questionID) {
			return fmt.Errorf("question %d: %w", questionID, domain.ErrQuestionNotFound)
		}
		d.Store.SetQuestionText(questionID, text)
		return nil
	})
}

// SetQuestionExplanation edits one question's explanation.
func (e *QuizEditor) SetQuestionExplanation(d *Draft, questionID domain.QuestionID, explanation string) error {
	return e.Edit(d, func(d *Draft) error {
		if !d.Store.HasQuestion(questionID) {
			return fmt.Errorf("question %d: %w", questionID, domain.ErrQuestionNotFound)
		}
		d.Store.SetQuestionExplanation(questionID, explanation)
		return nil
	})
}

// SetOptionText edits one option's text.
func (e *QuizEditor) SetOptionText(d *Draft, optionID domain.OptionID, text string) error {
	return e.Edit(d, func(d *Draft) error {
		if !d.Store.HasOption(optionID) {
			return fmt.Errorf("option %d: %w", optionID, domain.ErrOptionNotFound)
		}
		d.Store.SetOptionText(optionID, text)
		return nil
	})
}

// SetCorrectOption marks optionID as the only correct option of its
// question.
func (e *QuizEditor) SetCorrectOption(d *Draft, optionID domain.OptionID) error {
	return e.Edit(d, func(d *Draft) error {
		questionID, ok := d.Store.QuestionOf(optionID)
		if !ok {
			return fmt.Errorf("option %d: %w", optionID, domain.ErrOptionNotFound)
		}
		d.Store.SetCorrectOption(optionID, questionID)
		return nil
	})
}

// Validate runs the local pre-flight checks that mirror the backend's.
func (e *QuizEditor) Validate(d *Draft, finalize bool) *submit.FieldErrors {
	fe := d.Store.Validate(finalize)
	if d.Name == "" {
		if fe == nil {
			fe = &submit.FieldErrors{}
		}
		fe.Add("name", "This field is required.")
	}
	return fe
}

// Save pushes the draft to the backend. Local validation failures are
// recorded by the coordinator like backend field errors and nothing is
// sent. On success the draft is rebuilt from the server's response, the
// quiz cache is invalidated and the session persisted.
func (e *QuizEditor) Save(ctx context.Context, d *Draft, finalize bool) error {
	if d.IsFinalized {
		return domain.ErrQuizFinalized
	}
	payload := d.payload(finalize)
	fe := e.Validate(d, finalize)

	var saved domain.Quiz
	err := d.saver.Submit(ctx, func(ctx context.Context) (domain.Quiz, error) {
		if fe != nil {
			return domain.Quiz{}, &submit.ValidationError{Fields: fe}
		}
		return e.backend.UpdateQuiz(ctx, d.CommunityID, d.QuizID, payload)
	}, func(quiz domain.Quiz) {
		saved = quiz
	})
	if err != nil {
		e.log.WithError(err).WithField("quiz_id", d.QuizID).Warn("quiz save failed")
		return err
	}

	d.apply(saved)
	e.quizzes.Invalidate(ctx, d.CommunityID, d.QuizID)
	return e.Persist(ctx, d)
}

// Delete removes the quiz from the backend and drops its session.
func (e *QuizEditor) Delete(ctx context.Context, communityID, quizID int64) error {
	if err := e.backend.DeleteQuiz(ctx, communityID, quizID); err != nil {
		return err
	}
	e.quizzes.Invalidate(ctx, communityID, quizID)
	return e.sessions.Delete(ctx, draftKey(quizID))
}

func (e *QuizEditor) newDraft(communityID, quizID int64) *Draft {
	log := e.log.WithField("quiz_id", quizID)
	return &Draft{
		CommunityID: communityID,
		QuizID:      quizID,
		Store:       draft.New(),
		saver: submit.New[domain.Quiz](
			submit.WithTimeout(e.timeout),
			submit.WithObserver(func(from, to submit.State) {
				log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("quiz save state")
			}),
		),
	}
}
