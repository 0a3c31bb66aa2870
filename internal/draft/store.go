// Package draft holds an editable, normalized copy of a quiz's questions and
// options. Questions and options are addressed by id; order lists keep the
// authoring order so the nested wire shape can be rebuilt on submit.
//
// Every id passed to a Store must be one the Store produced (via InitFromWire
// and the read accessors). Unknown ids are programming errors and panic.
package draft

import (
	"fmt"
	"sync"

	"quizzz-client/internal/domain"
)

type questionNode struct {
	id          domain.QuestionID
	text        string
	explanation string
	options     []domain.OptionID
}

type optionNode struct {
	id        domain.OptionID
	text      string
	isCorrect bool
}

// Store is the normalized draft of one quiz's questions. It is safe for
// concurrent use; readers never observe a partially applied mutation.
type Store struct {
	mu            sync.RWMutex
	questionOrder []domain.QuestionID
	questionsByID map[domain.QuestionID]*questionNode
	optionsByID   map[domain.OptionID]*optionNode
}

// New returns an empty store.
func New() *Store {
	return &Store{
		questionsByID: make(map[domain.QuestionID]*questionNode),
		optionsByID:   make(map[domain.OptionID]*optionNode),
	}
}

// FromWire builds a store from a nested questions payload.
func FromWire(questions []domain.Question) *Store {
	s := New()
	s.InitFromWire(questions)
	return s
}

// InitFromWire replaces the store contents with the given nested payload.
// A nil payload (quiz not created yet) yields an empty store. A question
// sent without options keeps a nil option list on the way back out.
func (s *Store) InitFromWire(questions []domain.Question) {
	order := make([]domain.QuestionID, 0, len(questions))
	qs := make(map[domain.QuestionID]*questionNode, len(questions))
	opts := make(map[domain.OptionID]*optionNode)

	for _, q := range questions {
		node := &questionNode{
			id:          q.ID,
			text:        q.Text,
			explanation: q.Explanation,
		}
		if q.Options != nil {
			node.options = make([]domain.OptionID, 0, len(q.Options))
		}
		for _, o := range q.Options {
			opts[o.ID] = &optionNode{id: o.ID, text: o.Text, isCorrect: o.IsCorrect}
			node.options = append(node.options, o.ID)
		}
		qs[q.ID] = node
		order = append(order, q.ID)
	}

	s.mu.Lock()
	s.questionOrder = order
	s.questionsByID = qs
	s.optionsByID = opts
	s.mu.Unlock()
}

// ToWireFormat walks questions and options in authoring order and returns
// the nested payload expected by the backend.
func (s *Store) ToWireFormat() []domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Question, 0, len(s.questionOrder))
	for _, qid := range s.questionOrder {
		q := s.questionsByID[qid]
		wire := domain.Question{
			ID:          q.id,
			Text:        q.text,
			Explanation: q.explanation,
		}
		if q.options != nil {
			wire.Options = make([]domain.Option, 0, len(q.options))
		}
		for _, oid := range q.options {
			o := s.optionsByID[oid]
			wire.Options = append(wire.Options, domain.Option{ID: o.id, Text: o.text, IsCorrect: o.isCorrect})
		}
		out = append(out, wire)
	}
	return out
}

// SetQuestionText replaces the text of one question. Empty text is allowed.
func (s *Store) SetQuestionText(questionID domain.QuestionID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustQuestion(questionID).text = text
}

// SetQuestionExplanation replaces the review-time explanation of one question.
func (s *Store) SetQuestionExplanation(questionID domain.QuestionID, explanation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustQuestion(questionID).explanation = explanation
}

// SetOptionText replaces the text of one option.
func (s *Store) SetOptionText(optionID domain.OptionID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustOption(optionID).text = text
}

// SetCorrectOption marks optionID as the single correct option of
// questionID and clears the flag on its siblings. Options of other
// questions are untouched.
func (s *Store) SetCorrectOption(optionID domain.OptionID, questionID domain.QuestionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.mustQuestion(questionID)
	if !containsOption(q.options, optionID) {
		panic(fmt.Sprintf("draft: option %d does not belong to question %d", optionID, questionID))
	}
	for _, id := range q.options {
		s.mustOption(id).isCorrect = id == optionID
	}
}

// HasQuestion reports whether questionID is part of the draft.
func (s *Store) HasQuestion(questionID domain.QuestionID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.questionsByID[questionID]
	return ok
}

// HasOption reports whether optionID is part of the draft.
func (s *Store) HasOption(optionID domain.OptionID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.optionsByID[optionID]
	return ok
}

// QuestionOf returns the question owning optionID.
func (s *Store) QuestionOf(optionID domain.OptionID) (domain.QuestionID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, qid := range s.questionOrder {
		if containsOption(s.questionsByID[qid].options, optionID) {
			return qid, true
		}
	}
	return 0, false
}

// QuestionIDs returns the question ids in authoring order.
func (s *Store) QuestionIDs() []domain.QuestionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.QuestionID(nil), s.questionOrder...)
}

// OptionIDs returns the option ids of a question in authoring order.
func (s *Store) OptionIDs(questionID domain.QuestionID) []domain.OptionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.OptionID(nil), s.mustQuestion(questionID).options...)
}

// Question returns a copy of one question with its options.
func (s *Store) Question(questionID domain.QuestionID) domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := s.mustQuestion(questionID)
	out := domain.Question{ID: q.id, Text: q.text, Explanation: q.explanation}
	for _, oid := range q.options {
		o := s.optionsByID[oid]
		out.Options = append(out.Options, domain.Option{ID: o.id, Text: o.text, IsCorrect: o.isCorrect})
	}
	return out
}

// Option returns a copy of one option.
func (s *Store) Option(optionID domain.OptionID) domain.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o := s.mustOption(optionID)
	return domain.Option{ID: o.id, Text: o.text, IsCorrect: o.isCorrect}
}

// Len returns the number of questions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questionOrder)
}

func (s *Store) mustQuestion(id domain.QuestionID) *questionNode {
	q, ok := s.questionsByID[id]
	if !ok {
		panic(fmt.Sprintf("draft: unknown question %d", id))
	}
	return q
}

func (s *Store) mustOption(id domain.OptionID) *optionNode {
	o, ok := s.optionsByID[id]
	if !ok {
		panic(fmt.Sprintf("draft: unknown option %d", id))
	}
	return o
}

func containsOption(ids []domain.OptionID, id domain.OptionID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
