package draft

import (
	"fmt"

	"quizzz-client/internal/submit"
)

const (
	msgRequired      = "This field is required."
	msgNoCorrect     = "No correct answer selected."
	msgMultipleRight = "Multiple answers not allowed."
)

// Validate checks the draft against the backend's quiz rules and returns
// the violations shaped like its form_errors, or nil. When finalizing,
// question and option texts are required and every question needs exactly
// one correct option; a draft may have at most one.
func (s *Store) Validate(finalize bool) *submit.FieldErrors {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fe := &submit.FieldErrors{}
	for i, qid := range s.questionOrder {
		q := s.questionsByID[qid]
		prefix := fmt.Sprintf("questions[%d]", i)
		if finalize && q.text == "" {
			fe.Add(prefix+".text", msgRequired)
		}

		correct := 0
		for j, oid := range q.options {
			o := s.optionsByID[oid]
			if o.isCorrect {
				correct++
			}
			if finalize && o.text == "" {
				fe.Add(fmt.Sprintf("%s.options[%d].text", prefix, j), msgRequired)
			}
		}
		switch {
		case correct > 1:
			fe.Add(prefix+"."+submit.NonFieldKey, msgMultipleRight)
		case finalize && correct == 0:
			fe.Add(prefix+"."+submit.NonFieldKey, msgNoCorrect)
		}
	}
	if fe.Empty() {
		return nil
	}
	return fe
}
