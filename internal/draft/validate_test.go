package draft

import (
	"reflect"
	"testing"

	"quizzz-client/internal/domain"
)

func TestValidateDraftAllowsBlanks(t *testing.T) {
	s := FromWire(twoByFour())
	if fe := s.Validate(false); fe != nil {
		t.Fatalf("expected blank draft to be valid, got %v", fe.Flatten())
	}
}

func TestValidateFinalizeRequiresTextsAndAnswer(t *testing.T) {
	s := FromWire(twoByFour())
	s.SetQuestionText(1, "Capital of France?")
	for _, oid := range s.OptionIDs(1) {
		s.SetOptionText(oid, "city")
	}
	s.SetCorrectOption(101, 1)

	fe := s.Validate(true)
	if fe == nil {
		t.Fatalf("expected errors for second question")
	}
	if got := fe.Lookup("questions[1].text"); !reflect.DeepEqual(got, []string{"This field is required."}) {
		t.Fatalf("unexpected question text errors %v", got)
	}
	if got := fe.Lookup("questions[1].non_field_errors"); !reflect.DeepEqual(got, []string{"No correct answer selected."}) {
		t.Fatalf("unexpected question errors %v", got)
	}
	for j := 0; j < 4; j++ {
		path := "questions[1].options[" + string(rune('0'+j)) + "].text"
		if got := fe.Lookup(path); len(got) != 1 {
			t.Fatalf("expected one error at %s, got %v", path, got)
		}
	}
	if got := fe.Flatten(); len(got) != 6 {
		t.Fatalf("expected errors only on the second question, got %v", got)
	}
}

func TestValidateRejectsMultipleCorrect(t *testing.T) {
	s := FromWire([]domain.Question{{
		ID: 1,
		Options: []domain.Option{
			{ID: 11, IsCorrect: true},
			{ID: 12, IsCorrect: true},
		},
	}})
	fe := s.Validate(false)
	if got := fe.Lookup("questions[0].non_field_errors"); !reflect.DeepEqual(got, []string{"Multiple answers not allowed."}) {
		t.Fatalf("unexpected messages %v", got)
	}
}
