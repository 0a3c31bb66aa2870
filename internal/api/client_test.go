package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"quizzz-client/internal/domain"
	"quizzz-client/internal/submit"
)

func TestGetQuizDecodesNestedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/communities/3/quizzes/9/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if c, err := r.Cookie("sessionid"); err != nil || c.Value != "sess" {
			t.Errorf("expected session cookie, got %v", err)
		}
		if r.Header.Get("X-CSRFToken") != "tok" {
			t.Errorf("expected csrf header")
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("expected request id")
		}
		_, _ = w.Write([]byte(`{
			"id": 9, "name": "Capitals", "introduction": "Good luck", "is_finalized": false,
			"time_updated": "2024-03-01T10:00:00.123456Z", "user": 4,
			"questions": [{"id": 1, "text": "France?", "explanation": "", "options": [
				{"id": 10, "text": "Paris", "is_correct": true},
				{"id": 11, "text": "Lyon", "is_correct": false}
			]}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithSession("sess"), WithCSRFToken("tok"))
	quiz, err := client.GetQuiz(context.Background(), 3, 9)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.Name != "Capitals" || quiz.User == nil || quiz.User.ID != 4 {
		t.Fatalf("unexpected quiz header %+v", quiz)
	}
	if len(quiz.Questions) != 1 || !quiz.Questions[0].Options[0].IsCorrect {
		t.Fatalf("unexpected questions %+v", quiz.Questions)
	}
}

func TestUpdateQuizSendsWirePayload(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"id": 9, "name": "Capitals", "is_finalized": true, "questions": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.UpdateQuiz(context.Background(), 3, 9, domain.QuizUpdate{
		Name:        "Capitals",
		IsFinalized: true,
		Questions: []domain.Question{{ID: 1, Text: "France?", Options: []domain.Option{
			{ID: 10, Text: "Paris", IsCorrect: true},
		}}},
	})
	if err != nil {
		t.Fatalf("update quiz: %v", err)
	}
	option := got["questions"].([]any)[0].(map[string]any)["options"].([]any)[0].(map[string]any)
	if option["is_correct"] != true {
		t.Fatalf("expected is_correct on the wire, got %v", option)
	}
	if got["is_finalized"] != true {
		t.Fatalf("expected is_finalized, got %v", got)
	}
}

func TestErrorEnvelopeFormErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Bad request.", "form_errors": {"questions": [{}, {"options": [{"text": ["This field is required."]}]}]}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.UpdateQuiz(context.Background(), 1, 2, domain.QuizUpdate{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Bad request." {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	var env submit.Envelope
	if !errors.As(err, &env) {
		t.Fatalf("expected APIError to be a submit envelope")
	}
	if got := env.FormErrors().Lookup("questions[1].options[0].text"); !reflect.DeepEqual(got, []string{"This field is required."}) {
		t.Fatalf("unexpected field errors %v", got)
	}
}

func TestErrorEnvelopeVariants(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
		list    bool
	}{
		{"user message", 400, `{"userMessage": "Wrong password.", "message": "x"}`, "Wrong password.", false},
		{"message with data list", 400, `{"message": "Bad data submitted.", "data": ["Too many rounds."]}`, "Bad data submitted.", true},
		{"error key", 403, `{"error": "Forbidden."}`, "Forbidden.", false},
		{"bare list", 400, `["You cannot play your own quiz."]`, "Bad Request", true},
		{"html", 502, `<html>bad gateway</html>`, "Bad Gateway", false},
		{"empty", 500, ``, "Internal Server Error", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			apiErr := decodeError(c.status, []byte(c.body))
			if apiErr.Message != c.message {
				t.Fatalf("expected message %q, got %q", c.message, apiErr.Message)
			}
			if got := apiErr.FormErrors().IsList(); got != c.list {
				t.Fatalf("expected list=%v, got %v (%s)", c.list, got, apiErr.Data)
			}
		})
	}
}

func TestNotFoundMatchesDomainError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Not found."}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetRound(context.Background(), 1, 2)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAcceptsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/communities/1/tournaments/rounds/5/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := newTestClient(t, server.URL).DeleteRound(context.Background(), 1, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestSubmitRoundPayload(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/communities/1/play/5/submit/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var in domain.PlaySubmission
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(in)
	}))
	defer server.Close()

	play, err := newTestClient(t, server.URL).SubmitRound(context.Background(), 1, 5, domain.PlaySubmission{
		ClientStartTime:  start,
		ClientFinishTime: start.Add(90 * time.Second),
		Answers:          []domain.Answer{{QuestionID: 1, OptionID: 10}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if play.ClientElapsed() != 90*time.Second || len(play.Answers) != 1 {
		t.Fatalf("unexpected play %+v", play)
	}
}

func TestTransportFailureIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).ListRounds(context.Background(), 1, 2)
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var env submit.Envelope
	if errors.As(err, &env) {
		t.Fatalf("transport errors must not carry an envelope")
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("/api"); err == nil {
		t.Fatalf("expected error for relative base url")
	}
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	client, err := New(baseURL, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}
