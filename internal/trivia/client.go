// Package trivia fills quiz drafts with random questions from Open Trivia DB.
package trivia

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"quizzz-client/internal/draft"
)

const DefaultBaseURL = "https://opentdb.com/api.php"

// Question is one decoded Open Trivia DB entry.
type Question struct {
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type response struct {
	ResponseCode int        `json:"response_code"`
	Results      []Question `json:"results"`
}

// Client talks to the Open Trivia DB question endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewClient(baseURL string, log logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithSeed makes answer shuffling deterministic.
func (c *Client) WithSeed(seed int64) *Client {
	c.rndMu.Lock()
	c.rnd = rand.New(rand.NewSource(seed))
	c.rndMu.Unlock()
	return c
}

// Fetch returns amount multiple-choice questions with texts decoded.
func (c *Client) Fetch(ctx context.Context, amount int) ([]Question, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("trivia url: %w", err)
	}
	q := u.Query()
	q.Set("amount", strconv.Itoa(amount))
	q.Set("type", "multiple")
	q.Set("encode", "base64")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trivia: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch trivia: unexpected status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode trivia: %w", err)
	}
	if body.ResponseCode != 0 {
		return nil, fmt.Errorf("trivia response code %d", body.ResponseCode)
	}

	out := make([]Question, 0, len(body.Results))
	for _, raw := range body.Results {
		decoded, err := decodeQuestion(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	c.log.WithField("count", len(out)).Debug("trivia questions fetched")
	return out, nil
}

// Fill overwrites every draft question with a fetched one. Answers are
// shuffled over the question's options; the correct answer always lands on
// one of them and becomes the only correct option. Options beyond the
// available answers keep their text.
func (c *Client) Fill(ctx context.Context, store *draft.Store) error {
	questionIDs := store.QuestionIDs()
	if len(questionIDs) == 0 {
		return nil
	}
	fetched, err := c.Fetch(ctx, len(questionIDs))
	if err != nil {
		return err
	}
	if len(fetched) < len(questionIDs) {
		return fmt.Errorf("trivia returned %d of %d questions", len(fetched), len(questionIDs))
	}

	for i, qid := range questionIDs {
		entry := fetched[i]
		store.SetQuestionText(qid, entry.Question)
		store.SetQuestionExplanation(qid, "")

		optionIDs := store.OptionIDs(qid)
		if len(optionIDs) == 0 {
			continue
		}
		answers := c.arrange(entry, len(optionIDs))
		for j, oid := range optionIDs {
			if j >= len(answers) {
				break
			}
			store.SetOptionText(oid, answers[j])
			if answers[j] == entry.CorrectAnswer {
				store.SetCorrectOption(oid, qid)
			}
		}
	}
	return nil
}

// arrange shuffles the answers and moves the correct one into the first
// slots positions if the shuffle pushed it out.
func (c *Client) arrange(entry Question, slots int) []string {
	answers := append([]string{entry.CorrectAnswer}, entry.IncorrectAnswers...)

	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	c.rnd.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})
	if slots >= len(answers) {
		return answers
	}
	for i, a := range answers {
		if a == entry.CorrectAnswer && i >= slots {
			k := c.rnd.Intn(slots)
			answers[i], answers[k] = answers[k], answers[i]
			break
		}
	}
	return answers
}

func decodeQuestion(raw Question) (Question, error) {
	var err error
	dec := func(s string) string {
		if err != nil {
			return ""
		}
		var b []byte
		b, err = base64.StdEncoding.DecodeString(s)
		return string(b)
	}
	out := Question{
		Category:      dec(raw.Category),
		Difficulty:    dec(raw.Difficulty),
		Question:      dec(raw.Question),
		CorrectAnswer: dec(raw.CorrectAnswer),
	}
	for _, a := range raw.IncorrectAnswers {
		out.IncorrectAnswers = append(out.IncorrectAnswers, dec(a))
	}
	if err != nil {
		return Question{}, fmt.Errorf("decode trivia question: %w", err)
	}
	return out, nil
}

