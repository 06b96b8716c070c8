// Package quizserver exposes the question bank and the answer grader as
// tools and a question://{id} resource.
//
// The question a caller is working on is kept in its session, so callers
// on different sessions never see each other's current question.
package quizserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/mcp-adapters/internal/apperr"
	"github.com/felixgeelhaar/mcp-adapters/internal/grader"
	"github.com/felixgeelhaar/mcp-adapters/internal/imagefetch"
	"github.com/felixgeelhaar/mcp-adapters/internal/logging"
	"github.com/felixgeelhaar/mcp-adapters/internal/quiz"
	"github.com/felixgeelhaar/mcp-adapters/server"
)

// Name and Version identify the server in the initialize handshake.
const (
	Name    = "question-bank-mcp"
	Version = "1.0.0"
)

const currentQuestionKey = "quiz.current_question"

// Grader grades answers and suggests approaches. Neither call fails.
type Grader interface {
	Evaluate(ctx context.Context, q quiz.Question, answer string) grader.Evaluation
	Suggestions(ctx context.Context, q quiz.Question) string
}

// Images loads question images.
type Images interface {
	Fetch(ctx context.Context, url string) (imagefetch.Image, error)
}

var (
	_ Grader = (*grader.Evaluator)(nil)
	_ Images = (*imagefetch.Fetcher)(nil)
)

// Option configures the quiz server.
type Option func(*handlers)

// WithImages replaces the default image fetcher.
func WithImages(images Images) Option {
	return func(h *handlers) {
		h.images = images
	}
}

// WithLogger sets the logger for image fetch failures.
func WithLogger(l *zap.Logger) Option {
	return func(h *handlers) {
		h.log = l
	}
}

type randomQuestionInput struct {
	Subject    string          `json:"subject,omitempty" jsonschema:"description=Subject to draw from (optional), e.g. Math, Physics, Chemistry, English"`
	Difficulty quiz.Difficulty `json:"difficulty,omitempty" jsonschema:"enum=easy|medium|hard,description=Difficulty (optional): easy, medium or hard"`
	ShowImage  bool            `json:"showImage,omitempty" jsonschema:"default=true,description=Whether to attach the question image (default: true)"`
}

type questionByIDInput struct {
	ID int `json:"id" jsonschema:"required,description=Question ID"`
}

type submitAnswerInput struct {
	Answer     string `json:"answer" jsonschema:"required,description=Your answer"`
	QuestionID int    `json:"questionId,omitempty" jsonschema:"description=Question ID (optional, defaults to the current question)"`
}

type suggestionsInput struct {
	QuestionID int `json:"questionId,omitempty" jsonschema:"description=Question ID (optional, defaults to the current question)"`
}

type questionParams struct {
	ID int `uri:"id"`
}

// New registers the question-bank tools and resource on a new server.
func New(store *quiz.Store, g Grader, opts ...Option) *server.Server {
	h := &handlers{store: store, grader: g}
	for _, opt := range opts {
		opt(h)
	}
	if h.images == nil {
		h.images = imagefetch.New()
	}
	h.log = logging.OrNop(h.log)

	srv := server.New(server.Info{Name: Name, Version: Version})

	srv.Tool("get-random-question").
		Description("Get a random question, optionally filtered by subject and difficulty").
		OpenWorld().
		Handler(h.randomQuestion)

	srv.Tool("get-question-by-id").
		Description("Get a question by its ID").
		Idempotent().
		ClosedWorld().
		Handler(h.questionByID)

	srv.Tool("submit-answer").
		Description("Submit an answer and have it graded").
		OpenWorld().
		Handler(h.submitAnswer)

	srv.Tool("get-answering-suggestions").
		Description("Get advice on how to approach a question").
		ReadOnly().
		OpenWorld().
		Handler(h.suggestions)

	srv.Tool("get-database-stats").
		Description("Show question bank statistics").
		ReadOnly().
		Idempotent().
		ClosedWorld().
		Handler(h.stats)

	srv.Tool("show-current-question").
		Description("Show the question currently being answered").
		ReadOnly().
		ClosedWorld().
		Handler(h.showCurrent)

	srv.Resource("question://{id}").
		Name("question-data").
		Description("A question as JSON, including its reference answer").
		MimeType("application/json").
		Handler(h.readQuestion)

	return srv
}

type handlers struct {
	store  *quiz.Store
	grader Grader
	images Images
	log    *zap.Logger
}

func (h *handlers) randomQuestion(ctx context.Context, in randomQuestionInput) (*server.ToolResult, error) {
	q, err := h.store.Select(strings.TrimSpace(in.Subject), in.Difficulty)
	if err != nil {
		return server.ErrorResult(err.Error()), nil
	}
	setCurrent(ctx, q)

	result := server.TextResult(formatQuestion(q, false))
	if !in.ShowImage || !q.HasImage() {
		return result, nil
	}

	img, err := h.images.Fetch(ctx, q.ImageURL)
	if err != nil {
		h.log.Warn("question image could not be loaded",
			zap.Int("question_id", q.ID), zap.String("url", q.ImageURL), zap.Error(err))
		return result.AddText(imageFallback(q.ImageURL)), nil
	}
	return result.AddImage(img.Data, img.MimeType), nil
}

func (h *handlers) questionByID(ctx context.Context, in questionByIDInput) (*server.ToolResult, error) {
	q, ok := h.store.ByID(in.ID)
	if !ok {
		return server.ErrorResult(notFound(in.ID)), nil
	}
	setCurrent(ctx, q)
	return server.TextResult(formatQuestion(q, true)), nil
}

func (h *handlers) submitAnswer(ctx context.Context, in submitAnswerInput) (*server.ToolResult, error) {
	q, errResult := h.resolve(ctx, in.QuestionID)
	if errResult != nil {
		return errResult, nil
	}
	if err := checkAnswer(in.Answer); err != nil {
		return server.ErrorResult(err.Error()), nil
	}

	eval := h.grader.Evaluate(ctx, q, in.Answer)
	return server.TextResult(formatEvaluation(q, in.Answer, eval)), nil
}

func (h *handlers) suggestions(ctx context.Context, in suggestionsInput) (*server.ToolResult, error) {
	q, errResult := h.resolve(ctx, in.QuestionID)
	if errResult != nil {
		return errResult, nil
	}
	return server.TextResult(formatSuggestions(q, h.grader.Suggestions(ctx, q))), nil
}

func (h *handlers) stats(_ struct{}) (*server.ToolResult, error) {
	return server.TextResult(formatStats(h.store.Stats(), h.store.Subjects())), nil
}

func (h *handlers) showCurrent(ctx context.Context, _ struct{}) (*server.ToolResult, error) {
	q, ok := current(ctx)
	if !ok {
		return server.TextResult(noActiveQuestion), nil
	}
	return server.TextResult(formatQuestion(q, true)), nil
}

// resolve picks the question an answer or suggestion refers to: the
// explicit id when given, else the session's current question.
func (h *handlers) resolve(ctx context.Context, id int) (quiz.Question, *server.ToolResult) {
	if id != 0 {
		q, ok := h.store.ByID(id)
		if !ok {
			return quiz.Question{}, server.ErrorResult(notFound(id))
		}
		return q, nil
	}
	if q, ok := current(ctx); ok {
		return q, nil
	}
	return quiz.Question{}, server.ErrorResult("Fetch a question first, or pass a questionId")
}

func (h *handlers) readQuestion(_ context.Context, uri string, params map[string]string) (*server.ResourceContent, error) {
	p, err := server.ExtractParams[questionParams](params)
	if err != nil {
		return nil, fmt.Errorf("Failed to get question data: invalid question ID %q", params["id"])
	}
	q, ok := h.store.ByID(p.ID)
	if !ok {
		return nil, fmt.Errorf("Failed to get question data: %s", notFound(p.ID))
	}

	data, err := json.MarshalIndent(newQuestionData(q), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("Failed to get question data: %w", err)
	}
	return &server.ResourceContent{URI: uri, MimeType: "application/json", Text: string(data)}, nil
}

// questionData is the question://{id} document.
type questionData struct {
	ID               int             `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Subject          string          `json:"subject"`
	Difficulty       quiz.Difficulty `json:"difficulty"`
	Tags             []string        `json:"tags"`
	ImageURL         string          `json:"imageUrl,omitempty"`
	ImageDescription string          `json:"imageDescription,omitempty"`
	HasImage         bool            `json:"hasImage"`
	ReferenceAnswer  string          `json:"referenceAnswer"`
}

func newQuestionData(q quiz.Question) questionData {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return questionData{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		Subject:          q.Subject,
		Difficulty:       q.Difficulty,
		Tags:             tags,
		ImageURL:         q.ImageURL,
		ImageDescription: q.ImageDescription,
		HasImage:         q.HasImage(),
		ReferenceAnswer:  q.ReferenceAnswer,
	}
}

func checkAnswer(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return &apperr.ValidationError{Field: "answer", Message: "Please provide your answer"}
	}
	return nil
}

func notFound(id int) string {
	return fmt.Sprintf("Question ID %d does not exist", id)
}

func setCurrent(ctx context.Context, q quiz.Question) {
	if s := server.SessionFromContext(ctx); s != nil {
		s.Set(currentQuestionKey, q)
	}
}

func current(ctx context.Context) (quiz.Question, bool) {
	s := server.SessionFromContext(ctx)
	if s == nil {
		return quiz.Question{}, false
	}
	v, ok := s.Get(currentQuestionKey)
	if !ok {
		return quiz.Question{}, false
	}
	q, ok := v.(quiz.Question)
	return q, ok
}
