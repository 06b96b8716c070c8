package quizserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/felixgeelhaar/mcp-adapters/internal/apperr"
	"github.com/felixgeelhaar/mcp-adapters/internal/grader"
	"github.com/felixgeelhaar/mcp-adapters/internal/imagefetch"
	"github.com/felixgeelhaar/mcp-adapters/internal/quiz"
	"github.com/felixgeelhaar/mcp-adapters/protocol"
	"github.com/felixgeelhaar/mcp-adapters/testutil"
)

type fakeGrader struct {
	mu          sync.Mutex
	evaluation  grader.Evaluation
	suggestions string
	graded      []int
	answers     []string
}

func (g *fakeGrader) Evaluate(_ context.Context, q quiz.Question, answer string) grader.Evaluation {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.graded = append(g.graded, q.ID)
	g.answers = append(g.answers, answer)
	return g.evaluation
}

func (g *fakeGrader) Suggestions(_ context.Context, q quiz.Question) string {
	return g.suggestions
}

type failingImages struct{}

func (failingImages) Fetch(context.Context, string) (imagefetch.Image, error) {
	return imagefetch.Image{}, errors.New("dial tcp: connection refused")
}

func firstPick(int) int { return 0 }

func newQuiz(t *testing.T, g Grader, opts ...Option) *testutil.TestClient {
	t.Helper()
	store := quiz.NewStore(quiz.Seed(), quiz.WithRandom(firstPick))
	return testutil.NewTestClient(t, New(store, g, opts...))
}

func TestServer_Registration(t *testing.T) {
	tc := newQuiz(t, &fakeGrader{})

	for _, name := range []string{
		"get-random-question", "get-question-by-id", "submit-answer",
		"get-answering-suggestions", "get-database-stats", "show-current-question",
	} {
		tc.AssertToolExists(name)
	}
	tc.AssertResourceExists("question://{id}")
}

func TestGetRandomQuestion_AttachesImage(t *testing.T) {
	tc := newQuiz(t, &fakeGrader{})

	res := tc.Call("get-random-question", nil)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 2)

	text := res.Content[0].Text
	assert.Contains(t, text, "**Question 1** | Math | Medium")
	assert.Contains(t, text, "**Title**: Reading a quadratic function graph")
	assert.NotContains(t, text, "**Image**:")

	img := res.Content[1]
	assert.Equal(t, protocol.ContentImage, img.Type)
	assert.Equal(t, "image/svg+xml", img.MimeType)
	assert.NotEmpty(t, img.Data)

	assert.Contains(t, tc.CallText("show-current-question", nil), "**Question 1**")
}

func TestGetRandomQuestion_Filters(t *testing.T) {
	tc := newQuiz(t, &fakeGrader{})

	text := tc.CallText("get-random-question", map[string]any{"subject": "physics", "showImage": false})
	assert.Contains(t, text, "**Question 3** | Physics | Hard")

	text = tc.CallText("get-random-question", map[string]any{"difficulty": "easy", "showImage": false})
	assert.Contains(t, text, "**Question 4** | Chemistry | Easy")

	text = tc.CallText("get-random-question", map[string]any{"subject": "Math", "difficulty": "medium", "showImage": false})
	assert.Contains(t, text, "**Question 1** | Math | Medium")
}

func TestGetRandomQuestion_NoMatchKeepsCurrent(t *testing.T) {
	tc := newQuiz(t, &fakeGrader{})

	assert.Equal(t, noActiveQuestion, tc.CallText("show-current-question", nil))

	msg := tc.CallError("get-random-question", map[string]any{"subject": "Biology"})
	assert.Equal(t, `No questions found for subject "Biology"`, msg)
	assert.Equal(t, noActiveQuestion, tc.CallText("show-current-question", nil))

	tc.CallText("get-question-by-id", map[string]any{"id": 2})
	msg = tc.CallError("get-random-question", map[string]any{"subject": "Math", "difficulty": "hard"})
	assert.Equal(t, `No questions found for subject "Math" with difficulty "hard"`, msg)
	assert.Contains(t, tc.CallText("show-current-question", nil), "**Question 2**")
}

func TestGetRandomQuestion_ImageFallback(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tc := newQuiz(t, &fakeGrader{}, WithImages(failingImages{}), WithLogger(zap.New(core)))

	res := tc.Call("get-random-question", map[string]any{"subject": "English"})
	require.False(t, res.IsError)
	require.Len(t, res.Content, 2)
	assert.Equal(t, protocol.ContentText, res.Content[1].Type)
	assert.Contains(t, res.Content[1].Text, "**Question image**: https://example.com/sentence-structure.png")

	entries := logs.FilterMessage("question image could not be loaded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestRandomQuestion_OversizeImageFallsBack(t *testing.T) {
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(make([]byte, 10<<20+1))
	}))
	defer host.Close()

	store := quiz.NewStore([]quiz.Question{{
		ID: 1, Title: "Diagram", Description: "Label the diagram.", ImageURL: host.URL + "/huge.png",
		ReferenceAnswer: "A", Difficulty: quiz.Easy, Subject: "Biology",
	}})
	tc := testutil.NewTestClient(t, New(store, &fakeGrader{}, WithImages(imagefetch.New(imagefetch.WithHTTPClient(host.Client())))))

	res := tc.Call("get-random-question", nil)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 2)
	assert.Equal(t, protocol.ContentText, res.Content[1].Type)
	assert.Contains(t, res.Content[1].Text, host.URL+"/huge.png")
}

func TestCheckAnswer(t *testing.T) {
	require.NoError(t, checkAnswer("x = 2"))

	err := checkAnswer(" \n\t")
	var valErr *apperr.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "answer", valErr.Field)
	assert.EqualError(t, err, "Please provide your answer")
}

func TestGetQuestionByID(t *testing.T) {
	tc := newQuiz(t, &fakeGrader{})

	text := tc.CallText("get-question-by-id", map[string]any{"id": 2})
	assert.Contains(t, text, "**Image**: https://example.com/similar-triangles.png")
	assert.Contains(t, text, "**Tags**: ")

	assert.Equal(t, "Question ID 99 does not exist", tc.CallError("get-question-by-id", map[string]any{"id": 99}))
	assert.Contains(t, tc.CallText("show-current-question", nil), "**Question 2**")
}

func TestSubmitAnswer(t *testing.T) {
	g := &fakeGrader{evaluation: grader.Evaluation{
		Score:            85,
		Feedback:         "Mostly right",
		Strengths:        []string{"correct vertex"},
		Improvements:     []string{"show working"},
		CorrectnessLevel: grader.PartiallyCorrect,
		DetailedAnalysis: "Missing the expanded form.",
	}}
	tc := newQuiz(t, g)

	assert.Equal(t, "Fetch a question first, or pass a questionId",
		tc.CallError("submit-answer", map[string]any{"answer": "x = 2"}))

	tc.CallText("get-question-by-id", map[string]any{"id": 1})
	assert.Equal(t, "Please provide your answer", tc.CallError("submit-answer", map[string]any{"answer": "   "}))
	assert.Empty(t, g.graded)

	text := tc.CallText("submit-answer", map[string]any{"answer": "vertex (2, -1)"})
	assert.Contains(t, text, "**Your answer**:\nvertex (2, -1)")
	assert.Contains(t, text, "**Score**: 85/100 (partially correct)")
	assert.Contains(t, text, "**Strengths**:\n• correct vertex")
	assert.Contains(t, text, "**Improvements**:\n• show working")
	assert.Contains(t, text, "**Detailed analysis**:\nMissing the expanded form.")
	assert.Contains(t, text, "**Reference answer**:\nThe axis of symmetry is x=2")

	tc.CallText("submit-answer", map[string]any{"answer": "4 A", "questionId": 3})
	assert.Equal(t, []int{1, 3}, g.graded)

	assert.Equal(t, "Question ID 42 does not exist",
		tc.CallError("submit-answer", map[string]any{"answer": "a", "questionId": 42}))
}

func TestSubmitAnswer_OmitsEmptyLists(t *testing.T) {
	tc := newQuiz(t, &fakeGrader{evaluation: grader.Unavailable()})

	text := tc.CallText("submit-answer", map[string]any{"answer": "H2O", "questionId": 4})
	assert.Contains(t, text, "**Score**: 0/100 (incorrect)")
	assert.NotContains(t, text, "**Strengths**")
	assert.Contains(t, text, "**Improvements**:")
}

func TestGetAnsweringSuggestions(t *testing.T) {
	tc := newQuiz(t, &fakeGrader{suggestions: "Start from the vertex form."})

	tc.CallError("get-answering-suggestions", nil)

	text := tc.CallText("get-answering-suggestions", map[string]any{"questionId": 5})
	assert.Contains(t, text, "**Question**: Sentence structure")
	assert.Contains(t, text, "Start from the vertex form.")
}

func TestGetDatabaseStats(t *testing.T) {
	tc := newQuiz(t, &fakeGrader{})

	text := tc.CallText("get-database-stats", nil)
	assert.Contains(t, text, "**Total questions**: 5")
	assert.Contains(t, text, "**By subject**:\n• Math: 2\n• Physics: 1\n• Chemistry: 1\n• English: 1")
	assert.Contains(t, text, "**By difficulty**:\n• Easy: 1\n• Medium: 3\n• Hard: 1")
	assert.Contains(t, text, "**Subjects**: Math, Physics, Chemistry, English")
}

func TestQuestionResource(t *testing.T) {
	tc := newQuiz(t, &fakeGrader{})

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(tc.ReadText("question://3")), &doc))
	assert.EqualValues(t, 3, doc["id"])
	assert.Equal(t, "Physics", doc["subject"])
	assert.Equal(t, "hard", doc["difficulty"])
	assert.Equal(t, true, doc["hasImage"])
	assert.NotEmpty(t, doc["referenceAnswer"])

	_, err := tc.ReadResource(context.Background(), "question://99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to get question data: Question ID 99 does not exist")

	_, err = tc.ReadResource(context.Background(), "question://abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to get question data")
}

func TestSessions_HaveIndependentCurrentQuestions(t *testing.T) {
	srv := New(quiz.NewStore(quiz.Seed()), &fakeGrader{})
	alice := testutil.NewSessionClient(t, srv, "alice")
	bob := testutil.NewSessionClient(t, srv, "bob")

	alice.CallText("get-question-by-id", map[string]any{"id": 4})

	assert.Contains(t, alice.CallText("show-current-question", nil), "**Question 4**")
	assert.Equal(t, noActiveQuestion, bob.CallText("show-current-question", nil))
	bob.CallError("submit-answer", map[string]any{"answer": "H2O"})
}
