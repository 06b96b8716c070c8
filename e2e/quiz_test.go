package e2e

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	mcp "github.com/felixgeelhaar/mcp-adapters"
	"github.com/felixgeelhaar/mcp-adapters/internal/config"
	"github.com/felixgeelhaar/mcp-adapters/internal/grader"
	"github.com/felixgeelhaar/mcp-adapters/internal/logging"
	"github.com/felixgeelhaar/mcp-adapters/internal/quiz"
	"github.com/felixgeelhaar/mcp-adapters/internal/quizserver"
	"github.com/felixgeelhaar/mcp-adapters/server"
	"github.com/felixgeelhaar/mcp-adapters/testutil"
)

const gradedReply = "Here is my evaluation:\n" +
	`{"score": 92, "feedback": "Balanced correctly", "strengths": ["correct coefficients"], ` +
	`"improvements": [], "correctnessLevel": "correct", "detailedAnalysis": "2H2 + O2 -> 2H2O is balanced."}` +
	"\nGood luck!"

func newQuizServer(llmURL string) *server.Server {
	evaluator := grader.New(config.LLM{Provider: grader.ProviderZhipu, APIKey: "k", BaseURL: llmURL, Model: "glm-4"})
	return quizserver.New(quiz.NewStore(quiz.Seed()), evaluator)
}

func TestQuiz_AnswerFlow(t *testing.T) {
	llm := &chatLLM{reply: gradedReply}
	c := serveStdio(t, newQuizServer(startLLM(t, llm)))
	ctx := context.Background()

	res, err := c.CallTool(ctx, "get-random-question", map[string]any{"subject": "Biology"})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = c.CallTool(ctx, "show-current-question", nil)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, testutil.Text(res), "There is no active question")

	res, err = c.CallTool(ctx, "get-random-question", map[string]any{"subject": "chemistry", "showImage": false})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, testutil.Text(res), "**Question 4** | Chemistry | Easy")

	res, err = c.CallTool(ctx, "submit-answer", map[string]any{"answer": " "})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Zero(t, llm.calls.Load())

	res, err = c.CallTool(ctx, "submit-answer", map[string]any{"answer": "2H2 + O2 -> 2H2O"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	text := testutil.Text(res)
	assert.Contains(t, text, "**Score**: 92/100 (correct)")
	assert.Contains(t, text, "• correct coefficients")
	assert.NotContains(t, text, "**Improvements**")

	llm.setReply("Count the atoms on each side.")
	res, err = c.CallTool(ctx, "get-answering-suggestions", nil)
	require.NoError(t, err)
	assert.Contains(t, testutil.Text(res), "Count the atoms on each side.")
	assert.EqualValues(t, 2, llm.calls.Load())
}

func TestQuiz_GraderOutage(t *testing.T) {
	c := serveStdio(t, newQuizServer(startLLM(t, &chatLLM{status: 503})))

	res, err := c.CallTool(context.Background(), "submit-answer", map[string]any{"answer": "4 A", "questionId": 3})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, testutil.Text(res), "**Score**: 0/100 (incorrect)")

	res, err = c.CallTool(context.Background(), "get-answering-suggestions", map[string]any{"questionId": 3})
	require.NoError(t, err)
	assert.Contains(t, testutil.Text(res), grader.SuggestionsFailed)
}

func TestQuiz_UnparseableGrade(t *testing.T) {
	c := serveStdio(t, newQuizServer(startLLM(t, &chatLLM{reply: "Looks fine to me."})))

	res, err := c.CallTool(context.Background(), "submit-answer", map[string]any{"answer": "which", "questionId": 5})
	require.NoError(t, err)
	text := testutil.Text(res)
	assert.Contains(t, text, "**Score**: 60/100 (partially correct)")
	assert.Contains(t, text, "**Feedback**:\nLooks fine to me.")
}

func TestQuiz_RequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := serveStdio(t, newQuizServer(startLLM(t, &chatLLM{})),
		mcp.WithLogger(logging.NewAdapter(zap.New(core))))

	_, err := c.CallTool(context.Background(), "get-question-by-id", map[string]any{"id": 77})
	require.NoError(t, err)

	entries := logs.FilterMessage("tool reported an error").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "get-question-by-id", fields["tool"])
	assert.NotEmpty(t, fields["session_id"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestQuiz_QuestionResource(t *testing.T) {
	c := serveStdio(t, newQuizServer(startLLM(t, &chatLLM{})))

	contents, err := c.ReadResource(context.Background(), "question://1")
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "application/json", contents[0].MimeType)
	assert.Contains(t, contents[0].Text, `"hasImage": true`)
}
