package quizserver

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-adapters/internal/grader"
	"github.com/felixgeelhaar/mcp-adapters/internal/quiz"
)

const noActiveQuestion = "There is no active question. Use `get-random-question` or `get-question-by-id` to fetch one."

var difficultyLabels = map[quiz.Difficulty]string{
	quiz.Easy:   "Easy",
	quiz.Medium: "Medium",
	quiz.Hard:   "Hard",
}

var levelLabels = map[string]string{
	grader.Correct:          "correct",
	grader.PartiallyCorrect: "partially correct",
	grader.Incorrect:        "incorrect",
}

func difficultyLabel(d quiz.Difficulty) string {
	if label, ok := difficultyLabels[d]; ok {
		return label
	}
	return string(d)
}

func bullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "\n• %s", item)
	}
}

// formatQuestion renders q for display. The image URL line is left out
// when the image is attached as its own content part.
func formatQuestion(q quiz.Question, withImageURL bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Question %d** | %s | %s\n\n", q.ID, q.Subject, difficultyLabel(q.Difficulty))
	fmt.Fprintf(&b, "**Title**: %s\n\n", q.Title)
	fmt.Fprintf(&b, "**Description**:\n%s", q.Description)

	if withImageURL && q.ImageURL != "" {
		fmt.Fprintf(&b, "\n\n**Image**: %s", q.ImageURL)
	}
	if q.ImageDescription != "" {
		fmt.Fprintf(&b, "\n\n**Image description**: %s", q.ImageDescription)
	}
	if len(q.Tags) > 0 {
		fmt.Fprintf(&b, "\n\n**Tags**: %s", strings.Join(q.Tags, ", "))
	}

	b.WriteString("\n\n---\n**Tips**:")
	bullets(&b, []string{
		"Read the question and the image description carefully",
		"Submit your answer with the `submit-answer` tool",
		"Ask for hints with the `get-answering-suggestions` tool",
		"Answers are graded by a language model with detailed feedback",
	})
	return b.String()
}

func imageFallback(url string) string {
	return fmt.Sprintf("\n**Question image**: %s\n(The image could not be loaded; open the link to view it)", url)
}

func formatEvaluation(q quiz.Question, answer string, eval grader.Evaluation) string {
	var b strings.Builder
	b.WriteString("**Answer evaluation**\n\n")
	fmt.Fprintf(&b, "**Question**: %s\n\n", q.Title)
	fmt.Fprintf(&b, "**Your answer**:\n%s\n\n", answer)
	fmt.Fprintf(&b, "**Score**: %d/100 (%s)\n\n", eval.Score, levelLabels[eval.CorrectnessLevel])
	fmt.Fprintf(&b, "**Feedback**:\n%s", eval.Feedback)

	if len(eval.Strengths) > 0 {
		b.WriteString("\n\n**Strengths**:")
		bullets(&b, eval.Strengths)
	}
	if len(eval.Improvements) > 0 {
		b.WriteString("\n\n**Improvements**:")
		bullets(&b, eval.Improvements)
	}

	fmt.Fprintf(&b, "\n\n**Detailed analysis**:\n%s", eval.DetailedAnalysis)
	fmt.Fprintf(&b, "\n\n**Reference answer**:\n%s", q.ReferenceAnswer)
	b.WriteString("\n\n---\nKeep going! Use `get-random-question` for the next question.")
	return b.String()
}

func formatSuggestions(q quiz.Question, suggestions string) string {
	return fmt.Sprintf("**Answering suggestions**\n\n**Question**: %s\n\n%s\n\n---\n"+
		"**Note**: These suggestions are for reference only. Work through the question and answer it yourself.",
		q.Title, suggestions)
}

func formatStats(stats quiz.Stats, subjects []string) string {
	var b strings.Builder
	b.WriteString("**Question bank statistics**\n\n")
	fmt.Fprintf(&b, "**Total questions**: %d\n\n", stats.Total)

	b.WriteString("**By subject**:")
	for _, c := range stats.BySubject {
		fmt.Fprintf(&b, "\n• %s: %d", c.Label, c.Count)
	}
	b.WriteString("\n\n**By difficulty**:")
	for _, c := range stats.ByDifficulty {
		fmt.Fprintf(&b, "\n• %s: %d", difficultyLabel(quiz.Difficulty(c.Label)), c.Count)
	}

	fmt.Fprintf(&b, "\n\n**Subjects**: %s", strings.Join(subjects, ", "))
	b.WriteString("\n\n---\nUse `get-random-question` to fetch a question and `submit-answer` to have your answer graded.")
	return b.String()
}
