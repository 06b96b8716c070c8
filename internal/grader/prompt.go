package grader

import (
	"fmt"

	"github.com/felixgeelhaar/mcp-adapters/internal/quiz"
)

const noImage = "No image"

func imageDescription(q quiz.Question) string {
	if q.ImageDescription == "" {
		return noImage
	}
	return q.ImageDescription
}

// EvaluationPrompt asks the model to grade answer against q's reference
// answer and reply with a JSON object.
func EvaluationPrompt(q quiz.Question, answer string) string {
	return fmt.Sprintf(`You are an experienced subject instructor. Grade the student's answer using the information below.

Question:
- Title: %s
- Description: %s
- Subject: %s
- Difficulty: %s
- Image description: %s
- Reference answer: %s

Student answer:
%s

Return the result in exactly this JSON format:
{
    "score": 85,
    "feedback": "A good answer overall; the main ideas are correct...",
    "strengths": ["Understands the key concept", "Clear reasoning"],
    "improvements": ["Show the calculation in more detail", "Watch the units"],
    "correctnessLevel": "partially_correct",
    "detailedAnalysis": "A detailed explanation..."
}

Grading criteria:
1. Accuracy (40%%): is the answer correct
2. Completeness (30%%): does it cover every required point
3. Reasoning (20%%): is the reasoning clear
4. Expression (10%%): is the language precise

correctnessLevel values:
- "correct": the answer is fully correct
- "partially_correct": the answer is partly correct
- "incorrect": the answer is wrong

Make sure the reply is valid JSON.`,
		q.Title, q.Description, q.Subject, q.Difficulty, imageDescription(q), q.ReferenceAnswer, answer)
}

// SuggestionsPrompt asks the model for guidance on approaching q.
func SuggestionsPrompt(q quiz.Question) string {
	return fmt.Sprintf(`As a subject instructor, give answering advice and a solution approach for the following question:

Question: %s
Description: %s
Subject: %s
Difficulty: %s
Image description: %s

Please cover:
1. How to approach and solve it
2. Key points to watch
3. Common mistakes
4. Advice for writing the answer

Keep it concise and clear so the student can understand and answer the question.`,
		q.Title, q.Description, q.Subject, q.Difficulty, imageDescription(q))
}
