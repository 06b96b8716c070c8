package grader

import (
	"math"

	"github.com/tidwall/gjson"
)

// Correctness levels.
const (
	Correct          = "correct"
	PartiallyCorrect = "partially_correct"
	Incorrect        = "incorrect"
)

// Evaluation is the graded result of one answer.
type Evaluation struct {
	Score            int
	Feedback         string
	Strengths        []string
	Improvements     []string
	CorrectnessLevel string
	DetailedAnalysis string
}

const (
	maxRawFeedback = 500

	defaultFeedback = "No feedback was generated"
	defaultAnalysis = "No detailed analysis available"
)

// Unavailable is returned when no model output could be obtained at all.
func Unavailable() Evaluation {
	return Evaluation{
		Score:            0,
		Feedback:         "The grading service is temporarily unavailable. Please try again later.",
		Strengths:        []string{},
		Improvements:     []string{"Check the network connection or contact the administrator"},
		CorrectnessLevel: Incorrect,
		DetailedAnalysis: "The answer could not be evaluated",
	}
}

// Unparsed is returned when the model replied but no usable JSON object was
// found in the reply.
func Unparsed(raw string) Evaluation {
	feedback := truncate(raw, maxRawFeedback)
	if feedback == "" {
		feedback = "A reply was received, but it could not be evaluated in detail"
	}
	return Evaluation{
		Score:            60,
		Feedback:         feedback,
		Strengths:        []string{"An answer was provided"},
		Improvements:     []string{"Compare your answer with the reference answer"},
		CorrectnessLevel: PartiallyCorrect,
		DetailedAnalysis: "The detailed evaluation could not be parsed; a manual review is recommended",
	}
}

// ParseEvaluation reads the first balanced JSON object in raw. Missing or
// malformed fields get defaults; the score is rounded and clamped to
// [0, 100].
func ParseEvaluation(raw string) Evaluation {
	eval, _ := parseEvaluation(raw)
	return eval
}

// parseEvaluation reports false when it had to fall back to Unparsed.
func parseEvaluation(raw string) (Evaluation, bool) {
	obj, ok := ExtractJSONObject(raw)
	if !ok || !gjson.Valid(obj) {
		return Unparsed(raw), false
	}
	parsed := gjson.Parse(obj)

	eval := Evaluation{
		Score:            clampScore(parsed.Get("score")),
		Feedback:         nonEmpty(parsed.Get("feedback"), defaultFeedback),
		Strengths:        stringList(parsed.Get("strengths")),
		Improvements:     stringList(parsed.Get("improvements")),
		CorrectnessLevel: Incorrect,
		DetailedAnalysis: nonEmpty(parsed.Get("detailedAnalysis"), defaultAnalysis),
	}
	switch level := parsed.Get("correctnessLevel").String(); level {
	case Correct, PartiallyCorrect, Incorrect:
		eval.CorrectnessLevel = level
	}
	return eval, true
}

// ExtractJSONObject returns the balanced {...} span starting at the first
// '{' in s. Braces inside JSON strings are ignored.
func ExtractJSONObject(s string) (string, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func clampScore(v gjson.Result) int {
	if v.Type != gjson.Number && v.Type != gjson.String {
		return 0
	}
	f := v.Float()
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(f))))
}

func nonEmpty(v gjson.Result, fallback string) string {
	if s := v.String(); s != "" {
		return s
	}
	return fallback
}

func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		out = append(out, item.String())
	}
	return out
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
