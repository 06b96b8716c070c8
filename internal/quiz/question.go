// Package quiz is the in-memory question catalog.
package quiz

import (
	"encoding/base64"
	"slices"
	"time"
)

// Difficulty grades a question.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every level in ascending order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d is one of the three levels.
func (d Difficulty) Valid() bool {
	return slices.Contains(Difficulties, d)
}

// Question is one catalog entry.
type Question struct {
	ID               int
	Title            string
	Description      string
	ImageURL         string
	ImageDescription string
	ReferenceAnswer  string
	Difficulty       Difficulty
	Subject          string
	Tags             []string
	CreatedAt        time.Time
}

// HasImage reports whether the question links an image.
func (q Question) HasImage() bool {
	return q.ImageURL != ""
}

func (q Question) clone() Question {
	q.Tags = slices.Clone(q.Tags)
	return q
}

const parabolaSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="240" height="200" viewBox="-1 -2 6 5">
<g transform="scale(1,-1) translate(0,-2)" fill="none" stroke-width="0.05">
<path d="M-1 0H5M0 -2V3" stroke="#888"/>
<path d="M0 3Q2 -5 4 3" stroke="#1565c0"/>
<circle cx="2" cy="-1" r="0.08" fill="#c62828"/>
</g>
</svg>`

func date(day int) time.Time {
	return time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC)
}

// Seed returns the catalog the quiz server starts with.
func Seed() []Question {
	return []Question{
		{
			ID:               1,
			Title:            "Reading a quadratic function graph",
			Description:      "Study the graph of the quadratic function. Give its axis of symmetry and vertex, then write the function's equation.",
			ImageURL:         "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(parabolaSVG)),
			ImageDescription: "An upward-opening parabola with vertex (2, -1) passing through (0, 3) and (4, 3)",
			ReferenceAnswer:  "The axis of symmetry is x=2 and the vertex is (2, -1); the function is y = (x-2)² - 1, i.e. y = x² - 4x + 3",
			Difficulty:       Medium,
			Subject:          "Math",
			Tags:             []string{"quadratic functions", "graph analysis", "equations"},
			CreatedAt:        date(1),
		},
		{
			ID:               2,
			Title:            "Similar triangles",
			Description:      "Decide whether the two triangles in the figure are similar and explain why. If they are, find the similarity ratio.",
			ImageURL:         "https://example.com/similar-triangles.png",
			ImageDescription: "Two triangles ABC and DEF with angle A = angle D = 60°, AB=6, AC=8, DE=9, DF=12",
			ReferenceAnswer:  "The triangles are similar: angle A = angle D = 60° and AB/DE = AC/DF = 6/9 = 8/12 = 2/3, so SAS similarity holds. The ratio is 2:3.",
			Difficulty:       Medium,
			Subject:          "Math",
			Tags:             []string{"triangles", "similarity", "geometry"},
			CreatedAt:        date(2),
		},
		{
			ID:               3,
			Title:            "Circuit analysis",
			Description:      "Analyze the series-parallel circuit in the figure. Compute the total resistance and the current in each branch. The supply voltage is 12V.",
			ImageURL:         "https://example.com/circuit-diagram.png",
			ImageDescription: "A mixed circuit: R1=4Ω in series with the parallel pair R2=6Ω and R3=3Ω",
			ReferenceAnswer:  "R2 and R3 in parallel give 2Ω, so the total is 4+2=6Ω. Total current is 12V/6Ω=2A, which flows through R1; the R2 branch carries 2/3A and the R3 branch 4/3A.",
			Difficulty:       Hard,
			Subject:          "Physics",
			Tags:             []string{"circuits", "series and parallel", "Ohm's law"},
			CreatedAt:        date(3),
		},
		{
			ID:               4,
			Title:            "Balancing a chemical equation",
			Description:      "Balance the reaction shown in the figure and name the reaction type.",
			ImageURL:         "https://example.com/chemical-equation.png",
			ImageDescription: "Aluminium reacting with oxygen to form aluminium oxide: Al + O₂ → Al₂O₃",
			ReferenceAnswer:  "4Al + 3O₂ → 2Al₂O₃; it is a combination (oxidation) reaction",
			Difficulty:       Easy,
			Subject:          "Chemistry",
			Tags:             []string{"chemical equations", "balancing", "combination reactions"},
			CreatedAt:        date(4),
		},
		{
			ID:               5,
			Title:            "Sentence structure",
			Description:      "Analyze the structure of the sentence and identify its parts and grammar points.",
			ImageURL:         "https://example.com/sentence-structure.png",
			ImageDescription: "Sentence: 'The book that I bought yesterday is very interesting.' The relative clause needs analysis",
			ReferenceAnswer:  "Main clause: 'The book is very interesting'. Relative clause: 'that I bought yesterday' modifies 'book'; the relative pronoun 'that' is the object inside the clause.",
			Difficulty:       Medium,
			Subject:          "English",
			Tags:             []string{"relative clauses", "grammar", "sentence structure"},
			CreatedAt:        date(5),
		},
	}
}
