package catalog

import (
	"github.com/google/uuid"

	"github.com/aryannaik/quiz-filter/internal/markup"
	"github.com/aryannaik/quiz-filter/internal/quiz"
)

// Record is one catalog entry: an extracted question or category plus
// the flags the user and the filter change.
type Record struct {
	ID uuid.UUID
	quiz.Entry

	Selected bool
	Visible  bool
}

// ImportStats counts the outcome of importing one document.
type ImportStats struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// ImportResult is the outcome of importing several units at once.
type ImportResult struct {
	Added    int
	Skipped  int
	Units    []UnitStats
	Failures []*markup.ParseError
}

// UnitStats is ImportStats for one named unit.
type UnitStats struct {
	Name string `json:"name"`
	ImportStats
}

// Stats summarises catalog state for status displays.
type Stats struct {
	Total      int `json:"total"`
	Selected   int `json:"selected"`
	Visible    int `json:"visible"`
	Categories int `json:"categories"`
	Tokens     int `json:"tokens"`
}
