package search

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aryannaik/quiz-filter/internal/catalog"
	"github.com/aryannaik/quiz-filter/internal/quiz"
)

const snippetLen = 200

// Result is a catalog record as returned to the frontend.
type Result struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	IsCategory bool   `json:"isCategory"`
	Selected   bool   `json:"selected"`
	Visible    bool   `json:"visible"`
	Token      string `json:"token,omitempty"`
	Snippet    string `json:"snippet"`
}

// DetailResult is the full breakdown of one record.
type DetailResult struct {
	Record Result      `json:"record"`
	Detail quiz.Detail `json:"detail"`
}

type Searcher struct {
	catalog *catalog.Catalog
}

func NewSearcher(c *catalog.Catalog) *Searcher {
	return &Searcher{catalog: c}
}

// Filter applies query to the catalog and returns the visible records in
// catalog order, at most limit of them when limit > 0.
func (s *Searcher) Filter(query string, limit int) []Result {
	s.catalog.ApplyFilter(query)
	return s.List(true, limit)
}

// List returns catalog records in order, optionally only the visible ones.
func (s *Searcher) List(visibleOnly bool, limit int) []Result {
	records := s.catalog.Records()
	results := make([]Result, 0, len(records))
	for _, r := range records {
		if visibleOnly && !r.Visible {
			continue
		}
		results = append(results, toResult(r))
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results
}

// Detail returns the detail view of the record with the given ID.
func (s *Searcher) Detail(id uuid.UUID) (*DetailResult, error) {
	r := s.catalog.Get(id)
	if r == nil {
		return nil, fmt.Errorf("record %s: %w", id, catalog.ErrRecordNotFound)
	}
	return &DetailResult{
		Record: toResult(*r),
		Detail: quiz.Describe(r.Source),
	}, nil
}

func toResult(r catalog.Record) Result {
	return Result{
		ID:         r.ID.String(),
		Title:      r.DisplayName,
		Kind:       r.Kind,
		IsCategory: r.IsCategory,
		Selected:   r.Selected,
		Visible:    r.Visible,
		Token:      r.Token,
		Snippet:    buildSnippet(quiz.Describe(r.Source)),
	}
}

func buildSnippet(d quiz.Detail) string {
	if s := strings.TrimSpace(d.QuestionText); s != "" {
		return truncate(s)
	}

	if len(d.Items) > 0 {
		parts := make([]string, 0, len(d.Items))
		for _, it := range d.Items {
			parts = append(parts, strings.TrimSpace(it.Text+" "+it.Answer))
		}
		return truncate(strings.Join(parts, " "))
	}

	return ""
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) > snippetLen {
		return string(runes[:snippetLen]) + "..."
	}
	return s
}
