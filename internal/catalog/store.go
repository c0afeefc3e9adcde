package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/aryannaik/quiz-filter/internal/logger"
	"github.com/aryannaik/quiz-filter/internal/markup"
	"github.com/aryannaik/quiz-filter/internal/quiz"
	"github.com/aryannaik/quiz-filter/internal/textnorm"
)

var ErrRecordNotFound = errors.New("catalog: record not found")

// Catalog is the ordered, de-duplicated collection of imported records.
// Records keep their import order for their whole lifetime.
type Catalog struct {
	mu      sync.RWMutex
	records []*Record
	tokens  *Tracker
	query   string
	log     *logger.Logger
}

type Option func(*Catalog)

// WithLogger routes catalog diagnostics to l.
func WithLogger(l *logger.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

// WithCategoryDedup makes category records subject to the same duplicate
// check as questions instead of always being admitted.
func WithCategoryDedup(enabled bool) Option {
	return func(c *Catalog) {
		c.tokens.dedupCategories = enabled
	}
}

func New(opts ...Option) *Catalog {
	c := &Catalog{
		tokens: NewTracker(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Import adds every admissible record of doc in document order.
// Duplicates are skipped silently and counted.
func (c *Catalog) Import(doc *markup.Document) ImportStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.importLocked(doc)
}

func (c *Catalog) importLocked(doc *markup.Document) ImportStats {
	var stats ImportStats
	if doc == nil {
		return stats
	}

	// Extract everything before touching state.
	entries := doc.Records()
	extracted := make([]quiz.Entry, len(entries))
	for i, e := range entries {
		extracted[i] = quiz.Extract(e)
	}

	folded := textnorm.FoldQuery(c.query)
	for _, entry := range extracted {
		if !c.tokens.Admit(entry.Token, entry.IsCategory) {
			stats.Skipped++
			c.log.Debug("skipping duplicate record", "token", entry.Token, "name", entry.DisplayName)
			continue
		}
		c.records = append(c.records, &Record{
			ID:      uuid.New(),
			Entry:   entry,
			Visible: matches(entry.SearchIndex, folded),
		})
		stats.Added++
	}

	c.log.Debug("imported document", "unit", doc.Name, "added", stats.Added, "skipped", stats.Skipped)
	return stats
}

// ImportSources parses the sources concurrently and then imports the
// ones that parsed, in the order given. A unit that fails to parse is
// reported in Failures and leaves the catalog untouched.
func (c *Catalog) ImportSources(ctx context.Context, sources []markup.Source) (ImportResult, error) {
	parsed, err := markup.ParseAll(ctx, sources)
	if err != nil {
		return ImportResult{}, fmt.Errorf("catalog: import: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var result ImportResult
	for _, p := range parsed {
		if p.Err != nil {
			var perr *markup.ParseError
			if !errors.As(p.Err, &perr) {
				perr = &markup.ParseError{Unit: p.Name, Err: p.Err}
			}
			result.Failures = append(result.Failures, perr)
			c.log.Warn("failed to parse unit", "unit", p.Name, "error", p.Err)
			continue
		}
		stats := c.importLocked(p.Document)
		result.Added += stats.Added
		result.Skipped += stats.Skipped
		result.Units = append(result.Units, UnitStats{Name: p.Name, ImportStats: stats})
	}
	return result, nil
}

// ApplyFilter makes visible exactly the records whose search index
// contains query, case-insensitively. An empty query shows everything.
// It returns the number of visible records.
func (c *Catalog) ApplyFilter(query string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = query
	folded := textnorm.FoldQuery(query)
	visible := 0
	for _, r := range c.records {
		r.Visible = matches(r.SearchIndex, folded)
		if r.Visible {
			visible++
		}
	}
	return visible
}

func matches(index, folded string) bool {
	return folded == "" || strings.Contains(index, folded)
}

// Query returns the filter most recently applied.
func (c *Catalog) Query() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// SetSelected marks a record for export or clears the mark.
func (c *Catalog) SetSelected(id uuid.UUID, selected bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.findLocked(id)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	r.Selected = selected
	return nil
}

// SelectVisible sets the selection flag of every visible record and
// returns how many records it touched.
func (c *Catalog) SelectVisible(selected bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, r := range c.records {
		if r.Visible {
			r.Selected = selected
			n++
		}
	}
	return n
}

// Remove deletes one record and frees its identity token.
func (c *Catalog) Remove(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, r := range c.records {
		if r.ID == id {
			c.tokens.Release(r.Token)
			c.records = append(c.records[:i], c.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
}

// ClearUnselected drops every unselected record, releasing its token.
// Selected records keep their relative order. It returns the number of
// records removed.
func (c *Catalog) ClearUnselected() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.records[:0]
	removed := 0
	for _, r := range c.records {
		if r.Selected {
			kept = append(kept, r)
			continue
		}
		c.tokens.Release(r.Token)
		removed++
	}
	for i := len(kept); i < len(c.records); i++ {
		c.records[i] = nil
	}
	c.records = kept

	c.log.Info("cleared unselected records", "removed", removed, "remaining", len(kept))
	return removed
}

// ClearAll removes every record and forgets every token.
func (c *Catalog) ClearAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.records)
	c.records = nil
	c.tokens.Reset()

	c.log.Info("cleared catalog", "removed", removed)
	return removed
}

// Records returns a snapshot of every record in catalog order.
func (c *Catalog) Records() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = *r
	}
	return out
}

// Get returns a copy of the record with the given ID, or nil if not found.
func (c *Catalog) Get(id uuid.UUID) *Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r := c.findLocked(id)
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

func (c *Catalog) findLocked(id uuid.UUID) *Record {
	for _, r := range c.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// HasToken reports whether a record with token is in the catalog.
func (c *Catalog) HasToken(token string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens.Has(token)
}

// Count returns the number of records.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Total: len(c.records), Tokens: c.tokens.Len()}
	for _, r := range c.records {
		if r.Selected {
			s.Selected++
		}
		if r.Visible {
			s.Visible++
		}
		if r.IsCategory {
			s.Categories++
		}
	}
	return s
}
