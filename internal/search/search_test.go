package search

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/aryannaik/quiz-filter/internal/catalog"
	"github.com/aryannaik/quiz-filter/internal/markup"
	"github.com/aryannaik/quiz-filter/internal/quiz"
)

const bank = `<quiz>
<!-- question: 1 -->
<question type="multichoice">
  <name><text>Capital</text></name>
  <questiontext><text><![CDATA[<p>Capital of France?</p>]]></text></questiontext>
  <answer><text>Paris</text></answer>
  <answer><text>London</text></answer>
</question>
<question type="matching">
  <name><text>Sum</text></name>
  <subquestion><text>1+1</text><answer><text>2</text></answer></subquestion>
</question>
</quiz>`

func newSearcher(t *testing.T) (*Searcher, *catalog.Catalog) {
	t.Helper()
	doc, err := markup.ParseBytes("bank.xml", []byte(bank))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := catalog.New()
	c.Import(doc)
	return NewSearcher(c), c
}

func TestFilter(t *testing.T) {
	s, _ := newSearcher(t)

	results := s.Filter("LONDON", 0)
	if len(results) != 1 || results[0].Title != "Capital" {
		t.Fatalf("unexpected results %+v", results)
	}
	r := results[0]
	if r.Snippet != "Capital of France?" || r.Token != "question: 1" || r.Kind != "multichoice" || !r.Visible {
		t.Fatalf("unexpected result %+v", r)
	}

	if all := s.List(false, 0); len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
	if visible := s.List(true, 0); len(visible) != 1 {
		t.Fatalf("expected filter to persist, got %d visible", len(visible))
	}
	if limited := s.Filter("", 1); len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestSnippetFallsBackToItems(t *testing.T) {
	s, _ := newSearcher(t)
	results := s.List(false, 0)
	if results[1].Snippet != "1+1 2" {
		t.Fatalf("unexpected snippet %q", results[1].Snippet)
	}
}

func TestDetail(t *testing.T) {
	s, c := newSearcher(t)
	id := c.Records()[1].ID

	d, err := s.Detail(id)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.Detail.Name != "Sum" || len(d.Detail.Items) != 1 || d.Detail.Items[0].Answer != "2" || d.Record.ID != id.String() {
		t.Fatalf("unexpected detail %+v", d)
	}

	if _, err := s.Detail(uuid.New()); !errors.Is(err, catalog.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestBuildSnippetTruncatesRunes(t *testing.T) {
	long := strings.Repeat("ü", snippetLen+5)
	got := buildSnippet(quiz.Detail{QuestionText: long})
	if got != strings.Repeat("ü", snippetLen)+"..." {
		t.Fatalf("unexpected truncation, got %d runes", len([]rune(got)))
	}
	if buildSnippet(quiz.Detail{}) != "" {
		t.Fatalf("expected empty snippet")
	}
}
