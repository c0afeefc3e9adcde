// Package quiz reads question-bank records out of the markup tree: what
// kind of record it is, what to call it, what to search it by and which
// identity marker it carries.
package quiz

import (
	"strings"

	"github.com/aryannaik/quiz-filter/internal/markup"
	"github.com/aryannaik/quiz-filter/internal/textnorm"
)

const (
	// CategoryKind is the type attribute value of category records.
	CategoryKind = "category"
	// TokenPrefix starts every identity marker comment.
	TokenPrefix = "question:"

	categoryLabel   = "Category: "
	unknownCategory = "unknown"
)

// Entry is a record extracted from a document, not yet admitted anywhere.
type Entry struct {
	DisplayName string
	SearchIndex string
	// Token is the identity marker, verbatim after trimming. Empty means
	// the record had none.
	Token      string
	Kind       string
	IsCategory bool
	Source     *markup.Node
}

// Extract builds an Entry from a top-level record and the comments that
// precede it.
func Extract(rec markup.Entry) Entry {
	el := rec.Element
	kind, _ := el.Attr("type")

	entry := Entry{
		Kind:       kind,
		IsCategory: kind == CategoryKind,
		Token:      IdentityToken(rec.Comments),
		Source:     el,
	}

	if entry.IsCategory {
		entry.DisplayName = CategoryName(el)
		entry.SearchIndex = textnorm.Normalize(textnorm.Join(entry.DisplayName, el.TextAt("info/text")))
		return entry
	}

	entry.DisplayName = textnorm.StripMarkup(el.TextAt("name/text"))
	body := textnorm.StripMarkup(el.TextAt("questiontext/text"))
	entry.SearchIndex = textnorm.Normalize(textnorm.Join(entry.DisplayName, body, AnswerText(el)))
	return entry
}

// CategoryName formats the display label of a category record.
func CategoryName(el *markup.Node) string {
	name, ok := el.Lookup("category/text")
	if !ok {
		return categoryLabel + unknownCategory
	}
	return categoryLabel + textnorm.StripMarkup(name)
}

// AnswerText concatenates the searchable answer text of a question.
// Matching questions contribute each sub-question with its answer;
// everything else contributes its direct answers.
func AnswerText(el *markup.Node) string {
	subs := el.Elements("subquestion")
	if len(subs) > 0 {
		parts := make([]string, 0, len(subs))
		for _, sub := range subs {
			parts = append(parts, textnorm.Join(
				textnorm.StripMarkup(sub.TextAt("text")),
				textnorm.StripMarkup(sub.TextAt("answer/text")),
			))
		}
		return textnorm.Join(parts...)
	}

	answers := el.Elements("answer")
	parts := make([]string, 0, len(answers))
	for _, a := range answers {
		parts = append(parts, textnorm.StripMarkup(a.TextAt("text")))
	}
	return textnorm.Join(parts...)
}

// IdentityToken returns the last comment whose trimmed body starts with
// TokenPrefix, trimmed, or "" when there is none.
func IdentityToken(comments []*markup.Node) string {
	for i := len(comments) - 1; i >= 0; i-- {
		c := comments[i]
		if c == nil || c.Kind != markup.CommentNode {
			continue
		}
		value := strings.TrimSpace(c.Data)
		if strings.HasPrefix(value, TokenPrefix) {
			return value
		}
	}
	return ""
}
