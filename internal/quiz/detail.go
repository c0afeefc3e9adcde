package quiz

import (
	"github.com/aryannaik/quiz-filter/internal/markup"
	"github.com/aryannaik/quiz-filter/internal/textnorm"
)

// Item is one line of a detail view. For matching questions Text is the
// sub-question and Answer its match; otherwise Text is an answer option
// and Answer is empty.
type Item struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

// Detail is the readable breakdown of a single record.
type Detail struct {
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	QuestionText string `json:"questionText"`
	Items        []Item `json:"items"`
}

// Describe renders the markup-free detail view of a record element.
func Describe(el *markup.Node) Detail {
	kind, _ := el.Attr("type")
	if kind == CategoryKind {
		return Detail{
			Name:         CategoryName(el),
			Kind:         kind,
			QuestionText: textnorm.StripMarkup(el.TextAt("info/text")),
			Items:        []Item{},
		}
	}

	d := Detail{
		Name:         textnorm.StripMarkup(el.TextAt("name/text")),
		Kind:         kind,
		QuestionText: textnorm.StripMarkup(el.TextAt("questiontext/text")),
		Items:        []Item{},
	}

	if subs := el.Elements("subquestion"); len(subs) > 0 {
		for _, sub := range subs {
			d.Items = append(d.Items, Item{
				Text:   textnorm.StripMarkup(sub.TextAt("text")),
				Answer: textnorm.StripMarkup(sub.TextAt("answer/text")),
			})
		}
		return d
	}

	for _, a := range el.Elements("answer") {
		d.Items = append(d.Items, Item{Text: textnorm.StripMarkup(a.TextAt("text"))})
	}
	return d
}
