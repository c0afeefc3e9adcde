package catalog

import (
	"io"

	"github.com/aryannaik/quiz-filter/internal/markup"
)

// RootElement names the container of exported documents.
const RootElement = "quiz"

// Export assembles the selected records into a new document: categories
// first, then questions, each group in catalog order, every record
// preceded by its identity comment when it has one. Record nodes are
// copies of the ones captured at import; the catalog is not modified.
func (c *Catalog) Export() *markup.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var categories, questions []*Record
	for _, r := range c.records {
		if !r.Selected {
			continue
		}
		if r.IsCategory {
			categories = append(categories, r)
		} else {
			questions = append(questions, r)
		}
	}

	root := markup.NewElement(RootElement)
	for _, group := range [][]*Record{categories, questions} {
		for _, r := range group {
			if r.Token != "" {
				root.Children = append(root.Children, markup.NewText("\n"), markup.NewComment(r.Token))
			}
			root.Children = append(root.Children, markup.NewText("\n"), r.Source.Clone())
		}
	}
	if len(root.Children) > 0 {
		root.Children = append(root.Children, markup.NewText("\n"))
	}

	return &markup.Document{Root: root}
}

// ExportTo encodes the current selection to w.
func (c *Catalog) ExportTo(w io.Writer) error {
	return c.Export().Encode(w)
}
