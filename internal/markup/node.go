package markup

import (
	"encoding/xml"
	"strings"
)

// Kind identifies what a Node holds.
type Kind int

const (
	ElementNode Kind = iota
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

// Node is one element, text run, comment, processing instruction or
// directive of a parsed document. Only element nodes have children.
type Node struct {
	Kind     Kind
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Node

	// Data holds the character data, comment body, directive body or
	// processing instruction content, depending on Kind.
	Data string
	// Target is the processing instruction target.
	Target string
}

// NewElement builds an element node with the given local name.
func NewElement(local string, children ...*Node) *Node {
	return &Node{Kind: ElementNode, Name: xml.Name{Local: local}, Children: children}
}

// NewText builds a character data node.
func NewText(data string) *Node {
	return &Node{Kind: TextNode, Data: data}
}

// NewComment builds a comment node.
func NewComment(data string) *Node {
	return &Node{Kind: CommentNode, Data: data}
}

// IsElement reports whether n is an element, optionally with the given local name.
func (n *Node) IsElement(local string) bool {
	if n == nil || n.Kind != ElementNode {
		return false
	}
	return local == "" || n.Name.Local == local
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(local string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Element returns the first direct child element with the given local name.
func (n *Node) Element(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.IsElement(local) {
			return c
		}
	}
	return nil
}

// Elements returns every direct child element with the given local name,
// in document order. An empty name matches any element.
func (n *Node) Elements(local string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.IsElement(local) {
			out = append(out, c)
		}
	}
	return out
}

// Find walks a slash separated path of element names starting at n,
// following the first matching child at each step.
func (n *Node) Find(path string) (*Node, bool) {
	cur := n
	for _, step := range strings.Split(path, "/") {
		if step == "" {
			continue
		}
		cur = cur.Element(step)
		if cur == nil {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// Lookup returns the text content at path. A missing path reports false,
// which is distinct from a present but empty element.
func (n *Node) Lookup(path string) (string, bool) {
	found, ok := n.Find(path)
	if !ok {
		return "", false
	}
	return found.Text(), true
}

// TextAt is Lookup without the presence flag; absent paths read as "".
func (n *Node) TextAt(path string) string {
	s, _ := n.Lookup(path)
	return s
}

// Text concatenates all descendant character data in document order.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case TextNode:
		return n.Data
	case ElementNode:
		var b strings.Builder
		n.appendText(&b)
		return b.String()
	default:
		return ""
	}
}

func (n *Node) appendText(b *strings.Builder) {
	for _, c := range n.Children {
		switch c.Kind {
		case TextNode:
			b.WriteString(c.Data)
		case ElementNode:
			c.appendText(b)
		}
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind:   n.Kind,
		Name:   n.Name,
		Data:   n.Data,
		Target: n.Target,
	}
	if len(n.Attrs) > 0 {
		out.Attrs = append([]xml.Attr(nil), n.Attrs...)
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}
