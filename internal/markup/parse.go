package markup

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/ianaindex"
)

var (
	ErrNoRoot         = errors.New("markup: document has no root element")
	ErrTrailingMarkup = errors.New("markup: element found after the root element")
)

// ParseError reports a unit of input that could not be parsed.
type ParseError struct {
	Unit string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Unit == "" {
		return fmt.Sprintf("markup: parse: %v", e.Err)
	}
	return fmt.Sprintf("markup: parse %s: %v", e.Unit, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Document is a parsed file: the nodes that precede the root element and
// the root element itself.
type Document struct {
	Name   string
	Prolog []*Node
	Root   *Node
}

// Parse reads a whole XML document from r.
func Parse(r io.Reader) (*Document, error) {
	return parseNamed("", r)
}

// ParseBytes parses data as a document labelled with name in errors.
func ParseBytes(name string, data []byte) (*Document, error) {
	return parseNamed(name, bytes.NewReader(data))
}

// charsetReader converts input declared in any IANA-registered encoding
// to UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("markup: unsupported encoding %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("markup: unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func parseNamed(name string, r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charsetReader
	doc := &Document{Name: name}

	var stack []*Node
	closed := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Unit: name, Err: err}
		}

		var node *Node
		switch t := token.(type) {
		case xml.StartElement:
			if closed {
				return nil, &ParseError{Unit: name, Err: ErrTrailingMarkup}
			}
			el := &Node{Kind: ElementNode, Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				doc.Root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
			continue
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				closed = true
			}
			continue
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			node = &Node{Kind: TextNode, Data: string(t)}
		case xml.Comment:
			node = &Node{Kind: CommentNode, Data: string(t)}
		case xml.ProcInst:
			node = &Node{Kind: ProcInstNode, Target: t.Target, Data: string(t.Inst)}
		case xml.Directive:
			node = &Node{Kind: DirectiveNode, Data: string(t)}
		default:
			continue
		}

		switch {
		case len(stack) > 0:
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		case !closed:
			doc.Prolog = append(doc.Prolog, node)
		}
	}

	if doc.Root == nil {
		return nil, &ParseError{Unit: name, Err: ErrNoRoot}
	}
	return doc, nil
}

// Entry is one top-level record element together with the comments
// that sit between it and the previous record element.
type Entry struct {
	Comments []*Node
	Element  *Node
}

// Records lists the element children of the root in document order.
func (d *Document) Records() []Entry {
	if d == nil || d.Root == nil {
		return nil
	}
	var (
		out     []Entry
		pending []*Node
	)
	for _, child := range d.Root.Children {
		switch child.Kind {
		case CommentNode:
			pending = append(pending, child)
		case ElementNode:
			out = append(out, Entry{Comments: pending, Element: child})
			pending = nil
		}
	}
	return out
}

// Source is one named unit of raw input.
type Source struct {
	Name string
	Data []byte
}

// Result is the outcome of parsing one Source.
type Result struct {
	Name     string
	Document *Document
	Err      error
}

const defaultParseLimit = 4

// ParseAll parses every source concurrently. Results keep the order of
// sources; a failing unit carries its *ParseError and does not affect
// the others. The returned error is non-nil only if ctx was cancelled.
func ParseAll(ctx context.Context, sources []Source) ([]Result, error) {
	results := make([]Result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultParseLimit)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := ParseBytes(src.Name, src.Data)
			results[i] = Result{Name: src.Name, Document: doc, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
