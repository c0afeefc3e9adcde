package markup

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Encode writes d as an XML document with a standard header. The
// original <?xml ...?> declaration, if any, is replaced by that header.
func (d *Document) Encode(w io.Writer) error {
	if d == nil || d.Root == nil {
		return ErrNoRoot
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("markup: write header: %w", err)
	}

	encoder := xml.NewEncoder(w)
	for _, node := range d.Prolog {
		if node.Kind == ProcInstNode && node.Target == "xml" {
			continue
		}
		if err := encodeNode(encoder, node); err != nil {
			return err
		}
		if err := encoder.EncodeToken(xml.CharData("\n")); err != nil {
			return fmt.Errorf("markup: encode prolog: %w", err)
		}
	}
	if err := encodeNode(encoder, d.Root); err != nil {
		return err
	}
	if err := encoder.Flush(); err != nil {
		return fmt.Errorf("markup: flush: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal returns the encoded form of d.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalFragment encodes nodes without a header or wrapping element.
func MarshalFragment(nodes ...*Node) ([]byte, error) {
	var buf bytes.Buffer
	encoder := xml.NewEncoder(&buf)
	for _, node := range nodes {
		if err := encodeNode(encoder, node); err != nil {
			return nil, err
		}
	}
	if err := encoder.Flush(); err != nil {
		return nil, fmt.Errorf("markup: flush: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeNode(encoder *xml.Encoder, node *Node) error {
	var err error
	switch node.Kind {
	case TextNode:
		err = encoder.EncodeToken(xml.CharData(node.Data))
	case CommentNode:
		err = encoder.EncodeToken(xml.Comment(node.Data))
	case ProcInstNode:
		err = encoder.EncodeToken(xml.ProcInst{Target: node.Target, Inst: []byte(node.Data)})
	case DirectiveNode:
		err = encoder.EncodeToken(xml.Directive(node.Data))
	case ElementNode:
		start := xml.StartElement{Name: node.Name, Attr: node.Attrs}
		if err := encoder.EncodeToken(start); err != nil {
			return fmt.Errorf("markup: encode <%s>: %w", node.Name.Local, err)
		}
		for _, child := range node.Children {
			if err := encodeNode(encoder, child); err != nil {
				return err
			}
		}
		err = encoder.EncodeToken(start.End())
	}
	if err != nil {
		return fmt.Errorf("markup: encode: %w", err)
	}
	return nil
}
