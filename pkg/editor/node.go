package editor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// node is a lossless element tree. Whitespace-only text between elements is
// dropped and regenerated by the indenting encoder on write.
type node struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*node
	text     string
}

func element(local string, attrs ...xml.Attr) *node {
	return &node{name: xml.Name{Local: local}, attrs: attrs}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) child(local string) *node {
	for _, c := range n.children {
		if c.name.Local == local {
			return c
		}
	}
	return nil
}

// ensure returns the first child named local, appending one when missing.
func (n *node) ensure(local string) *node {
	if c := n.child(local); c != nil {
		return c
	}
	c := element(local)
	n.children = append(n.children, c)
	return c
}

// named returns the index of the first child element called local whose name
// attribute equals value.
func (n *node) named(local, value string) int {
	for i, c := range n.children {
		if c.name.Local != local {
			continue
		}
		if v, _ := c.attr("name"); v == value {
			return i
		}
	}
	return -1
}

func (n *node) remove(idx int) {
	n.children = append(n.children[:idx], n.children[idx+1:]...)
}

func parseTree(raw []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var (
		root  *node
		stack []*node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name, attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			if text := strings.TrimSpace(string(t)); text != "" {
				stack[len(stack)-1].text += text
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return root, nil
}

func (n *node) encode(enc *xml.Encoder) error {
	start := xml.StartElement{Name: n.name, Attr: n.attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.text != "" {
		if err := enc.EncodeToken(xml.CharData(n.text)); err != nil {
			return err
		}
	}
	for _, c := range n.children {
		if err := c.encode(enc); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
