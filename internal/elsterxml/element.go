// Package elsterxml implements the generic section serializer producing
// the ordered document tree the ELSTER interface expects: mapping-table
// driven tag names, default tag derivation for unmapped keys, and the
// authority's scalar formatting rules.
package elsterxml

import (
	"encoding/xml"
	"strings"
)

// Attr is a single element attribute. Attributes keep insertion order.
type Attr struct {
	Key   string
	Value string
}

// Element is one node of the output document. Children keep insertion
// order; an element carries either text or children, never both.
type Element struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// NewElement creates a root element.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// Add appends a new child element and returns it.
func (e *Element) Add(tag string) *Element {
	child := &Element{Tag: tag}
	e.Children = append(e.Children, child)
	return child
}

// SetAttr appends an attribute.
func (e *Element) SetAttr(key, value string) *Element {
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
	return e
}

// Render serializes the tree to a UTF-8 document with an XML declaration.
func (e *Element) Render() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	e.write(&b)
	return b.String()
}

func (e *Element) write(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.Tag)
	for _, attr := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(escape(attr.Value))
		b.WriteByte('"')
	}

	if e.Text == "" && len(e.Children) == 0 {
		b.WriteString(" />")
		return
	}

	b.WriteByte('>')
	if e.Text != "" {
		b.WriteString(escape(e.Text))
	}
	for _, child := range e.Children {
		child.write(b)
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
}

func escape(s string) string {
	var b strings.Builder
	// xml.EscapeText never fails on a strings.Builder.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
