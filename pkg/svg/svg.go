// Package svg is a minimal SVG element tree with a deterministic writer.
// Attributes keep insertion order and numbers are formatted with a fixed
// number of decimal digits, so identical trees always serialize to
// identical bytes.
package svg

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// Namespace is the SVG XML namespace.
const Namespace = "http://www.w3.org/2000/svg"

// Node is an element or a piece of character data.
type Node interface {
	write(w *bufio.Writer)
	isText() bool
}

// Attr is one attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is an SVG/XML element.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []Node
}

// Text is escaped character data.
type Text string

// New returns an element with the given name.
func New(name string) *Element {
	return &Element{Name: name}
}

// Set sets an attribute, replacing an existing one in place.
func (e *Element) Set(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Get returns an attribute value.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Append adds children and returns e.
func (e *Element) Append(children ...Node) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Add appends a new child element and returns it.
func (e *Element) Add(name string) *Element {
	child := New(name)
	e.Children = append(e.Children, child)
	return child
}

// Text appends character data and returns e.
func (e *Element) Text(s string) *Element {
	e.Children = append(e.Children, Text(s))
	return e
}

// Find returns the first descendant (depth-first) with the given name.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			if el.Name == name {
				return el
			}
			if found := el.Find(name); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindAll returns all descendants with the given name in document order.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			if el.Name == name {
				out = append(out, el)
			}
			out = append(out, el.FindAll(name)...)
		}
	}
	return out
}

func (e *Element) isText() bool { return false }

// inline reports whether the element must be written on one line: it holds
// character data or preserves whitespace, where extra newlines would show.
func (e *Element) inline() bool {
	if v, ok := e.Get("xml:space"); ok && v == "preserve" {
		return true
	}
	for _, c := range e.Children {
		if c.isText() {
			return true
		}
	}
	return false
}

func (t Text) isText() bool { return true }

func (t Text) write(w *bufio.Writer) {
	_, _ = textEscaper.WriteString(w, string(t))
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func (e *Element) write(w *bufio.Writer) {
	w.WriteByte('<')
	w.WriteString(e.Name)
	for _, a := range e.Attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		_, _ = attrEscaper.WriteString(w, a.Value)
		w.WriteByte('"')
	}
	if len(e.Children) == 0 {
		w.WriteString("/>")
		return
	}
	w.WriteByte('>')

	inline := e.inline()
	for _, c := range e.Children {
		if !inline {
			w.WriteByte('\n')
		}
		c.write(w)
	}
	if !inline {
		w.WriteByte('\n')
	}
	w.WriteString("</")
	w.WriteString(e.Name)
	w.WriteByte('>')
}

// Document is a complete SVG document.
type Document struct {
	Root *Element
}

// NewDocument returns a document with an <svg> root in the SVG namespace.
func NewDocument() *Document {
	return &Document{Root: New("svg").Set("xmlns", Namespace)}
}

// WriteTo serializes the document followed by a newline.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	d.Root.write(bw)
	bw.WriteByte('\n')
	err := bw.Flush()
	return cw.n, err
}

// String serializes the document.
func (d *Document) String() string {
	var sb strings.Builder
	_, _ = d.WriteTo(&sb)
	return sb.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Num formats v with at most precision decimal digits, trimming trailing
// zeros. Negative zero is written as "0".
func Num(v float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	p := math.Pow10(precision)
	r := math.Round(v*p) / p
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
