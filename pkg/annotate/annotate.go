// Package annotate attaches inline-editing markers to rendered block markup.
//
// Templates never declare which element shows which field, so the annotator
// reconstructs the association: a Recorder captures the scalar values handed
// to the template (swapping empty values for sentinel tokens), and Annotate
// walks the parsed fragment matching element text and attribute values
// against those recordings. The first recorded field whose value matches
// wins.
//
// Matched text-like fields become directly editable elements:
//
//	<h2 data-fb-inline-field="field_headline">Hello World</h2>
//
// Any other match marks the nearest block-level element with the field key in
// data-fb-fields for popover editing. Unmatched sentinels are always removed.
package annotate

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-fieldblocks/pkg/compose"
	"github.com/goliatone/go-fieldblocks/pkg/model"
)

const (
	AttrInlineField = "data-fb-inline-field"
	AttrFields      = "data-fb-fields"
	AttrPlaceholder = "data-fb-placeholder"
)

// DefaultEditable lists the field types edited in place.
var DefaultEditable = []model.FieldType{
	model.FieldTypeText,
	model.FieldTypeTextarea,
	model.FieldTypeEmail,
	model.FieldTypeURL,
	model.FieldTypeNumber,
}

var blockLevel = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Details: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Header: true, atom.Li: true, atom.Main: true,
	atom.Nav: true, atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true,
	atom.Table: true, atom.Td: true, atom.Th: true, atom.Tr: true, atom.Ul: true,
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithEditable replaces the allow-list of directly editable field types.
func WithEditable(types ...model.FieldType) Option {
	return func(a *Annotator) {
		a.editable = make(map[model.FieldType]bool, len(types))
		for _, t := range types {
			a.editable[t] = true
		}
	}
}

// Annotator decorates rendered fragments.
type Annotator struct {
	editable map[model.FieldType]bool
}

// New constructs an Annotator using DefaultEditable unless overridden.
func New(options ...Option) *Annotator {
	a := &Annotator{}
	WithEditable(DefaultEditable...)(a)
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Annotate returns fragment decorated with editing markers. When the fragment
// cannot be processed the returned markup is fragment with sentinels removed,
// alongside the error that caused the fallback.
func (a *Annotator) Annotate(fragment string, rec *Recorder) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = StripSentinels(fragment)
			err = fmt.Errorf("annotate: recovered from panic: %v", r)
		}
	}()

	entries := rec.Entries()
	if len(entries) == 0 || strings.TrimSpace(fragment) == "" {
		return StripSentinels(fragment), nil
	}

	// Nested-content placeholders are not HTML the parser understands; park
	// them in comments so they survive the round trip untouched.
	var slots []string
	protected := compose.ReplacePlaceholders(fragment, func(placeholder string) string {
		slots = append(slots, placeholder)
		return "<!--fbslot-" + strconv.Itoa(len(slots)-1) + "-->"
	})

	container := fragmentContext(protected)
	nodes, err := html.ParseFragment(strings.NewReader(protected), container)
	if err != nil {
		return StripSentinels(fragment), fmt.Errorf("annotate: parse fragment: %w", err)
	}
	for _, node := range nodes {
		container.AppendChild(node)
	}

	w := walker{annotator: a, entries: entries, root: container}
	w.traverse(container)

	var buf bytes.Buffer
	for child := container.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return StripSentinels(fragment), fmt.Errorf("annotate: render fragment: %w", err)
		}
	}

	rendered := buf.String()
	for i, slot := range slots {
		rendered = strings.Replace(rendered, "<!--fbslot-"+strconv.Itoa(i)+"-->", slot, 1)
	}
	return StripSentinels(rendered), nil
}

// contextParents maps a leading element to the parent it must be parsed in;
// a body context would drop table rows and cells.
var contextParents = map[atom.Atom]atom.Atom{
	atom.Tr:       atom.Tbody,
	atom.Td:       atom.Tr,
	atom.Th:       atom.Tr,
	atom.Tbody:    atom.Table,
	atom.Thead:    atom.Table,
	atom.Tfoot:    atom.Table,
	atom.Caption:  atom.Table,
	atom.Colgroup: atom.Table,
	atom.Col:      atom.Colgroup,
	atom.Option:   atom.Select,
	atom.Optgroup: atom.Select,
}

// fragmentContext returns the element the fragment is parsed in, chosen from
// its first start tag.
func fragmentContext(fragment string) *html.Node {
	parent := atom.Body
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			if p, ok := contextParents[atom.Lookup(name)]; ok {
				parent = p
			}
			break
		}
	}
	return &html.Node{Type: html.ElementNode, DataAtom: parent, Data: parent.String()}
}

type walker struct {
	annotator *Annotator
	entries   []Recorded
	root      *html.Node
}

func (w *walker) traverse(n *html.Node) {
	if n.Type == html.ElementNode && n != w.root {
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
		w.visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.traverse(c)
	}
}

func (w *walker) visit(n *html.Node) {
	if text := directText(n); text != "" {
		if entry, ok := w.match(text); ok {
			if w.annotator.editable[entry.Type] {
				setAttr(n, AttrInlineField, entry.Key)
				if entry.Sentinel && entry.Placeholder != "" {
					setAttr(n, AttrPlaceholder, entry.Placeholder)
				}
			} else if target := w.blockAncestor(n); target != nil {
				addField(target, entry.Key)
			}
		}
	}

	var associated []string
	for i := range n.Attr {
		if strings.HasPrefix(n.Attr[i].Key, "data-fb-") {
			continue
		}
		if entry, ok := w.match(strings.TrimSpace(n.Attr[i].Val)); ok {
			associated = append(associated, entry.Key)
		}
		n.Attr[i].Val = StripSentinels(n.Attr[i].Val)
	}
	for _, key := range associated {
		addField(n, key)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			c.Data = StripSentinels(c.Data)
		}
	}
}

// match returns the first recorded entry matching text.
func (w *walker) match(text string) (Recorded, bool) {
	if text == "" {
		return Recorded{}, false
	}
	for _, entry := range w.entries {
		if entry.Value == text {
			return entry, true
		}
		if entry.Sentinel && strings.Contains(text, entry.Value) {
			return entry, true
		}
	}
	return Recorded{}, false
}

func (w *walker) blockAncestor(n *html.Node) *html.Node {
	for current := n; current != nil && current != w.root; current = current.Parent {
		if current.Type == html.ElementNode && blockLevel[current.DataAtom] {
			return current
		}
	}
	return nil
}

func directText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func setAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func addField(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key != AttrFields {
			continue
		}
		existing := strings.Fields(n.Attr[i].Val)
		for _, field := range existing {
			if field == key {
				return
			}
		}
		n.Attr[i].Val = strings.Join(append(existing, key), " ")
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: AttrFields, Val: key})
}
