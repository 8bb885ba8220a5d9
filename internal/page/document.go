// Package page models the recipe generator's HTML page as a mutable
// document. It is the DOM the recipe client reads its inputs from and
// renders results into.
package page

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrElementNotFound is returned when a required element is absent from the page.
var ErrElementNotFound = errors.New("element not found")

// Page is an HTML document whose elements can be read and mutated
// concurrently. All reads and writes are serialized on one lock.
type Page struct {
	mu  sync.Mutex
	doc *goquery.Document
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Page{doc: doc}, nil
}

// ParseString reads an HTML document from a string.
func ParseString(s string) (*Page, error) {
	return Parse(strings.NewReader(s))
}

// ElementByID returns the element with the given id.
func (p *Page) ElementByID(id string) (*Element, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sel := p.doc.Find("#" + id).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &Element{page: p, sel: sel}, true
}

// MustElementByID is ElementByID returning ErrElementNotFound for a missing id.
func (p *Page) MustElementByID(id string) (*Element, error) {
	el, ok := p.ElementByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}
	return el, nil
}

// HTML renders the whole document.
func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Html()
}

// Element is a handle on a single node of a Page.
type Element struct {
	page *Page
	sel  *goquery.Selection
}

// Value returns the current form value of an input, textarea or select.
func (e *Element) Value() string {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()

	switch goquery.NodeName(e.sel) {
	case "textarea":
		return e.sel.Text()
	case "select":
		opt := e.sel.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = e.sel.Find("option").First()
		}
		if v, ok := opt.Attr("value"); ok {
			return v
		}
		return strings.TrimSpace(opt.Text())
	default:
		return e.sel.AttrOr("value", "")
	}
}

// SetValue sets the form value of an input, textarea or select. For a select
// the first option with a matching value becomes the selected one.
func (e *Element) SetValue(v string) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()

	switch goquery.NodeName(e.sel) {
	case "textarea":
		e.sel.SetText(v)
	case "select":
		e.sel.Find("option").RemoveAttr("selected")
		e.sel.Find("option").FilterFunction(func(_ int, opt *goquery.Selection) bool {
			if val, ok := opt.Attr("value"); ok {
				return val == v
			}
			return strings.TrimSpace(opt.Text()) == v
		}).First().SetAttr("selected", "selected")
	default:
		e.sel.SetAttr("value", v)
	}
}

func (e *Element) AddClass(class string) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.sel.AddClass(class)
	e.normalizeClass()
}

func (e *Element) RemoveClass(class string) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.sel.RemoveClass(class)
	e.normalizeClass()
}

// normalizeClass rewrites the class attribute as single-space separated
// tokens, the way classList serializes it. Callers hold the page lock.
func (e *Element) normalizeClass() {
	if class, ok := e.sel.Attr("class"); ok {
		e.sel.SetAttr("class", strings.Join(strings.Fields(class), " "))
	}
}

func (e *Element) HasClass(class string) bool {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.sel.HasClass(class)
}

// SetText replaces the element's children with a single text node. The text
// is never interpreted as markup.
func (e *Element) SetText(text string) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.sel.SetText(text)
}

// SetHTML replaces the element's children with the parsed markup.
func (e *Element) SetHTML(markup string) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.sel.SetHtml(markup)
}

// Text returns the concatenated text content of the element.
func (e *Element) Text() string {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.sel.Text()
}

// InnerHTML returns the markup of the element's children.
func (e *Element) InnerHTML() (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.sel.Html()
}

// RenderedText returns the text content with <br> elements as newlines.
func (e *Element) RenderedText() string {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				sb.WriteString(c.Data)
			case c.Type == html.ElementNode && c.Data == "br":
				sb.WriteString("\n")
			default:
				walk(c)
			}
		}
	}
	for _, n := range e.sel.Nodes {
		walk(n)
	}
	return sb.String()
}

// Query returns the first descendant matching the CSS selector.
func (e *Element) Query(selector string) (*Element, bool) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()

	sel := e.sel.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &Element{page: e.page, sel: sel}, true
}
