package htmlutil

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Element is a read-only view of a single node in a Snapshot.
type Element interface {
	// Attr returns the value of the attribute and whether it was present.
	Attr(name string) (string, bool)
	// Text returns the untrimmed text content of the element.
	Text() string
	// Find runs a css selector against the descendants of the element.
	Find(selector string) []Element
}

// Snapshot is a read-only view of a whole page.
//
// note: fault injection point
type Snapshot interface {
	// QueryAll runs a css selector against the page and returns the matches
	// in document order. An invalid selector matches nothing.
	QueryAll(selector string) []Element
}

type documentSnapshot struct {
	doc *goquery.Document
}

// NewSnapshot parses html from r into a Snapshot.
func NewSnapshot(r io.Reader) (Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return documentSnapshot{doc: doc}, nil
}

func (s documentSnapshot) QueryAll(selector string) []Element {
	return wrapSelection(s.doc.Find(selector))
}

type nodeElement struct {
	node *html.Node
}

func wrapSelection(sel *goquery.Selection) []Element {
	elements := make([]Element, len(sel.Nodes))
	for i, n := range sel.Nodes {
		elements[i] = nodeElement{node: n}
	}
	return elements
}

func (e nodeElement) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e nodeElement) Text() string {
	return GetText(e.node)
}

func (e nodeElement) Find(selector string) []Element {
	return wrapSelection(goquery.NewDocumentFromNode(e.node).Find(selector))
}
