package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Defensive selector helpers. A selector that fails to compile and a selector
// that matches nothing both resolve to "not found": one bad entry in a
// fallback chain never aborts an extraction.

// safeFind evaluates a selector against root, absorbing panics from invalid
// selector syntax.
func safeFind(root *goquery.Selection, selector string) (sel *goquery.Selection) {
	defer func() {
		if recover() != nil {
			sel = nil
		}
	}()
	return root.Find(selector)
}

// FirstMatch returns the first non-empty selection produced by the ordered
// candidate list, or nil when nothing matches.
func FirstMatch(root *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if sel := safeFind(root, selector); sel != nil && sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// FirstText returns the trimmed text of the first candidate selector matching
// a node with non-empty text.
func FirstText(root *goquery.Selection, selectors ...string) *string {
	for _, selector := range selectors {
		sel := safeFind(root, selector)
		if sel == nil || sel.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(sel.First().Text()); text != "" {
			return &text
		}
	}
	return nil
}

// FirstAttr returns the named attribute of the first candidate selector
// matching a node that carries it with a non-empty value.
func FirstAttr(root *goquery.Selection, attr string, selectors ...string) *string {
	for _, selector := range selectors {
		sel := safeFind(root, selector)
		if sel == nil || sel.Length() == 0 {
			continue
		}
		if value, ok := sel.First().Attr(attr); ok {
			if value = strings.TrimSpace(value); value != "" {
				return &value
			}
		}
	}
	return nil
}
