package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// textInputTypes are the <input> types whose value is free text
var textInputTypes = map[string]bool{
	"":         true,
	"text":     true,
	"search":   true,
	"email":    true,
	"password": true,
	"tel":      true,
	"url":      true,
	"number":   true,
}

// IsElement reports whether n is an element node
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Tag returns the lowercase tag name of an element, or "" for other nodes
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the value of the named attribute
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or def when it is missing
func AttrOr(n *html.Node, key, def string) string {
	if v, ok := Attr(n, key); ok {
		return v
	}
	return def
}

// ElementChildren returns the element children of n in the light tree.
// A declarative shadow root template is not a light child.
func ElementChildren(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || IsShadowRoot(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// TextContent returns the collapsed text of n's light tree
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch {
		case c.Type == html.TextNode:
			sb.WriteString(c.Data)
		case IsShadowRoot(c):
			return
		case c.DataAtom == atom.Script || c.DataAtom == atom.Style:
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// IsTextInput reports whether n is an <input> or <textarea> holding free text
func IsTextInput(n *html.Node) bool {
	switch Tag(n) {
	case "textarea":
		return true
	case "input":
		t, _ := Attr(n, "type")
		return textInputTypes[strings.ToLower(t)]
	}
	return false
}

// IsContentEditable reports whether n or one of its light ancestors is
// contenteditable
func IsContentEditable(n *html.Node) bool {
	for c := n; c != nil && c.Type == html.ElementNode; c = c.Parent {
		v, ok := Attr(c, "contenteditable")
		if !ok {
			continue
		}
		switch strings.ToLower(v) {
		case "", "true", "plaintext-only":
			return true
		case "false":
			return false
		}
	}
	return false
}

// IsEditable reports whether typing into n changes its value
func IsEditable(n *html.Node) bool {
	if IsTextInput(n) {
		_, ro := Attr(n, "readonly")
		_, dis := Attr(n, "disabled")
		return !ro && !dis
	}
	return IsContentEditable(n)
}

// IsSelect reports whether n is a <select>
func IsSelect(n *html.Node) bool {
	return Tag(n) == "select"
}

// FindByID searches the whole tree, shadow roots included, for an element
// with the given id. Tests and diagnostics use it; selectors never do.
func FindByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if IsElement(n) && AttrOr(n, "id", "") == id {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	if root != nil {
		walk(root)
	}
	return found
}

// Elements lists every element under root in document order, descending
// into shadow trees. Shadow root templates themselves are skipped.
func Elements(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if IsElement(n) && !IsShadowRoot(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}
