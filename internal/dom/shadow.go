package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Shadow trees are declarative: the shadow root of a host is its
// <template shadowrootmode="..."> child and the shadow tree is that
// template's children.

// IsShadowRoot reports whether n is a declarative shadow root template
func IsShadowRoot(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.DataAtom != atom.Template {
		return false
	}
	if _, ok := Attr(n, "shadowrootmode"); ok {
		return true
	}
	_, ok := Attr(n, "shadowroot")
	return ok
}

// ShadowRoot returns the shadow root attached to host, or nil
func ShadowRoot(host *html.Node) *html.Node {
	if host == nil {
		return nil
	}
	for c := host.FirstChild; c != nil; c = c.NextSibling {
		if IsShadowRoot(c) {
			return c
		}
	}
	return nil
}

// ScopeRoot returns the tree scope n belongs to: the nearest enclosing
// shadow root, or the document node for light-tree nodes.
func ScopeRoot(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if IsShadowRoot(p) {
			return p
		}
		if p.Type == html.DocumentNode {
			return p
		}
	}
	return nil
}

// Host returns the shadow host of the scope n lives in, or nil when n is
// in the light tree.
func Host(n *html.Node) *html.Node {
	root := ScopeRoot(n)
	if root == nil || !IsShadowRoot(root) {
		return nil
	}
	return root.Parent
}

// DocumentOf walks up through every shadow boundary and returns the
// document node that owns n.
func DocumentOf(n *html.Node) *html.Node {
	var last *html.Node
	for c := n; c != nil; c = c.Parent {
		last = c
	}
	return last
}

// ComposedParent returns the parent of n in the composed tree: the host for
// the top of a shadow tree, the plain parent otherwise.
func ComposedParent(n *html.Node) *html.Node {
	if n == nil || n.Parent == nil {
		return nil
	}
	if IsShadowRoot(n.Parent) {
		return n.Parent.Parent
	}
	return n.Parent
}

// ComposedPathOf returns the event path for an event originating at target:
// target first, then each composed ancestor up to and including the
// document node. Shadow root templates are not part of the path.
func ComposedPathOf(target *html.Node) []*html.Node {
	var path []*html.Node
	for n := target; n != nil; n = ComposedParent(n) {
		path = append(path, n)
	}
	return path
}

// Retarget returns the node an ordinary document listener sees for an event
// originating at n: the outermost shadow host enclosing n, or n itself.
func Retarget(n *html.Node) *html.Node {
	out := n
	for h := Host(out); h != nil; h = Host(out) {
		out = h
	}
	return out
}
