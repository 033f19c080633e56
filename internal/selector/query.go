package selector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/dom"
)

// ShadowSeparator chains selector parts across shadow boundaries: each part
// after the first is matched inside the shadow roots of the previous part's
// matches.
const ShadowSeparator = " >> "

// Query returns every element matched by selector, starting from the tree
// scope of root. Plain CSS never matches into shadow trees; use
// ShadowSeparator to cross into them.
func Query(root *html.Node, selector string) []*html.Node {
	if root == nil || strings.TrimSpace(selector) == "" {
		return nil
	}
	parts := strings.Split(selector, ShadowSeparator)
	scopes := []*html.Node{root}
	var matches []*html.Node
	for i, part := range parts {
		matches = nil
		for _, scope := range scopes {
			matches = append(matches, scopedFind(scope, strings.TrimSpace(part))...)
		}
		if i == len(parts)-1 {
			break
		}
		scopes = nil
		for _, m := range matches {
			if sr := dom.ShadowRoot(m); sr != nil {
				scopes = append(scopes, sr)
			}
		}
		if len(scopes) == 0 {
			return nil
		}
	}
	return dedupe(matches)
}

// scopedFind runs a CSS selector below scope, keeping only elements whose
// tree scope is scope itself
func scopedFind(scope *html.Node, css string) []*html.Node {
	if css == "" {
		return nil
	}
	sel := goquery.NewDocumentFromNode(scope).Find(css).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return dom.ScopeRoot(s.Nodes[0]) == scope
	})
	return sel.Nodes
}

func dedupe(nodes []*html.Node) []*html.Node {
	seen := make(map[*html.Node]bool, len(nodes))
	out := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
