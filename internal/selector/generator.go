// Package selector turns DOM elements into stable CSS selectors and matches
// those selectors back against a document, piercing shadow roots.
package selector

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/dom"
)

// Result is a generated selector and the elements it currently matches. An
// empty Selector means no stable selector was found.
type Result struct {
	Selector string
	Elements []*html.Node
}

// Generator produces a selector for a node. Implementations must be a pure
// function of the current DOM and safe to call at any time.
type Generator interface {
	GenerateSelector(n *html.Node) Result
}

var (
	identPattern = regexp.MustCompile(`^-?[A-Za-z_][A-Za-z0-9_-]*$`)
	// ids with long digit runs are usually framework generated
	generatedID = regexp.MustCompile(`\d{4,}`)
)

// DefaultTestIDAttributes are the attributes checked first, in order
var DefaultTestIDAttributes = []string{"data-testid", "data-test", "data-cy"}

// CSSGenerator prefers test ids, then ids, then semantic attributes, then
// classes, and falls back to an nth-of-type path from the nearest uniquely
// addressable ancestor.
type CSSGenerator struct {
	testIDAttrs []string
	maxClasses  int
}

// Option configures a CSSGenerator
type Option func(*CSSGenerator)

// WithTestIDAttributes overrides the test id attributes
func WithTestIDAttributes(attrs ...string) Option {
	return func(g *CSSGenerator) {
		g.testIDAttrs = append([]string(nil), attrs...)
	}
}

// NewGenerator creates a CSS selector generator
func NewGenerator(opts ...Option) *CSSGenerator {
	g := &CSSGenerator{
		testIDAttrs: DefaultTestIDAttributes,
		maxClasses:  2,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateSelector implements Generator
func (g *CSSGenerator) GenerateSelector(n *html.Node) Result {
	if !dom.IsElement(n) || dom.IsShadowRoot(n) {
		return Result{}
	}

	// One part per tree scope, innermost first.
	var parts []string
	for cur := n; cur != nil; cur = dom.Host(cur) {
		part := g.scoped(cur)
		if part == "" {
			return Result{}
		}
		parts = append(parts, part)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	selector := strings.Join(parts, ShadowSeparator)
	return Result{
		Selector: selector,
		Elements: Query(dom.DocumentOf(n), selector),
	}
}

// scoped returns a selector that matches exactly n within n's tree scope
func (g *CSSGenerator) scoped(n *html.Node) string {
	scope := dom.ScopeRoot(n)
	if scope == nil {
		return ""
	}
	if sel := g.unique(n, scope); sel != "" {
		return sel
	}

	var steps []string
	for cur := n; cur != nil && cur != scope; cur = cur.Parent {
		if cur != n {
			if sel := g.unique(cur, scope); sel != "" {
				steps = append(steps, sel)
				break
			}
		}
		steps = append(steps, nthOfType(cur))
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	sel := strings.Join(steps, " > ")
	if isUnique(scope, sel, n) {
		return sel
	}
	return ""
}

// unique returns the first candidate selector that matches only n in scope
func (g *CSSGenerator) unique(n *html.Node, scope *html.Node) string {
	for _, cand := range g.candidates(n) {
		if isUnique(scope, cand, n) {
			return cand
		}
	}
	return ""
}

func (g *CSSGenerator) candidates(n *html.Node) []string {
	tag := dom.Tag(n)
	var out []string

	for _, attr := range g.testIDAttrs {
		if v, ok := dom.Attr(n, attr); ok && v != "" {
			out = append(out, attrSelector("", attr, v))
		}
	}
	if id, ok := dom.Attr(n, "id"); ok && id != "" && !generatedID.MatchString(id) {
		if identPattern.MatchString(id) {
			out = append(out, "#"+id)
		} else {
			out = append(out, attrSelector("", "id", id))
		}
	}
	switch tag {
	case "input", "select", "textarea", "button", "form":
		if v, ok := dom.Attr(n, "name"); ok && v != "" {
			out = append(out, attrSelector(tag, "name", v))
		}
	}
	for _, attr := range []string{"aria-label", "placeholder", "title", "alt"} {
		if v, ok := dom.Attr(n, attr); ok && v != "" {
			out = append(out, attrSelector(tag, attr, v))
		}
	}
	if tag == "input" {
		if v, ok := dom.Attr(n, "type"); ok && v != "" {
			out = append(out, attrSelector(tag, "type", v))
		}
	}
	if classes := g.classes(n); len(classes) > 0 {
		out = append(out, tag+"."+strings.Join(classes, "."))
	}
	if tag == "html" || tag == "body" || tag == "head" {
		out = append(out, tag)
	}
	return out
}

func (g *CSSGenerator) classes(n *html.Node) []string {
	var out []string
	for _, c := range strings.Fields(dom.AttrOr(n, "class", "")) {
		if !identPattern.MatchString(c) {
			continue
		}
		out = append(out, c)
		if len(out) == g.maxClasses {
			break
		}
	}
	return out
}

func isUnique(scope *html.Node, css string, want *html.Node) bool {
	got := scopedFind(scope, css)
	return len(got) == 1 && got[0] == want
}

// nthOfType addresses n among its same-tag siblings
func nthOfType(n *html.Node) string {
	tag := dom.Tag(n)
	idx, count := 0, 0
	for _, sib := range dom.ElementChildren(n.Parent) {
		if dom.Tag(sib) != tag {
			continue
		}
		count++
		if sib == n {
			idx = count
		}
	}
	if count <= 1 {
		return tag
	}
	return fmt.Sprintf("%s:nth-of-type(%d)", tag, idx)
}

func attrSelector(tag, attr, val string) string {
	return fmt.Sprintf(`%s[%s="%s"]`, tag, attr, escapeValue(val))
}

func escapeValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}
