package selector

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/dom"
)

const formPage = `<!DOCTYPE html>
<html><body>
<form id="login">
  <input name="email" type="email" placeholder="Email">
  <input name="password" type="password">
  <button data-testid="submit-btn">Submit</button>
  <button class="btn secondary">Cancel</button>
</form>
<ul>
  <li>one</li>
  <li>two</li>
  <li>three</li>
</ul>
<div id="ember12345">generated</div>
<span id="has space">odd id</span>
<my-card id="card">
  <template shadowrootmode="open">
    <button class="action">Inside</button>
    <div><button>Deep</button></div>
  </template>
</my-card>
<my-card>
  <template shadowrootmode="open">
    <button class="action">Other</button>
  </template>
</my-card>
</body></html>`

func parse(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(formPage)
	require.NoError(t, err)
	return doc
}

func first(t *testing.T, doc *dom.Document, css string) *html.Node {
	t.Helper()
	nodes := Query(doc.Root(), css)
	require.NotEmpty(t, nodes, css)
	return nodes[0]
}

func TestGenerateSelectorStrategies(t *testing.T) {
	doc := parse(t)
	gen := NewGenerator()

	tests := []struct {
		name string
		find string
		want string
	}{
		{"test id wins", `button[data-testid="submit-btn"]`, `[data-testid="submit-btn"]`},
		{"form id", `form`, `#login`},
		{"input name", `input[type="password"]`, `input[name="password"]`},
		{"classes", `button.secondary`, `button.btn.secondary`},
		{"nth of type fallback", `li:nth-of-type(2)`, `body > ul > li:nth-of-type(2)`},
		{"generated id skipped", `div`, `body > div`},
		{"id needing quotes", `span`, `[id="has space"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := first(t, doc, tt.find)
			res := gen.GenerateSelector(n)
			require.Equal(t, tt.want, res.Selector)
			require.Len(t, res.Elements, 1)
			require.Same(t, n, res.Elements[0])
		})
	}
}

func TestGenerateSelectorPiercesShadowRoots(t *testing.T) {
	doc := parse(t)
	gen := NewGenerator()

	host := doc.GetElementByID("card")
	inner := Query(doc.Root(), "#card >> button.action")
	require.Len(t, inner, 1)

	res := gen.GenerateSelector(inner[0])
	require.Equal(t, "#card >> button.action", res.Selector)
	require.Equal(t, []*html.Node{inner[0]}, res.Elements)

	deep := Query(doc.Root(), "#card >> div > button")
	require.Len(t, deep, 1)
	res = gen.GenerateSelector(deep[0])
	require.Equal(t, "#card >> div > button", res.Selector)

	require.Equal(t, "#card", gen.GenerateSelector(host).Selector)
}

func TestQueryDoesNotLeakIntoShadowTrees(t *testing.T) {
	doc := parse(t)
	require.Empty(t, Query(doc.Root(), "button.action"))
	require.Len(t, Query(doc.Root(), "my-card >> button.action"), 2)
	require.Empty(t, Query(doc.Root(), "form >> button"), "form has no shadow root")
	require.Empty(t, Query(doc.Root(), "   "))
	require.Empty(t, Query(nil, "button"))
}

func TestGenerateSelectorEmptyForNonElements(t *testing.T) {
	doc := parse(t)
	gen := NewGenerator()

	require.Equal(t, Result{}, gen.GenerateSelector(nil))
	require.Equal(t, Result{}, gen.GenerateSelector(doc.Root()))

	li := first(t, doc, "li")
	require.Equal(t, Result{}, gen.GenerateSelector(li.FirstChild), "text node")

	tpl := dom.ShadowRoot(doc.GetElementByID("card"))
	require.Equal(t, Result{}, gen.GenerateSelector(tpl))
}

func TestCustomTestIDAttributes(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><a data-qa="home" href="/">Home</a><a href="/x">X</a></body></html>`)
	require.NoError(t, err)

	gen := NewGenerator(WithTestIDAttributes("data-qa"))
	a := first(t, doc, "a")
	require.Equal(t, `[data-qa="home"]`, gen.GenerateSelector(a).Selector)
}

func TestEscapeValue(t *testing.T) {
	require.Equal(t, `[title="say \"hi\""]`, attrSelector("", "title", `say "hi"`))
}
