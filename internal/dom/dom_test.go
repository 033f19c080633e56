package dom

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const widgetPage = `<!DOCTYPE html>
<html><head><title>t</title></head><body>
<div id="app">
  <my-widget id="host">
    <template shadowrootmode="open">
      <span id="label">Label</span>
      <button id="inner">Go</button>
    </template>
  </my-widget>
  <button id="plain">Plain</button>
  <input id="name" type="text">
  <input id="agree" type="checkbox">
  <div id="editor" contenteditable="true"><p id="para">hello</p></div>
  <input id="ro" type="text" readonly>
</div>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	require.NoError(t, err)
	return doc
}

func TestComposedPathPiercesShadowRoots(t *testing.T) {
	doc := mustParse(t, widgetPage)
	inner := doc.GetElementByID("inner")
	host := doc.GetElementByID("host")
	require.NotNil(t, inner)
	require.NotNil(t, host)

	ev := NewEvent(Click, inner)
	require.Same(t, inner, ev.DeepTarget())
	require.Same(t, host, ev.Target(), "document listeners see the host")

	path := ev.ComposedPath()
	require.Same(t, inner, path[0])
	require.Same(t, host, path[1], "shadow root template is not on the path")
	require.Equal(t, html.DocumentNode, path[len(path)-1].Type)
}

func TestScopeAndHost(t *testing.T) {
	doc := mustParse(t, widgetPage)
	inner := doc.GetElementByID("inner")
	host := doc.GetElementByID("host")
	plain := doc.GetElementByID("plain")

	require.True(t, IsShadowRoot(ScopeRoot(inner)))
	require.Same(t, ShadowRoot(host), ScopeRoot(inner))
	require.Same(t, host, Host(inner))
	require.Nil(t, Host(plain))
	require.Same(t, doc.Root(), ScopeRoot(plain))
	require.Same(t, doc.Root(), DocumentOf(inner))
	require.Same(t, plain, Retarget(plain))
}

func TestDispatchRunsCaptureListenersFirst(t *testing.T) {
	doc := mustParse(t, widgetPage)
	plain := doc.GetElementByID("plain")

	var order []string
	doc.AddElementListener(plain, Click, func(ev *Event) {
		order = append(order, "page")
		ev.StopPropagation()
	})
	doc.AddEventListener(Click, func(*Event) { order = append(order, "bubble") }, false)
	doc.AddEventListener(Click, func(*Event) { order = append(order, "capture") }, true)

	doc.Dispatch(NewEvent(Click, plain))
	require.Equal(t, []string{"capture", "page"}, order, "page stopPropagation does not reach capture listeners")
}

func TestRemoveListenerIsIdempotent(t *testing.T) {
	doc := mustParse(t, widgetPage)
	calls := 0
	remove := doc.AddEventListener(KeyDown, func(*Event) { calls++ }, true)
	other := doc.AddEventListener(KeyDown, func(*Event) { calls += 10 }, true)
	require.Equal(t, 2, doc.ListenerCount(KeyDown))

	remove()
	remove()
	require.Equal(t, 1, doc.ListenerCount(KeyDown))

	doc.Dispatch(NewEvent(KeyDown, doc.GetElementByID("name")))
	require.Equal(t, 10, calls)

	other()
	require.Zero(t, doc.ListenerCount(KeyDown))
}

func TestListenerRemovedDuringDispatchDoesNotRun(t *testing.T) {
	doc := mustParse(t, widgetPage)
	var second func()
	ran := false
	doc.AddEventListener(Input, func(*Event) { second() }, true)
	second = doc.AddEventListener(Input, func(*Event) { ran = true }, true)

	doc.Dispatch(NewEvent(Input, doc.GetElementByID("name")))
	require.False(t, ran)
}

func TestLocatorRoundTrip(t *testing.T) {
	doc := mustParse(t, widgetPage)
	for _, id := range []string{"inner", "label", "plain", "para", "host"} {
		n := doc.GetElementByID(id)
		loc := Locate(n)
		require.NotEmpty(t, loc, id)
		got, err := Resolve(doc.Root(), loc)
		require.NoError(t, err, id)
		require.Same(t, n, got, id)
	}

	loc := Locate(doc.GetElementByID("inner"))
	require.Contains(t, loc, EnterShadow)
}

func TestResolveRejectsBadLocators(t *testing.T) {
	doc := mustParse(t, widgetPage)
	_, err := Resolve(doc.Root(), Locator{0, 99})
	require.Error(t, err)

	plain := Locate(doc.GetElementByID("plain"))
	_, err = Resolve(doc.Root(), append(plain, EnterShadow))
	require.Error(t, err)

	_, err = Resolve(nil, Locator{0})
	require.Error(t, err)
}

func TestEditableClassification(t *testing.T) {
	doc := mustParse(t, widgetPage)
	require.True(t, IsEditable(doc.GetElementByID("name")))
	require.False(t, IsEditable(doc.GetElementByID("agree")))
	require.True(t, IsEditable(doc.GetElementByID("para")), "inherits contenteditable")
	require.False(t, IsEditable(doc.GetElementByID("ro")))
	require.False(t, IsEditable(doc.GetElementByID("plain")))
}

func TestTextContentSkipsShadowTrees(t *testing.T) {
	doc := mustParse(t, widgetPage)
	require.Equal(t, "", TextContent(doc.GetElementByID("host")))
	require.Equal(t, "Go", TextContent(doc.GetElementByID("inner")))
}

func TestSelectionCollapsed(t *testing.T) {
	var none *Selection
	require.True(t, none.Collapsed())
	require.True(t, (&Selection{Start: 3, End: 3}).Collapsed())
	require.False(t, (&Selection{Start: 1, End: 4, Text: "abc"}).Collapsed())
}

func TestElementsDescendsIntoShadowTrees(t *testing.T) {
	doc, err := ParseString(`<html><head></head><body><x-a id="a"><template shadowrootmode="open"><b id="b"></b></template></x-a></body></html>`)
	require.NoError(t, err)

	var tags []string
	for _, n := range Elements(doc.Root()) {
		tags = append(tags, Tag(n))
	}
	require.Equal(t, []string{"html", "head", "body", "x-a", "b"}, tags)
}
