package dom

import (
	"fmt"

	"golang.org/x/net/html"
)

// EnterShadow is the locator step that moves from a host into its shadow root
const EnterShadow = -1

// Locator addresses a node by the element-child indices taken from the
// document node, with EnterShadow marking a shadow boundary. The capture
// script in the page computes the same steps, so a locator names the same
// element on both sides of the bridge.
type Locator []int

// Locate computes the locator of n
func Locate(n *html.Node) Locator {
	var steps []int
	for c := n; c != nil && c.Parent != nil; {
		p := c.Parent
		if IsShadowRoot(c) {
			steps = append(steps, EnterShadow)
			c = p
			continue
		}
		idx := -1
		for i, sib := range ElementChildren(p) {
			if sib == c {
				idx = i
				break
			}
		}
		if idx < 0 {
			// text or detached node, not addressable
			return nil
		}
		steps = append(steps, idx)
		c = p
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}

// Resolve walks loc from root and returns the node it names
func Resolve(root *html.Node, loc Locator) (*html.Node, error) {
	if root == nil {
		return nil, fmt.Errorf("no document to resolve locator %v", loc)
	}
	cur := root
	for i, step := range loc {
		if step == EnterShadow {
			sr := ShadowRoot(cur)
			if sr == nil {
				return nil, fmt.Errorf("locator %v: step %d: <%s> has no shadow root", loc, i, Tag(cur))
			}
			cur = sr
			continue
		}
		children := ElementChildren(cur)
		if step < 0 || step >= len(children) {
			return nil, fmt.Errorf("locator %v: step %d: index %d out of range (%d children)", loc, i, step, len(children))
		}
		cur = children[step]
	}
	return cur, nil
}
