// Package dom defines what include engine needs from the host document:
// element geometry, viewport, tree primitives and notifications about
// include-fragment elements entering or leaving the document.
package dom

import (
	"golang.org/x/net/html"
)

// Rect is element bounding box relative to the viewport, the same way
// getBoundingClientRect reports it.
type Rect struct {
	Top, Left, Right, Bottom float64
	Width, Height            float64
}

// NewRect builds rectangle from position and size.
func NewRect(top, left, width, height float64) Rect {
	return Rect{
		Top:    top,
		Left:   left,
		Right:  left + width,
		Bottom: top + height,
		Width:  width,
		Height: height,
	}
}

// Expand returns rectangle grown by dx horizontally and dy vertically on
// every side.
func (r Rect) Expand(dx, dy float64) Rect {
	return NewRect(r.Top-dy, r.Left-dx, r.Width+2*dx, r.Height+2*dy)
}

// Intersects reports whether two rectangles share at least one point. Edges
// touching count as intersection.
func (r Rect) Intersects(o Rect) bool {
	return r.Left <= o.Right && o.Left <= r.Right && r.Top <= o.Bottom && o.Top <= r.Bottom
}

// Size is viewport dimensions.
type Size struct {
	Width, Height float64
}

// Rect returns viewport as rectangle anchored at origin.
func (s Size) Rect() Rect {
	return NewRect(0, 0, s.Width, s.Height)
}

// Observer is notified when include-fragment element becomes connected to
// the document or is disconnected from it. Host calls it synchronously, after
// the mutation has been applied.
type Observer interface {
	Connected(n *html.Node)
	Disconnected(n *html.Node)
}

// Host is host document as seen by include engine. All methods are called on
// a single goroutine.
type Host interface {
	// ResolveURL makes reference absolute against document base.
	ResolveURL(ref string) (string, error)
	Geometry(n *html.Node) Rect
	Viewport() Size

	// InsertBefore inserts n as immediately preceding sibling of ref.
	InsertBefore(ref, n *html.Node)
	// Clear removes all children of n.
	Clear(n *html.Node)
	Append(parent, child *html.Node)
	// AppendMarkup parses markup in context of parent and appends resulting
	// nodes to the end of parent.
	AppendMarkup(parent *html.Node, markup string) error
	// Remove detaches n from its parent, no-op for detached node.
	Remove(n *html.Node)
	// Unwrap replaces n with its children.
	Unwrap(n *html.Node)
}
