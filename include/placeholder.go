package include

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"docfrag/common"
	"docfrag/dom"
)

// State of the placeholder lifecycle.
type State int

const (
	// StateInert placeholder never triggers: it has no reference, its
	// reference cannot be resolved or it is nested too deep.
	StateInert State = iota
	// StateAddressable placeholder holds live hyperlink reference.
	StateAddressable
	// StateConsumed placeholder keeps its reference as source record, while
	// loading is in flight or after it succeeded.
	StateConsumed
)

func (s State) String() string {
	switch s {
	case StateInert:
		return "inert"
	case StateAddressable:
		return "addressable"
	case StateConsumed:
		return "consumed"
	}
	return "unknown"
}

// Placeholder is <a is="include-fragment"> element: hyperlink which content
// is replaced by document it points to.
type Placeholder struct {
	sched *Scheduler
	el    *html.Node

	ref   string
	mode  common.LoadingMode
	state State
	depth int

	loader *Loader
}

// NewPlaceholder wraps element. Element attributes are read once: href is
// mandatory, loading defaults to eager.
func NewPlaceholder(s *Scheduler, el *html.Node) *Placeholder {
	p := &Placeholder{sched: s, el: el}

	loading, _ := dom.Attr(el, dom.AttrLoading)
	p.mode = common.LoadingModeFromAttr(loading)

	if href, ok := dom.Attr(el, dom.AttrHref); ok && len(href) > 0 {
		p.ref = href
		p.state = StateAddressable
	} else if src, ok := dom.Attr(el, dom.AttrSource); ok && len(src) > 0 {
		// already consumed by somebody else, nothing to do for us
		p.ref = src
		p.state = StateConsumed
	}
	return p
}

func (p *Placeholder) Element() *html.Node { return p.el }
func (p *Placeholder) State() State { return p.state }
func (p *Placeholder) Mode() common.LoadingMode { return p.mode }
func (p *Placeholder) Depth() int { return p.depth }

// Reference returns declared target URL, whatever state placeholder is in.
func (p *Placeholder) Reference() string { return p.ref }

// Loader returns loader currently in flight, nil when there is none.
func (p *Placeholder) Loader() *Loader { return p.loader }

// pendingLazy reports whether placeholder waits for a sweep.
func (p *Placeholder) pendingLazy() bool {
	return p.mode == common.LoadingModeLazy && p.state == StateAddressable
}

// attached reacts to placeholder being connected to the document.
func (p *Placeholder) attached() {
	if p.mode == common.LoadingModeEager {
		p.Trigger()
	}
}

// Trigger starts loading of the fragment. Only addressable placeholder could
// be triggered, for all others it is no-op. Returns true when loader was
// created.
func (p *Placeholder) Trigger() bool {
	if p.state != StateAddressable {
		return false
	}
	log := p.sched.log.With(zap.String("href", p.ref))

	src, err := p.sched.host.ResolveURL(p.ref)
	if err != nil {
		// reference will not get any better, stop looking at it
		log.Warn("Unable to resolve fragment reference, ignoring", zap.Error(err))
		p.state = StateInert
		p.sched.forget(p)
		p.sched.stats.Inert++
		return false
	}

	p.consume()
	p.sched.forget(p)
	p.loader = newLoader(p, src)
	p.sched.stats.Triggered++

	log.Debug("Fragment triggered", zap.String("src", src), zap.Stringer("mode", p.mode), zap.Int("depth", p.depth))
	return true
}

// EvaluateLazyVisibility triggers pending lazy placeholder when it is close
// enough to the viewport, or unconditionally for print. Returns true when
// placeholder was triggered.
func (p *Placeholder) EvaluateLazyVisibility(kind common.TriggerKind) bool {
	if !p.pendingLazy() {
		return false
	}
	if !kind.Forced() && !p.nearViewport() {
		return false
	}
	return p.Trigger()
}

// nearViewport checks bounding box against viewport padded by placeholder
// own size on every side.
func (p *Placeholder) nearViewport() bool {
	box := p.sched.host.Geometry(p.el)
	area := p.sched.host.Viewport().Rect().Expand(box.Width, box.Height)
	return box.Intersects(area)
}

// Revert returns consumed placeholder to its original addressable state, so
// it becomes ordinary hyperlink again. Lazy placeholder still connected to the
// document is visible to the following sweeps, as if it was never triggered.
func (p *Placeholder) Revert() {
	if p.state != StateConsumed {
		return
	}
	p.state = StateAddressable
	p.loader = nil

	dom.SetAttr(p.el, dom.AttrHref, p.ref)
	dom.RemoveAttr(p.el, dom.AttrSource)
	dom.RemoveAttr(p.el, dom.AttrRole)

	if p.pendingLazy() {
		p.sched.remember(p)
	}
}

// consume turns live reference into source record. Element stops being
// navigable, so it is hidden from assistive technology as a link.
func (p *Placeholder) consume() {
	p.state = StateConsumed

	dom.SetAttr(p.el, dom.AttrSource, p.ref)
	dom.RemoveAttr(p.el, dom.AttrHref)
	dom.SetAttr(p.el, dom.AttrRole, dom.RoleNone)
}

// loaded is called by loader after successful splice.
func (p *Placeholder) loaded() {
	p.loader = nil
}
