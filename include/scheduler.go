// Package include implements client side includes: <a is="include-fragment">
// placeholders which are replaced by content of the documents they point to,
// either right away or when they come close to the viewport.
package include

import (
	"slices"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"docfrag/common"
	"docfrag/dom"
	"docfrag/fetch"
)

type Options struct {
	// Unwrap replaces placeholder with its content after successful splice.
	Unwrap bool
	// MaxDepth limits fragment nesting, 0 means no limit.
	MaxDepth int
}

// Stats counts what happened to placeholders.
type Stats struct {
	Placeholders int
	Inert        int
	Triggered    int
	Loaded       int
	Reverted     int
}

// Scheduler keeps track of placeholders connected to the host document and
// triggers lazy ones on load, scroll and print events. It is host document
// observer and must be registered with it.
type Scheduler struct {
	host    dom.Host
	fetcher fetch.Fetcher
	loop    *Loop
	opts    Options
	log     *zap.Logger

	known map[*html.Node]*Placeholder
	// lazy addressable placeholders in the order they became pending
	pending []*Placeholder
	stats   Stats
}

func NewScheduler(host dom.Host, fetcher fetch.Fetcher, loop *Loop, opts Options, log *zap.Logger) *Scheduler {
	return &Scheduler{
		host:    host,
		fetcher: fetcher,
		loop:    loop,
		opts:    opts,
		log:     log,
		known:   make(map[*html.Node]*Placeholder),
	}
}

// Connected implements dom.Observer.
func (s *Scheduler) Connected(n *html.Node) {
	if !dom.IsPlaceholder(n) {
		return
	}
	if _, ok := s.known[n]; ok {
		return
	}

	p := NewPlaceholder(s, n)
	p.depth = s.depthOf(n)
	s.known[n] = p
	s.stats.Placeholders++

	switch {
	case p.state == StateInert:
		s.log.Warn("Include fragment without reference, ignoring")
	case s.opts.MaxDepth > 0 && p.depth > s.opts.MaxDepth && p.state == StateAddressable:
		s.log.Warn("Include fragment nested too deep, ignoring", zap.String("href", p.ref), zap.Int("depth", p.depth))
		p.state = StateInert
	}
	if p.state == StateInert {
		s.stats.Inert++
		return
	}

	if p.pendingLazy() {
		s.pending = append(s.pending, p)
	}
	p.attached()
}

// Disconnected implements dom.Observer.
func (s *Scheduler) Disconnected(n *html.Node) {
	p, ok := s.known[n]
	if !ok {
		return
	}
	delete(s.known, n)
	s.forget(p)
}

// Sweep evaluates every pending lazy placeholder for the event and returns
// number of triggered ones.
func (s *Scheduler) Sweep(kind common.TriggerKind) int {
	// triggering changes pending list
	candidates := slices.Clone(s.pending)

	count := 0
	for _, p := range candidates {
		if p.EvaluateLazyVisibility(kind) {
			count++
		}
	}
	s.log.Debug("Sweep done", zap.Stringer("event", kind), zap.Int("candidates", len(candidates)), zap.Int("triggered", count))
	return count
}

// Placeholder returns placeholder for connected element.
func (s *Scheduler) Placeholder(n *html.Node) (*Placeholder, bool) {
	p, ok := s.known[n]
	return p, ok
}

// Pending returns lazy placeholders waiting for a sweep.
func (s *Scheduler) Pending() []*Placeholder {
	return slices.Clone(s.pending)
}

func (s *Scheduler) Stats() Stats {
	return s.stats
}

// remember puts connected placeholder back into pending list.
func (s *Scheduler) remember(p *Placeholder) {
	if s.known[p.el] != p || slices.Contains(s.pending, p) {
		return
	}
	s.pending = append(s.pending, p)
}

func (s *Scheduler) forget(p *Placeholder) {
	if i := slices.Index(s.pending, p); i >= 0 {
		s.pending = slices.Delete(s.pending, i, i+1)
	}
}

// depthOf counts placeholders enclosing n.
func (s *Scheduler) depthOf(n *html.Node) int {
	for a := n.Parent; a != nil; a = a.Parent {
		if p, ok := s.known[a]; ok {
			return p.depth + 1
		}
	}
	return 0
}
