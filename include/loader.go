package include

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"docfrag/dom"
	"docfrag/fetch"
)

// Result of the loader fetch.
type Result int

const (
	ResultPending Result = iota
	ResultParsed
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultPending:
		return "pending"
	case ResultParsed:
		return "parsed"
	case ResultFailed:
		return "failed"
	}
	return "unknown"
}

var errNoDocument = errors.New("fetch produced no document")

// Loader is <object is="doc-fragment"> element which fetches one fragment,
// splices it into its placeholder and removes itself from the document.
type Loader struct {
	id     uuid.UUID
	owner  *Placeholder
	el     *html.Node
	source string
	result Result
}

// newLoader inserts loader element right before placeholder and starts fetch
// immediately.
func newLoader(p *Placeholder, source string) *Loader {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	l := &Loader{
		id:     id,
		owner:  p,
		el:     dom.NewLoaderElement(source),
		source: source,
	}

	s := p.sched
	s.host.InsertBefore(p.el, l.el)
	s.loop.Go(func(ctx context.Context) func() {
		doc, err := s.fetcher.Fetch(ctx, source)
		return func() { l.settled(doc, err) }
	})
	return l
}

func (l *Loader) ID() uuid.UUID { return l.id }
func (l *Loader) Element() *html.Node { return l.el }
func (l *Loader) Source() string { return l.source }
func (l *Loader) Result() Result { return l.result }
func (l *Loader) Owner() *Placeholder { return l.owner }

// settled handles fetch outcome, called exactly once on the loop.
func (l *Loader) settled(doc *fetch.Document, err error) {
	s := l.owner.sched
	container := l.owner.el
	log := s.log.With(zap.Stringer("loader", l.id), zap.String("src", l.source))

	// fallback content goes away whatever happens next
	s.host.Clear(container)

	if err == nil && doc == nil {
		err = errNoDocument
	}
	if err == nil {
		if err = l.splice(doc); err != nil {
			s.host.Clear(container)
		}
	}

	if err != nil {
		l.result = ResultFailed
		s.stats.Reverted++
		log.Warn("Fragment is not available, restoring hyperlink", zap.Error(err))
		l.owner.Revert()
	} else {
		l.result = ResultParsed
		s.stats.Loaded++
		log.Debug("Fragment spliced", zap.String("media_type", doc.MediaType), zap.Int("stylesheets", len(doc.Stylesheets)))
		l.owner.loaded()
		if s.opts.Unwrap {
			s.host.Unwrap(container)
		}
	}

	s.host.Remove(l.el)
}

// splice puts stylesheet links followed by fragment content to the end of the
// placeholder.
func (l *Loader) splice(doc *fetch.Document) error {
	host := l.owner.sched.host
	container := l.owner.el

	for _, href := range doc.Stylesheets {
		host.Append(container, dom.NewStylesheetLink(href))
	}
	if err := host.AppendMarkup(container, doc.Markup); err != nil {
		return fmt.Errorf("unable to splice fragment: %w", err)
	}
	return nil
}
