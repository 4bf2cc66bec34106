// Package compose runs include engine over whole pages: parses page, lets
// eager fragments load, replays load, scroll and print events and hands back
// composed document.
package compose

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"docfrag/common"
	"docfrag/config"
	"docfrag/dom"
	"docfrag/fetch"
	"docfrag/include"
	"docfrag/page"
)

// Options control single page composition.
type Options struct {
	// Scrolls are vertical viewport positions visited after page load, each
	// one followed by scroll sweep.
	Scrolls []float64
	// Print materializes every lazy fragment, including ones which appear
	// while printing.
	Print    bool
	Unwrap   bool
	CodePage encoding.Encoding
}

type Composer struct {
	cfg     *config.Config
	fetcher fetch.Fetcher
	log     *zap.Logger
}

func NewComposer(cfg *config.Config, fetcher fetch.Fetcher, log *zap.Logger) *Composer {
	return &Composer{cfg: cfg, fetcher: fetcher, log: log}
}

// DefaultOptions returns options as configuration sets them.
func (c *Composer) DefaultOptions() Options {
	return Options{Unwrap: c.cfg.Include.Unwrap}
}

// Compose reads page from r and runs all includes it has. base is page
// location used to resolve relative references.
func (c *Composer) Compose(ctx context.Context, r io.Reader, base *url.URL, opts Options) (*page.Document, include.Stats, error) {
	log := c.log.With(zap.Stringer("page", base))

	doc, err := page.Parse(r, base, page.Options{
		Viewport:   dom.Size{Width: c.cfg.Viewport.Width, Height: c.cfg.Viewport.Height},
		LineHeight: c.cfg.Viewport.LineHeight,
		CodePage:   opts.CodePage,
	})
	if err != nil {
		return nil, include.Stats{}, err
	}

	loop := include.NewLoop(ctx, c.cfg.Fetch.Concurrency)
	sched := include.NewScheduler(doc, c.fetcher, loop, include.Options{
		Unwrap:   opts.Unwrap,
		MaxDepth: c.cfg.Include.MaxDepth,
	}, log)
	doc.Observe(sched)

	// eager fragments start loading while page is being connected, load
	// event comes when all of them are done
	doc.Connect()
	if err := loop.Run(); err != nil {
		return nil, sched.Stats(), fmt.Errorf("page loading interrupted: %w", err)
	}

	sweep := func(kind common.TriggerKind) (int, error) {
		n := sched.Sweep(kind)
		if err := loop.Run(); err != nil {
			return n, fmt.Errorf("%s handling interrupted: %w", kind, err)
		}
		return n, nil
	}

	if _, err := sweep(common.TriggerKindLoad); err != nil {
		return nil, sched.Stats(), err
	}
	for _, y := range opts.Scrolls {
		doc.ScrollTo(y)
		if _, err := sweep(common.TriggerKindScroll); err != nil {
			return nil, sched.Stats(), err
		}
	}
	if opts.Print {
		// printed fragments may bring more lazy placeholders, only loaded
		// ones could. Without new content next sweep would just retry the
		// failed placeholders again.
		for {
			loaded := sched.Stats().Loaded
			n, err := sweep(common.TriggerKindBeforeprint)
			if err != nil {
				return nil, sched.Stats(), err
			}
			if n == 0 || sched.Stats().Loaded == loaded {
				break
			}
		}
	}

	stats := sched.Stats()
	log.Debug("Page composed",
		zap.Int("placeholders", stats.Placeholders),
		zap.Int("loaded", stats.Loaded),
		zap.Int("reverted", stats.Reverted),
		zap.Int("pending", len(sched.Pending())))
	return doc, stats, nil
}
