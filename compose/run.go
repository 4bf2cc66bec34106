package compose

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"docfrag/fetch"
	"docfrag/state"
)

// Run is compose subcommand action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compose")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Print, env.Overwrite = cmd.Bool("print"), cmd.Bool("overwrite")
	env.Scrolls = cmd.FloatSlice("scroll")
	if cmd.IsSet("unwrap") {
		env.Cfg.Include.Unwrap = cmd.Bool("unwrap")
	}

	// pages and fragments without any encoding information
	if cp := cmd.String("force-cp"); len(cp) > 0 {
		if env.CodePage, err = ianaindex.IANA.Encoding(cp); err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcing character set for local files", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process decides what source is and composes everything it has.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	fetcher, err := fetch.New(&env.Cfg.Fetch, "", env.CodePage, log.Named("fetch"))
	if err != nil {
		return err
	}
	w := &worker{
		env:      env,
		composer: NewComposer(env.Cfg, fetcher, log),
		log:      log,
	}

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found: %w", err)
	}
	switch {
	case fi.IsDir():
		return w.processDir(ctx, src, dst)
	case !fi.Mode().IsRegular():
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	archive, err := isArchiveFile(src)
	if err != nil {
		return fmt.Errorf("unable to check archive type: %w", err)
	}
	if archive {
		return w.processArchive(ctx, src, dst)
	}
	if !isPageFile(src) {
		return fmt.Errorf("input was not recognized as HTML page (%s)", src)
	}
	return w.processPage(ctx, src, filepath.Join(dst, filepath.Base(src)), filepath.Base(src))
}

type worker struct {
	env      *state.LocalEnv
	composer *Composer
	log      *zap.Logger
}

var pageExtensions = []string{".html", ".htm", ".xhtml"}

func isPageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range pageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// collectPages returns pages under dir in natural order.
func collectPages(dir string) ([]string, error) {
	var pages []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && isPageFile(p) {
			pages = append(pages, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(natural.StringSlice(pages))
	return pages, nil
}

func (w *worker) processDir(ctx context.Context, dir, dst string) (err error) {
	pages, err := collectPages(dir)
	if err != nil {
		return fmt.Errorf("unable to walk directory: %w", err)
	}
	if len(pages) == 0 {
		w.log.Warn("No pages found", zap.String("dir", dir))
		return nil
	}

	for _, p := range pages {
		if er := ctx.Err(); er != nil {
			return multierr.Append(err, er)
		}
		rel, er := filepath.Rel(dir, p)
		if er != nil {
			err = multierr.Append(err, er)
			continue
		}
		if er := w.processPage(ctx, p, filepath.Join(dst, rel), rel); er != nil {
			w.log.Error("Unable to process page", zap.String("file", p), zap.Error(er))
			err = multierr.Append(err, fmt.Errorf("%s: %w", rel, er))
		}
	}
	w.log.Info("Directory processed", zap.Int("pages", len(pages)), zap.Int("failed", len(multierr.Errors(err))))
	return err
}

func (w *worker) processPage(ctx context.Context, src, dst, name string) error {
	if !w.env.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("output file already exists: %s", dst)
		}
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	base, err := fetch.FileURL(src)
	if err != nil {
		return err
	}

	opts := w.composer.DefaultOptions()
	opts.Print, opts.Scrolls, opts.CodePage = w.env.Print, w.env.Scrolls, w.env.CodePage

	doc, stats, err := w.composer.Compose(ctx, f, base, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	if err := doc.Render(out); err != nil {
		out.Close()
		return fmt.Errorf("unable to write output file: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	if w.env.Rpt != nil {
		key := slug.Make(name)
		w.env.Rpt.Store("source/"+key+filepath.Ext(src), src)
		w.env.Rpt.StoreData("composed/"+key+filepath.Ext(src), []byte(doc.String()))
	}

	w.log.Info("Page composed", zap.String("page", name), zap.String("output", dst),
		zap.Int("loaded", stats.Loaded), zap.Int("reverted", stats.Reverted))
	return nil
}
