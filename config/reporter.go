package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"

	"docfrag/misc"
)

// ReporterConfig points to debug report archive.
type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination cannot be created report
// goes to temporary directory instead.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{entries: make(map[string]entry), file: f}, nil
}

// entry is either a file on disk, read when report is closed, or a snapshot
// of data taken when it was stored.
type entry struct {
	source string
	path   string
	when   time.Time
	data   []byte
}

func (e entry) snapshot() bool {
	return e.data != nil
}

// Report collects logs, configuration, source pages and composed results for
// troubleshooting. Nil report is valid and ignores everything. Not safe for
// concurrent use.
type Report struct {
	entries map[string]entry
	file    *os.File
}

func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()
	return r.write()
}

// Name returns absolute path of the report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	name := r.file.Name()
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	return name
}

// Store adds file to the report. File content is taken on Close, so logs
// which are still being written end up complete. Storing different files
// under the same name is a programming error.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if prev, ok := r.entries[name]; ok && prev.source != path {
		panic(fmt.Sprintf("report entry %q already holds %s, refusing %s", name, prev.source, path))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	r.entries[name] = entry{source: path, path: abs}
}

// StoreData adds copy of data to the report. Name collisions are resolved by
// appending timestamp, so repeated snapshots of the same page are all kept.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	e := entry{when: time.Now(), data: bytes.Clone(data)}
	if e.data == nil {
		e.data = []byte{}
	}
	if _, ok := r.entries[name]; ok {
		name += fmt.Sprintf("-%d", e.when.UnixNano())
	}
	r.entries[name] = e
}

// names returns entry names in natural order, so page-2 goes before page-10.
func (r *Report) names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

func (r *Report) write() error {
	arc := zip.NewWriter(r.file)
	names := r.names()

	if err := addToArchive(arc, "MANIFEST", time.Now(), strings.NewReader(r.manifest(names))); err != nil {
		return err
	}
	for _, name := range names {
		if err := r.add(arc, name); err != nil {
			return fmt.Errorf("unable to add %s to report: %w", name, err)
		}
	}
	return arc.Close()
}

func (r *Report) add(arc *zip.Writer, name string) error {
	e := r.entries[name]
	if e.snapshot() {
		return addToArchive(arc, name, e.when, bytes.NewReader(e.data))
	}

	fi, err := os.Stat(e.path)
	if err != nil || !fi.Mode().IsRegular() {
		// nothing was written there
		return nil
	}
	f, err := os.Open(e.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return addToArchive(arc, name, fi.ModTime(), f)
}

func (r *Report) manifest(names []string) string {
	var b strings.Builder
	now := time.Now().UTC().Format(time.RFC3339)
	for _, name := range names {
		e := r.entries[name]
		if e.snapshot() {
			fmt.Fprintf(&b, "%s\tdata\t%s\t%d bytes\n", e.when.UTC().Format(time.RFC3339), name, len(e.data))
			continue
		}
		fmt.Fprintf(&b, "%s\tfile\t%s\t%s\n", now, name, e.path)
	}
	return b.String()
}

func addToArchive(arc *zip.Writer, name string, modified time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
