package compose

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"docfrag/archive"
	"docfrag/misc"
)

// isArchiveFile checks file signature, extension does not matter.
func isArchiveFile(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// filetype needs 262 bytes at most
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// processArchive unpacks whole site into temporary directory, so fragments
// referenced by relative links are reachable, and composes every page there.
func (w *worker) processArchive(ctx context.Context, path, dst string) (err error) {
	tmpDir, err := os.MkdirTemp("", misc.GetAppName()+"-")
	if err != nil {
		return fmt.Errorf("unable to create temporary directory: %w", err)
	}
	defer func() {
		if er := os.RemoveAll(tmpDir); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to remove temporary directory: %w", er))
		}
	}()

	count, err := archive.Unpack(ctx, path, tmpDir, func(f *zip.File) string { return w.entryName(path, f) })
	if err != nil {
		return fmt.Errorf("unable to process archive: %w", err)
	}
	w.log.Debug("Archive unpacked", zap.String("archive", path), zap.Int("files", count), zap.String("location", tmpDir))

	return w.processDir(ctx, tmpDir, dst)
}

// entryName decodes non UTF-8 names when code page was forced.
func (w *worker) entryName(arc string, f *zip.File) string {
	name := f.FileHeader.Name
	if cp := w.env.CodePage; cp != nil && f.FileHeader.NonUTF8 {
		if n, err := cp.NewDecoder().String(name); err == nil {
			name = n
		} else {
			w.log.Warn("Unable to convert archive name from specified encoding",
				zap.String("archive", arc), zap.String("path", name), zap.Error(err))
		}
	}
	return name
}
