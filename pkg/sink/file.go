package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// File stores recordings on the local filesystem, under the root
// directory.
type File struct {
	root string
}

var _ Sink = (*File)(nil)

// NewFile creates the root directory (with parents) if it does not exist.
func NewFile(dir string) (*File, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to get the absolute path of '%s': %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create directory '%s': %w", abs, err)
	}
	return &File{root: abs}, nil
}

func (f *File) Root() string {
	return f.root
}

func (f *File) Path(name string) string {
	return filepath.Join(f.root, filepath.FromSlash(name))
}

// Store writes into a temporary file first and renames it, so a partially
// written recording never appears under the final name.
func (f *File) Store(ctx context.Context, name string, wav []byte) (_err error) {
	full := f.Path(name)
	logger.Debugf(ctx, "File.Store(ctx, '%s', <%d bytes>)", full, len(wav))
	defer func() { logger.Debugf(ctx, "/File.Store(ctx, '%s', <%d bytes>): %v", full, len(wav), _err) }()

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create directory '%s': %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create a temporary file in '%s': %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if _err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(wav); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write '%s': %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to close '%s': %w", tmpName, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return fmt.Errorf("unable to rename '%s' to '%s': %w", tmpName, full, err)
	}
	return nil
}
