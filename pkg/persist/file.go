package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

const tempPrefix = ".vstore-tmp-"

// FileStorage stores each key in its own file inside a directory.
// Writes are atomic (write to a temporary file, then rename), and Watch uses
// fsnotify, so processes sharing the directory see each other's changes.
type FileStorage struct {
	dir    string
	perm   fs.FileMode
	logger *slog.Logger
}

// FileOption configures FileStorage behavior.
type FileOption func(*FileStorage)

// WithFileMode sets the permission bits of stored files. Default: 0o600.
func WithFileMode(perm fs.FileMode) FileOption {
	return func(f *FileStorage) {
		f.perm = perm
	}
}

// WithFileLogger sets the logger for watcher errors.
// If nil, slog.Default() is used.
func WithFileLogger(logger *slog.Logger) FileOption {
	return func(f *FileStorage) {
		f.logger = logger
	}
}

// NewFileStorage creates a file storage rooted at dir, creating it if needed.
func NewFileStorage(dir string, opts ...FileOption) (*FileStorage, error) {
	f := &FileStorage{
		dir:  dir,
		perm: 0o600,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return f, nil
}

// Dir returns the storage directory.
func (f *FileStorage) Dir() string {
	return f.dir
}

// filename maps a key to a file name that is safe on every platform.
func filename(key string) string {
	return url.PathEscape(key)
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, filename(key))
}

// GetItem reads the file for key.
func (f *FileStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// SetItem atomically replaces the file for key.
func (f *FileStorage) SetItem(ctx context.Context, key, value string) error {
	tmp, err := os.CreateTemp(f.dir, tempPrefix+"*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(f.perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path(key))
}

// RemoveItem deletes the file for key.
func (f *FileStorage) RemoveItem(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Watch calls fn with the file's new contents whenever the file for key is
// created or written. Removals are not reported. fn runs on the watcher's
// goroutine; stop returns without waiting for it to exit.
func (f *FileStorage) Watch(ctx context.Context, key string, fn func(string)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(f.dir); err != nil {
		watcher.Close()
		return nil, err
	}

	name := filename(key)
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				base := filepath.Base(evt.Name)
				if base != name || strings.HasPrefix(base, tempPrefix) {
					continue
				}
				if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) {
					continue
				}
				value, found, err := f.GetItem(ctx, key)
				if err != nil {
					f.logger.Warn("vstore: read after change failed", "key", key, "error", err)
					continue
				}
				if found {
					fn(value)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("vstore: file watcher error", "dir", f.dir, "error", err)
			}
		}
	}()

	return cancel, nil
}

var (
	_ Storage = (*FileStorage)(nil)
	_ Watcher = (*FileStorage)(nil)
)
