// Package filesystem reads documents from a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// ErrNotDirectory is returned when the root path is not a directory.
var ErrNotDirectory = errors.New("filesystem: root is not a directory")

// ChangeType describes a watch event.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
)

// File is one regular file read from the tree.
type File struct {
	// Path is the absolute path on disk.
	Path string

	// Name is the base name, used as the upload filename.
	Name string

	Content []byte
}

// Change is a file that appeared or was rewritten while watching.
type Change struct {
	Type ChangeType
	File File
}

// Connector walks and watches a directory. Hidden files and directories
// are skipped.
type Connector struct {
	rootPath string
	maxBytes int64
}

// New creates a connector rooted at rootPath. Files larger than maxBytes
// are skipped; zero disables the limit.
func New(rootPath string, maxBytes int64) *Connector {
	return &Connector{rootPath: rootPath, maxBytes: maxBytes}
}

// RootPath returns the watched directory.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Scan reads every visible regular file under the root. Both channels are
// closed when the walk ends.
func (c *Connector) Scan(ctx context.Context) (<-chan File, <-chan error) {
	files := make(chan File)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		info, err := os.Stat(c.rootPath)
		if err != nil {
			if os.IsNotExist(err) {
				errs <- fmt.Errorf("root path does not exist: %s", c.rootPath)
				return
			}
			errs <- fmt.Errorf("stat root path: %w", err)
			return
		}
		if !info.IsDir() {
			errs <- fmt.Errorf("%w: %s", ErrNotDirectory, c.rootPath)
			return
		}

		walkErr := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("skipping %s: %v", path, err)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			rel, _ := filepath.Rel(c.rootPath, path)
			if rel != "." && isHidden(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			file, ok := c.readFile(path)
			if !ok {
				return nil
			}

			select {
			case files <- file:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil {
			errs <- walkErr
		}
	}()

	return files, errs
}

// Watch reports files created or written under the root until ctx is
// cancelled. Only the root directory and the directories present when
// Watch starts are observed.
func (c *Connector) Watch(ctx context.Context) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	walkErr := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(c.rootPath, path)
		if rel != "." && isHidden(rel) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if walkErr != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, walkErr)
	}

	changes := make(chan Change)

	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change := c.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error: %v", err)
			}
		}
	}()

	return changes, nil
}

// handleFsEvent turns a create or write of a visible regular file into a
// change. Removals, renames and chmods are ignored: removing a file does
// not delete its document.
func (c *Connector) handleFsEvent(event fsnotify.Event) *Change {
	rel, err := filepath.Rel(c.rootPath, event.Name)
	if err != nil {
		rel = event.Name
	}
	if isHidden(rel) {
		return nil
	}

	var kind ChangeType
	switch {
	case event.Has(fsnotify.Create):
		kind = ChangeCreated
	case event.Has(fsnotify.Write):
		kind = ChangeUpdated
	default:
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return nil
	}

	file, ok := c.readFile(event.Name)
	if !ok {
		return nil
	}
	return &Change{Type: kind, File: file}
}

func (c *Connector) readFile(path string) (File, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return File{}, false
	}
	if c.maxBytes > 0 && info.Size() > c.maxBytes {
		logger.Warn("skipping %s: %d bytes exceeds limit", path, info.Size())
		return File{}, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("skipping %s: %v", path, err)
		return File{}, false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return File{Path: abs, Name: filepath.Base(path), Content: content}, true
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
