// Package localfs implements storage.Directory on the local filesystem.
package localfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/memohai/formmedia/internal/storage"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Directory is a storage.Directory rooted at an absolute path on disk.
type Directory struct {
	root string
}

var _ storage.Directory = (*Directory)(nil)

// New creates the root if needed and returns a Directory bound to it.
func New(root string) (*Directory, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("media root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	// Resolve symlinks once so RelativePath works on paths returned by SecureJoin.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	return &Directory{root: resolved}, nil
}

// Root returns the absolute root path.
func (d *Directory) Root() string {
	return d.root
}

// resolve maps rel onto the root. Paths that lexically leave the root are
// rejected; symlinks inside the root are resolved without escaping it.
func (d *Directory) resolve(rel string) (string, error) {
	if strings.ContainsRune(rel, 0) {
		return "", fmt.Errorf("%w: %q", storage.ErrOutsideRoot, rel)
	}
	trimmed := strings.TrimLeft(filepath.ToSlash(rel), "/")
	if trimmed == "" {
		return d.root, nil
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." {
		return d.root, nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", storage.ErrOutsideRoot, rel)
	}
	joined, err := securejoin.SecureJoin(d.root, filepath.FromSlash(cleaned))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", rel, err)
	}
	return joined, nil
}

// Create makes rel and any missing parents.
func (d *Directory) Create(rel string) error {
	p, err := d.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p, dirPerm); err != nil {
		return fmt.Errorf("create %q: %w", rel, err)
	}
	return nil
}

// Delete removes rel recursively. The root itself cannot be deleted.
func (d *Directory) Delete(rel string) error {
	p, err := d.resolve(rel)
	if err != nil {
		return err
	}
	if p == d.root {
		return fmt.Errorf("%w: refusing to delete root", storage.ErrOutsideRoot)
	}
	if err := os.RemoveAll(p); err != nil {
		return fmt.Errorf("delete %q: %w", rel, err)
	}
	return nil
}

// DeleteFile removes the single file rel.
func (d *Directory) DeleteFile(rel string) error {
	p, err := d.resolve(rel)
	if err != nil {
		return err
	}
	info, err := os.Lstat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %q: %w", rel, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %q", storage.ErrNotFile, rel)
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %q: %w", rel, err)
	}
	return nil
}

// IsExist reports whether rel exists.
func (d *Directory) IsExist(rel string) (bool, error) {
	p, err := d.resolve(rel)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %q: %w", rel, err)
	}
	return true, nil
}

// AbsolutePath resolves rel to an absolute path inside the root.
func (d *Directory) AbsolutePath(rel string) (string, error) {
	return d.resolve(rel)
}

// RelativePath converts abs back to a slash separated path relative to the root.
func (d *Directory) RelativePath(abs string) (string, error) {
	if !filepath.IsAbs(abs) {
		return filepath.ToSlash(filepath.Clean(abs)), nil
	}
	rel, err := filepath.Rel(d.root, filepath.Clean(abs))
	if err != nil {
		return "", fmt.Errorf("%w: %q", storage.ErrOutsideRoot, abs)
	}
	if rel == "." {
		return "", nil
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", storage.ErrOutsideRoot, abs)
	}
	return filepath.ToSlash(rel), nil
}

// RenameFile moves the file from to to, creating the destination parent.
// The destination is claimed with a hard link, so a concurrent writer that
// got there first wins and ErrExist is returned.
func (d *Directory) RenameFile(from, to string) error {
	src, err := d.resolve(from)
	if err != nil {
		return err
	}
	dst, err := d.resolve(to)
	if err != nil {
		return err
	}
	info, err := os.Lstat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", storage.ErrNotFound, from)
		}
		return fmt.Errorf("stat %q: %w", from, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %q", storage.ErrNotFile, from)
	}
	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("create parent of %q: %w", to, err)
	}
	if err := os.Link(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %q", storage.ErrExist, to)
		}
		return fmt.Errorf("rename %q to %q: %w", from, to, err)
	}
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("rename %q to %q: %w", from, to, err)
	}
	return nil
}

// ReadFile returns the full contents of rel.
func (d *Directory) ReadFile(rel string) ([]byte, error) {
	p, err := d.resolve(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", storage.ErrNotFound, rel)
		}
		return nil, fmt.Errorf("read %q: %w", rel, err)
	}
	return data, nil
}

// WriteFile spools reader into a temp file next to rel and renames it into
// place, so readers never observe a partial file.
func (d *Directory) WriteFile(rel string, reader io.Reader, maxBytes int64) (int64, error) {
	if reader == nil {
		return 0, fmt.Errorf("reader is required")
	}
	dst, err := d.resolve(rel)
	if err != nil {
		return 0, err
	}
	if dst == d.root {
		return 0, fmt.Errorf("write %q: path is the root", rel)
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return 0, fmt.Errorf("create parent of %q: %w", rel, err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	keep := false
	defer func() {
		_ = tmp.Close()
		if !keep {
			_ = os.Remove(tmpPath)
		}
	}()

	src := reader
	if maxBytes > 0 {
		src = &io.LimitedReader{R: reader, N: maxBytes + 1}
	}
	written, err := io.Copy(tmp, src)
	if err != nil {
		return 0, fmt.Errorf("copy to temp file: %w", err)
	}
	if maxBytes > 0 && written > maxBytes {
		return 0, fmt.Errorf("%w: max %d bytes", storage.ErrTooLarge, maxBytes)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return 0, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("rename into %q: %w", rel, err)
	}
	keep = true
	return written, nil
}

// Open returns a reader for rel.
func (d *Directory) Open(rel string) (io.ReadCloser, error) {
	p, err := d.resolve(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", storage.ErrNotFound, rel)
		}
		return nil, fmt.Errorf("open %q: %w", rel, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %q: %w", rel, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %q", storage.ErrNotFile, rel)
	}
	return f, nil
}

// List returns the direct children of rel sorted by name.
func (d *Directory) List(rel string) ([]storage.Entry, error) {
	p, err := d.resolve(rel)
	if err != nil {
		return nil, err
	}
	items, err := os.ReadDir(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", storage.ErrNotFound, rel)
		}
		return nil, fmt.Errorf("list %q: %w", rel, err)
	}
	entries := make([]storage.Entry, 0, len(items))
	for _, item := range items {
		info, err := item.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries = append(entries, storage.Entry{
			Name:    item.Name(),
			IsDir:   item.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}
