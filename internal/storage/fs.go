package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/shajara/internal/checksum"
	"github.com/starford/shajara/internal/models"
)

// Ext is the file extension of GEDCOM sources.
const Ext = ".ged"

// IsSource reports whether name looks like a GEDCOM file.
func IsSource(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Ext)
}

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the sources directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute sources directory.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes sources root: %s", rel)
	}
	return abs, nil
}

// Rel converts an absolute path under the root into a root-relative one.
func (f *FS) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(f.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("storage: %s is outside sources root", abs)
	}
	return filepath.ToSlash(rel), nil
}

// List walks dir (relative to root) and returns metadata for every .ged
// file, sorted by path.
func (f *FS) List(dir string) ([]models.SourceMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.SourceMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !IsSource(d.Name()) {
			return nil
		}
		rel, err := f.Rel(p)
		if err != nil {
			return err
		}
		meta, err := f.stat(p, rel)
		if err != nil {
			return err
		}
		out = append(out, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Stat returns metadata, including the content checksum, for one file.
func (f *FS) Stat(path string) (models.SourceMetadata, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return models.SourceMetadata{}, err
	}
	return f.stat(abs, filepath.ToSlash(filepath.Clean(path)))
}

func (f *FS) stat(abs, rel string) (models.SourceMetadata, error) {
	file, err := os.Open(abs)
	if err != nil {
		return models.SourceMetadata{}, fmt.Errorf("storage: stat %s: %w", rel, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return models.SourceMetadata{}, fmt.Errorf("storage: stat %s: %w", rel, err)
	}
	if info.IsDir() {
		return models.SourceMetadata{}, fmt.Errorf("storage: %s is a directory", rel)
	}
	sum, size, err := checksum.SumReader(file)
	if err != nil {
		return models.SourceMetadata{}, fmt.Errorf("storage: read %s: %w", rel, err)
	}
	return models.SourceMetadata{
		Path:      rel,
		Checksum:  sum,
		Size:      size,
		UpdatedAt: info.ModTime(),
	}, nil
}

// Read returns the raw bytes of a source file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Open opens a source file for reading.
func (f *FS) Open(path string) (io.ReadCloser, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	return file, nil
}
