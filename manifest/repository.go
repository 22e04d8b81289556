package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// FileRepository loads and saves manifests on the local filesystem. Files are
// opened through os.Root scoped to the manifest's directory, so the base name
// cannot escape it. JSON documents load as well, being valid YAML.
type FileRepository struct{}

// NewFileRepository creates a new FileRepository.
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// Load reads and validates the manifest at path. A missing file yields an
// error matching ErrNotFound.
func (r *FileRepository) Load(ctx context.Context, path string) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open directory %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	file, err := root.Open(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open manifest %q: %w", base, err)
	}
	defer func() { _ = file.Close() }()

	var m Manifest
	if err := yaml.NewDecoder(file).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding manifest YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save validates m and writes it as YAML to path, creating the directory if
// needed.
func (r *FileRepository) Save(ctx context.Context, m *Manifest, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return fmt.Errorf("opening directory for write %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	base := filepath.Base(path)
	file, err := root.OpenFile(base, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating manifest %q: %w", base, err)
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	defer func() { _ = encoder.Close() }()

	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return nil
}

// Exists reports whether a manifest exists at path.
func (r *FileRepository) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
