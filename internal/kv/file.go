package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"

	"github.com/spf13/afero"
)

// File stores each key as <dir>/<key>.json. Writes go to a temp file that
// is renamed over the target, so readers never see a half-written value.
type File struct {
	fs  afero.Fs
	dir string
}

// NewFile returns a file backend on fsys, or the OS filesystem when fsys
// is nil. The directory is created if missing.
func NewFile(fsys afero.Fs, dir string) (*File, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if dir == "" {
		return nil, errors.New("data dir is empty")
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &File{fs: fsys, dir: dir}, nil
}

// Path is the file that holds key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	data, err := afero.ReadFile(f.fs, f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read data file %s: %w", f.Path(key), err)
	}
	return string(data), true, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	path := f.Path(key)
	tmp := path + ".tmp"
	defer func() { _ = f.fs.Remove(tmp) }()

	if err := afero.WriteFile(f.fs, tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary data file %s: %w", tmp, err)
	}
	if err := f.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename temporary data file %s to %s: %w", tmp, path, err)
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
