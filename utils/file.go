package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StagingStore keeps locally selected files on disk until they are uploaded or
// discarded.
type StagingStore struct {
	dir string
}

func NewStagingStore(dir string) (*StagingStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &StagingStore{dir: dir}, nil
}

func (s *StagingStore) Save(id, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.dir, id+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *StagingStore) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (s *StagingStore) Delete(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
