package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore is a FileStore backed by the local filesystem.
type DiskStore struct {
	root    string
	baseURL string
}

var _ FileStore = (*DiskStore)(nil)

// NewDiskStore creates a DiskStore rooted at root. baseURL is prepended to
// logical paths when building public URLs.
func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *DiskStore) dirPath(ext string) string {
	return filepath.Join(s.root, Namespace, ext)
}

func (s *DiskStore) filePath(ext, storedName string) string {
	return filepath.Join(s.dirPath(ext), storedName)
}

// EnsureDir creates the extension subdirectory if it does not exist.
func (s *DiskStore) EnsureDir(ext string) error {
	dir := s.dirPath(ext)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Put writes content to <root>/project-files/<ext>/<storedName>, overwriting
// any existing file.
func (s *DiskStore) Put(ext, storedName string, content io.Reader) error {
	if err := s.EnsureDir(ext); err != nil {
		return err
	}

	target := s.filePath(ext, storedName)
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(target)
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", target, err)
	}
	return nil
}

// Exists reports whether the stored file is present on disk.
func (s *DiskStore) Exists(ext, storedName string) bool {
	_, err := os.Stat(s.filePath(ext, storedName))
	return err == nil
}

// Delete removes the stored file. A missing file is not an error.
func (s *DiskStore) Delete(ext, storedName string) error {
	err := os.Remove(s.filePath(ext, storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", s.filePath(ext, storedName), err)
	}
	return nil
}

// PublicURL joins the base URL with the file's logical storage path.
func (s *DiskStore) PublicURL(ext, storedName string) string {
	return s.baseURL + "/" + StoragePath(ext, storedName)
}
