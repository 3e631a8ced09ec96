package storage

import (
	"io"
	"path"
)

// Namespace is the root directory, under the store root, holding all project
// files partitioned by extension.
const Namespace = "project-files"

// FileStore manages stored project files under extension-keyed
// subdirectories.
type FileStore interface {
	// EnsureDir creates the subdirectory for an extension if absent. Idempotent.
	EnsureDir(ext string) error

	// Put writes content under <ext>/<storedName>, creating the directory
	// first if needed. An existing file with the same name is overwritten.
	Put(ext, storedName string, content io.Reader) error

	// Exists reports whether <ext>/<storedName> is present in the store.
	Exists(ext, storedName string) bool

	// Delete removes <ext>/<storedName>. Deleting a missing file is not an
	// error.
	Delete(ext, storedName string) error

	// PublicURL returns an externally resolvable URL for a stored file. The
	// result is undefined when the file does not exist.
	PublicURL(ext, storedName string) string
}

// StoragePath derives the logical path of a stored file from its extension
// and stored name.
func StoragePath(ext, storedName string) string {
	return path.Join(Namespace, ext, storedName)
}
