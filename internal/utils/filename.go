package utils

import (
	"path/filepath"
	"strings"
	"time"
)

// FileExtension returns the normalized (lowercase, dotless) extension of a
// filename, or "" when it has none.
func FileExtension(name string) string {
	ext := filepath.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// StoredFileName derives the name an upload is persisted under: the original
// base name suffixed with the creation month, e.g. "plan.pdf" uploaded in
// May 2024 becomes "plan_2024-05.pdf". The month suffix keeps re-uploads of
// the same name in different months from colliding; same-month collisions
// are last-writer-wins.
func StoredFileName(originalName string, now time.Time) string {
	base := filepath.Base(originalName)
	ext := filepath.Ext(base)
	withoutExt := strings.TrimSuffix(base, ext)
	return withoutExt + "_" + now.Format("2006-01") + strings.ToLower(ext)
}
