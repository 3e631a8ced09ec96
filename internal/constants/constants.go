package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
)

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Project codes
const (
	ProjectCodeLength  = 6
	MaxCodeGenAttempts = 10
)

// File uploads
const (
	MaxUploadBytes = 10 << 20 // 10 MB
)

// AllowedFileExtensions lists the upload types accepted for project files,
// keyed by normalized (lowercase, dotless) extension.
var AllowedFileExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"svg":  true,
	"pdf":  true,
	"zip":  true,
	"docx": true,
	"doc":  true,
}

// Auth
const (
	MinPasswordLength = 8
	TokenByteLength   = 32
)
