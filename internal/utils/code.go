package utils

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mizuhara/project-management-api/internal/constants"
)

// GenerateProjectCode returns a 6-character uppercase hex code taken from a
// random v4 UUID. It makes no uniqueness promise; callers retry against the
// repository and rely on the unique index as the backstop.
func GenerateProjectCode() string {
	id := uuid.NewString()
	return strings.ToUpper(id[:constants.ProjectCodeLength])
}
