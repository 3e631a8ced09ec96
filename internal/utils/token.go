package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/mizuhara/project-management-api/internal/constants"
)

// GenerateToken generates a random bearer token as a hex string.
func GenerateToken() (string, error) {
	bytes := make([]byte, constants.TokenByteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}
