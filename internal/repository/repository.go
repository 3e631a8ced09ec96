package repository

import (
	"github.com/mizuhara/project-management-api/internal/models"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create inserts a new project. A duplicate public code surfaces as
	// gorm.ErrDuplicatedKey so callers can regenerate and retry.
	Create(project *models.Project) error

	// FindByCode finds a project by its public code
	FindByCode(code string) (*models.Project, error)

	// List retrieves projects newest first with a total count
	List(page, pageSize int) ([]models.Project, int64, error)

	// Update persists changes to a project
	Update(project *models.Project) error

	// Delete removes a project record
	Delete(project *models.Project) error

	// CodeExists reports whether a project already holds the given code
	CodeExists(code string) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// TokenRepository defines the interface for bearer token data access
type TokenRepository interface {
	// Create stores a newly issued token
	Create(token *models.AuthToken) error

	// FindByToken resolves a token string to its record
	FindByToken(token string) (*models.AuthToken, error)

	// DeleteByToken revokes a token
	DeleteByToken(token string) error
}
