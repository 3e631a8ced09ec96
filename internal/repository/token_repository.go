package repository

import (
	"github.com/mizuhara/project-management-api/internal/models"
	"gorm.io/gorm"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

// Create stores a newly issued token
func (r *GormTokenRepository) Create(token *models.AuthToken) error {
	return r.db.Create(token).Error
}

// FindByToken resolves a token string to its record
func (r *GormTokenRepository) FindByToken(token string) (*models.AuthToken, error) {
	var authToken models.AuthToken
	if err := r.db.Where("token = ?", token).First(&authToken).Error; err != nil {
		return nil, err
	}
	return &authToken, nil
}

// DeleteByToken revokes a token
func (r *GormTokenRepository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.AuthToken{}).Error
}
