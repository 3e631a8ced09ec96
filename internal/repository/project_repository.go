package repository

import (
	"github.com/mizuhara/project-management-api/internal/models"
	"gorm.io/gorm"
)

// paginate applies offset/limit pagination as a GORM scope.
func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByCode finds a project by its public code
func (r *GormProjectRepository) FindByCode(code string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("code = ?", code).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves projects newest first with a total count
func (r *GormProjectRepository) List(page, pageSize int) ([]models.Project, int64, error) {
	var projects []models.Project

	query := r.db.Model(&models.Project{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if page > 0 && pageSize > 0 {
		listQuery = listQuery.Scopes(paginate(page, pageSize))
	}

	if err := listQuery.Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update persists changes to a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete removes a project record. Projects are hard-deleted so a destroyed
// project's code can be issued again.
func (r *GormProjectRepository) Delete(project *models.Project) error {
	return r.db.Delete(project).Error
}

// CodeExists reports whether a project already holds the given code
func (r *GormProjectRepository) CodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
