package dto

import (
	"time"

	"github.com/mizuhara/project-management-api/internal/models"
	"github.com/mizuhara/project-management-api/internal/utils"
)

// ProjectDTO represents a project in API responses. The internal numeric id
// is never the lookup key; clients address projects by code.
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Code        string               `json:"code"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	StartDate   *time.Time           `json:"start_date"`
	DueDate     *time.Time           `json:"due_date"`
	Status      models.ProjectStatus `json:"status"`
	File        string               `json:"file,omitempty"`
	FileURL     string               `json:"file_url,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO             `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToProjectDTO converts a project model to its API representation
func ToProjectDTO(project models.Project, fileURL string) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Code:        project.Code,
		Name:        project.Name,
		Description: project.Description,
		StartDate:   project.StartDate,
		DueDate:     project.DueDate,
		Status:      project.Status,
		File:        project.File,
		FileURL:     fileURL,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}
