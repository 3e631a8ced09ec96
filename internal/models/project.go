package models

import (
	"time"
)

type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

// ValidProjectStatus reports whether s is one of the known workflow statuses.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusPending, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project is a unit of work. Code is the public lookup key; ID never leaves
// the API as a lookup key. File holds the stored filename (not a path); its
// extension determines the storage subdirectory.
type Project struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Code        string        `gorm:"type:varchar(6);uniqueIndex;not null" json:"code"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	StartDate   *time.Time    `json:"start_date"`
	DueDate     *time.Time    `json:"due_date"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	File        string        `gorm:"type:varchar(255)" json:"file,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// HasFile reports whether the project references a stored file.
func (p *Project) HasFile() bool {
	return p.File != ""
}
