package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mizuhara/project-management-api/internal/constants"
	apierrors "github.com/mizuhara/project-management-api/internal/errors"
	"github.com/mizuhara/project-management-api/internal/models"
	"github.com/mizuhara/project-management-api/internal/repository"
	"github.com/mizuhara/project-management-api/internal/storage"
	"github.com/mizuhara/project-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	// ErrStorage marks file store failures surfaced to the API as 500s.
	ErrStorage = errors.New("storage failure")
	// ErrPersistence marks database failures, including code space exhaustion.
	ErrPersistence = errors.New("persistence failure")
)

const dateLayout = "2006-01-02"

// FileUpload carries an incoming file independent of the HTTP layer.
type FileUpload struct {
	Name    string
	Size    int64
	Content io.Reader
}

// CreateProjectInput holds raw creation fields. Dates arrive as strings so
// malformed values can be reported alongside every other violation.
type CreateProjectInput struct {
	Name        string
	Description string
	StartDate   string
	DueDate     string
	Status      string
}

// UpdateProjectInput holds partial-update fields; nil means "leave as is".
// An empty string for a date field clears it.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	StartDate   *string
	DueDate     *string
	Status      *string
}

// ProjectService owns the project lifecycle: validation, public code
// assignment, and keeping the stored file consistent with the record.
type ProjectService struct {
	repo  repository.ProjectRepository
	store storage.FileStore

	// Overridable in tests.
	generateCode func() string
	now          func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(repo repository.ProjectRepository, store storage.FileStore) *ProjectService {
	return &ProjectService{
		repo:         repo,
		store:        store,
		generateCode: utils.GenerateProjectCode,
		now:          time.Now,
	}
}

// CreateProject validates input, stores the optional upload, assigns a unique
// public code and persists the project. Nothing is persisted on validation
// failure; a file written before a failed insert is cleaned up best effort.
func (s *ProjectService) CreateProject(input CreateProjectInput, upload *FileUpload) (*models.Project, error) {
	v := apierrors.NewValidationError()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		v.Add("name", "The name field is required.")
	} else if utf8.RuneCountInString(name) > 255 {
		v.Add("name", "The name must not be greater than 255 characters.")
	}

	startDate := parseDateField(v, "start_date", input.StartDate)
	dueDate := parseDateField(v, "due_date", input.DueDate)

	status := models.ProjectStatus(input.Status)
	if input.Status == "" {
		v.Add("status", "The status field is required.")
	} else if !models.ValidProjectStatus(status) {
		v.Add("status", "The status must be one of: pending, in_progress, completed.")
	}

	validateUpload(v, upload)

	if v.HasErrors() {
		return nil, v
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		StartDate:   startDate,
		DueDate:     dueDate,
		Status:      status,
	}

	if upload != nil {
		storedName, err := s.storeUpload(upload)
		if err != nil {
			return nil, err
		}
		project.File = storedName
	}

	if err := s.assignCodeAndCreate(project); err != nil {
		// The record never made it in; don't orphan the file we just wrote.
		s.removeStoredFile("create", project.File)
		return nil, err
	}

	return project, nil
}

// ShowProject returns a project by its public code
func (s *ProjectService) ShowProject(code string) (*models.Project, error) {
	return s.findByCode(code)
}

// ListProjects returns projects newest first with a total count
func (s *ProjectService) ListProjects(page, pageSize int) ([]models.Project, int64, error) {
	projects, total, err := s.repo.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing projects: %v", ErrPersistence, err)
	}
	return projects, total, nil
}

// UpdateProject applies a partial update. The project is looked up before any
// file mutation; a new upload is written before the old file is touched, so a
// failed write never destroys the previously valid file.
func (s *ProjectService) UpdateProject(code string, input UpdateProjectInput, upload *FileUpload) (*models.Project, error) {
	project, err := s.findByCode(code)
	if err != nil {
		return nil, err
	}

	v := apierrors.NewValidationError()

	var name string
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		if name == "" {
			v.Add("name", "The name field is required.")
		} else if utf8.RuneCountInString(name) > 255 {
			v.Add("name", "The name must not be greater than 255 characters.")
		}
	}

	var startDate, dueDate *time.Time
	if input.StartDate != nil {
		startDate = parseDateField(v, "start_date", *input.StartDate)
	}
	if input.DueDate != nil {
		dueDate = parseDateField(v, "due_date", *input.DueDate)
	}

	if input.Status != nil && !models.ValidProjectStatus(models.ProjectStatus(*input.Status)) {
		v.Add("status", "The status must be one of: pending, in_progress, completed.")
	}

	validateUpload(v, upload)

	if v.HasErrors() {
		return nil, v
	}

	oldFile := project.File

	if upload != nil {
		storedName, err := s.storeUpload(upload)
		if err != nil {
			return nil, err
		}
		project.File = storedName
	}

	if input.Name != nil {
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.StartDate != nil {
		project.StartDate = startDate
	}
	if input.DueDate != nil {
		project.DueDate = dueDate
	}
	if input.Status != nil {
		project.Status = models.ProjectStatus(*input.Status)
	}

	if err := s.repo.Update(project); err != nil {
		if upload != nil && project.File != oldFile {
			s.removeStoredFile("update", project.File)
		}
		return nil, fmt.Errorf("%w: updating project %s: %v", ErrPersistence, code, err)
	}

	// Old file is deleted only after the record points at the new one. When
	// the derived names match, Put already overwrote in place.
	if upload != nil && oldFile != "" && oldFile != project.File {
		s.removeStoredFile("update", oldFile)
	}

	return project, nil
}

// DestroyProject deletes a project and its stored file. The database is the
// authoritative existence record: a failed file deletion is logged and never
// blocks removing the record.
func (s *ProjectService) DestroyProject(code string) error {
	project, err := s.findByCode(code)
	if err != nil {
		return err
	}

	if project.HasFile() {
		ext := utils.FileExtension(project.File)
		if s.store.Exists(ext, project.File) {
			if err := s.store.Delete(ext, project.File); err != nil {
				log.Printf("destroy: failed to delete file %s for project %s: %v", project.File, code, err)
			}
		}
	}

	if err := s.repo.Delete(project); err != nil {
		return fmt.Errorf("%w: deleting project %s: %v", ErrPersistence, code, err)
	}

	return nil
}

// FileURL resolves the public URL of a project's stored file, or "" when the
// project has none.
func (s *ProjectService) FileURL(project *models.Project) string {
	if !project.HasFile() {
		return ""
	}
	return s.store.PublicURL(utils.FileExtension(project.File), project.File)
}

func (s *ProjectService) findByCode(code string) (*models.Project, error) {
	project, err := s.repo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("%w: finding project %s: %v", ErrPersistence, code, err)
	}
	return project, nil
}

// storeUpload derives the stored name and writes the upload to the store.
func (s *ProjectService) storeUpload(upload *FileUpload) (string, error) {
	storedName := utils.StoredFileName(upload.Name, s.now())
	ext := utils.FileExtension(storedName)
	if err := s.store.Put(ext, storedName, upload.Content); err != nil {
		return "", fmt.Errorf("%w: storing %s: %v", ErrStorage, storedName, err)
	}
	return storedName, nil
}

// assignCodeAndCreate retries generation until a free code is found. The
// in-loop existence check is an optimization; the unique index is the real
// guarantee, and a duplicate-key insert from a concurrent creator simply
// costs one more attempt.
func (s *ProjectService) assignCodeAndCreate(project *models.Project) error {
	for attempt := 0; attempt < constants.MaxCodeGenAttempts; attempt++ {
		code := s.generateCode()

		exists, err := s.repo.CodeExists(code)
		if err != nil {
			return fmt.Errorf("%w: checking code %s: %v", ErrPersistence, code, err)
		}
		if exists {
			continue
		}

		project.Code = code
		err = s.repo.Create(project)
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return fmt.Errorf("%w: creating project: %v", ErrPersistence, err)
	}

	return fmt.Errorf("%w: code space exhausted after %d attempts", ErrPersistence, constants.MaxCodeGenAttempts)
}

// removeStoredFile is the compensating delete after a failed persistence
// step. Its own failure is logged and never masks the original error.
func (s *ProjectService) removeStoredFile(op, storedName string) {
	if storedName == "" {
		return
	}
	ext := utils.FileExtension(storedName)
	if err := s.store.Delete(ext, storedName); err != nil {
		log.Printf("%s: failed to clean up stored file %s: %v", op, storedName, err)
	}
}

func validateUpload(v *apierrors.ValidationError, upload *FileUpload) {
	if upload == nil {
		return
	}
	if upload.Size > constants.MaxUploadBytes {
		v.Add("file", "The file must not be greater than 10 MB.")
	}
	ext := utils.FileExtension(upload.Name)
	if !constants.AllowedFileExtensions[ext] {
		v.Add("file", "The file must be a file of type: png, jpg, svg, pdf, zip, docx, doc.")
	}
}

func parseDateField(v *apierrors.ValidationError, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		v.Add(field, fmt.Sprintf("The %s is not a valid date.", field))
		return nil
	}
	return &parsed
}
