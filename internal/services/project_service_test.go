package services

import (
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/mizuhara/project-management-api/internal/errors"
	"github.com/mizuhara/project-management-api/internal/models"
	"github.com/mizuhara/project-management-api/internal/repository"
	"github.com/mizuhara/project-management-api/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var may2024 = time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)

type projectServiceEnv struct {
	db      *gorm.DB
	store   *storage.DiskStore
	service *ProjectService
}

func setupProjectService(t *testing.T) projectServiceEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Project{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	store := storage.NewDiskStore(t.TempDir(), "http://localhost:8080")
	service := NewProjectService(repository.NewProjectRepository(db), store)
	service.now = func() time.Time { return may2024 }

	return projectServiceEnv{db: db, store: store, service: service}
}

func pdfUpload(name, content string) *FileUpload {
	return &FileUpload{
		Name:    name,
		Size:    int64(len(content)),
		Content: strings.NewReader(content),
	}
}

func strPtr(s string) *string {
	return &s
}

func TestCreateProject_WithFile(t *testing.T) {
	env := setupProjectService(t)

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "Launch",
		Status:    "pending",
		StartDate: "2024-05-01",
		DueDate:   "2024-06-01",
	}, pdfUpload("plan.pdf", "plan body"))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{6}$`), project.Code)
	assert.Equal(t, "Launch", project.Name)
	assert.Equal(t, models.ProjectStatusPending, project.Status)
	assert.Equal(t, "plan_2024-05.pdf", project.File)
	assert.True(t, env.store.Exists("pdf", "plan_2024-05.pdf"))

	require.NotNil(t, project.StartDate)
	assert.Equal(t, "2024-05-01", project.StartDate.Format("2006-01-02"))
}

func TestCreateProject_WithoutFile(t *testing.T) {
	env := setupProjectService(t)

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:   "No attachment",
		Status: "in_progress",
	}, nil)
	require.NoError(t, err)

	assert.False(t, project.HasFile())
}

func TestCreateProject_ReportsAllViolations(t *testing.T) {
	env := setupProjectService(t)

	oversized := &FileUpload{
		Name:    "huge.exe",
		Size:    11 << 20,
		Content: strings.NewReader(""),
	}

	_, err := env.service.CreateProject(CreateProjectInput{
		Name:      "",
		Status:    "archived",
		StartDate: "not-a-date",
	}, oversized)
	require.Error(t, err)

	var vErr *apierrors.ValidationError
	require.ErrorAs(t, err, &vErr)

	assert.Contains(t, vErr.Fields, "name")
	assert.Contains(t, vErr.Fields, "status")
	assert.Contains(t, vErr.Fields, "start_date")
	assert.Contains(t, vErr.Fields, "file")
	// Type and size are separate violations on the same field.
	assert.Len(t, vErr.Fields["file"], 2)

	// Nothing may be persisted or written on validation failure.
	var count int64
	env.db.Model(&models.Project{}).Count(&count)
	assert.Zero(t, count)
	assert.False(t, env.store.Exists("exe", "huge_2024-05.exe"))
}

func TestCreateProject_NameTooLong(t *testing.T) {
	env := setupProjectService(t)

	_, err := env.service.CreateProject(CreateProjectInput{
		Name:   strings.Repeat("a", 256),
		Status: "pending",
	}, nil)

	var vErr *apierrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "name")
}

func TestCreateProject_MultibyteNameLength(t *testing.T) {
	env := setupProjectService(t)

	name := strings.Repeat("\u30d7", 200)
	project, err := env.service.CreateProject(CreateProjectInput{
		Name:   name,
		Status: "pending",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, name, project.Name)
}

func TestCreateProject_RetriesOnCodeCollision(t *testing.T) {
	env := setupProjectService(t)

	require.NoError(t, env.db.Create(&models.Project{
		Code:   "AAAAAA",
		Name:   "Existing",
		Status: models.ProjectStatusPending,
	}).Error)

	codes := []string{"AAAAAA", "BBBBBB"}
	env.service.generateCode = func() string {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code
	}

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Second",
		Status: "pending",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", project.Code)
}

func TestCreateProject_RetriesWhenInsertHitsDuplicateCode(t *testing.T) {
	env := setupProjectService(t)
	env.service.repo = &staleCodeCheckRepo{ProjectRepository: env.service.repo}

	require.NoError(t, env.db.Create(&models.Project{
		Code:   "AAAAAA",
		Name:   "Existing",
		Status: models.ProjectStatusPending,
	}).Error)

	codes := []string{"AAAAAA", "CCCCCC"}
	env.service.generateCode = func() string {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code
	}

	// The pre-check misses the taken code, so the unique index rejects the
	// first insert and the next generated code is used.
	project, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Second",
		Status: "pending",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "CCCCCC", project.Code)
}

func TestCreateProject_CodeSpaceExhausted(t *testing.T) {
	env := setupProjectService(t)

	require.NoError(t, env.db.Create(&models.Project{
		Code:   "AAAAAA",
		Name:   "Existing",
		Status: models.ProjectStatusPending,
	}).Error)

	env.service.generateCode = func() string { return "AAAAAA" }

	_, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Doomed",
		Status: "pending",
	}, nil)
	require.ErrorIs(t, err, ErrPersistence)
}

func TestCreateProject_StoreFailureAbortsCreation(t *testing.T) {
	env := setupProjectService(t)
	env.service.store = &failingPutStore{FileStore: env.store}

	_, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Launch",
		Status: "pending",
	}, pdfUpload("plan.pdf", "body"))
	require.ErrorIs(t, err, ErrStorage)

	var count int64
	env.db.Model(&models.Project{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateProject_CleansUpFileWhenInsertFails(t *testing.T) {
	env := setupProjectService(t)
	env.service.repo = &failingCreateRepo{ProjectRepository: env.service.repo}

	_, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Launch",
		Status: "pending",
	}, pdfUpload("plan.pdf", "body"))
	require.ErrorIs(t, err, ErrPersistence)

	// The compensating delete removed the freshly written file.
	assert.False(t, env.store.Exists("pdf", "plan_2024-05.pdf"))
}

func TestShowProject(t *testing.T) {
	env := setupProjectService(t)

	created, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Visible",
		Status: "completed",
	}, nil)
	require.NoError(t, err)

	found, err := env.service.ShowProject(created.Code)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = env.service.ShowProject("ZZZZZZ")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestListProjects_NewestFirst(t *testing.T) {
	env := setupProjectService(t)

	older := &models.Project{Code: "AAAAAA", Name: "Older", Status: models.ProjectStatusPending, CreatedAt: may2024.Add(-time.Hour)}
	newer := &models.Project{Code: "BBBBBB", Name: "Newer", Status: models.ProjectStatusPending, CreatedAt: may2024}
	require.NoError(t, env.db.Create(older).Error)
	require.NoError(t, env.db.Create(newer).Error)

	projects, total, err := env.service.ListProjects(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, projects, 2)
	assert.Equal(t, "Newer", projects[0].Name)

	page2, total, err := env.service.ListProjects(2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page2, 1)
	assert.Equal(t, "Older", page2[0].Name)
}

func TestUpdateProject_PartialFields(t *testing.T) {
	env := setupProjectService(t)

	created, err := env.service.CreateProject(CreateProjectInput{
		Name:        "Original",
		Description: "keep me",
		Status:      "pending",
	}, nil)
	require.NoError(t, err)

	updated, err := env.service.UpdateProject(created.Code, UpdateProjectInput{
		Name: strPtr("Renamed"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "keep me", updated.Description)
	assert.Equal(t, models.ProjectStatusPending, updated.Status)
	assert.Equal(t, created.Code, updated.Code)
}

func TestUpdateProject_ReplacesFile(t *testing.T) {
	env := setupProjectService(t)

	created, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Launch",
		Status: "pending",
	}, pdfUpload("plan.pdf", "v1"))
	require.NoError(t, err)
	require.True(t, env.store.Exists("pdf", "plan_2024-05.pdf"))

	updated, err := env.service.UpdateProject(created.Code, UpdateProjectInput{}, pdfUpload("roadmap.pdf", "v2"))
	require.NoError(t, err)

	assert.Equal(t, "roadmap_2024-05.pdf", updated.File)
	assert.True(t, env.store.Exists("pdf", "roadmap_2024-05.pdf"))
	assert.False(t, env.store.Exists("pdf", "plan_2024-05.pdf"), "old file must be gone after replacement")
}

func TestUpdateProject_FailedWriteKeepsOldFile(t *testing.T) {
	env := setupProjectService(t)

	created, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Launch",
		Status: "pending",
	}, pdfUpload("plan.pdf", "v1"))
	require.NoError(t, err)

	env.service.store = &failingPutStore{FileStore: env.store}

	_, err = env.service.UpdateProject(created.Code, UpdateProjectInput{}, pdfUpload("roadmap.pdf", "v2"))
	require.ErrorIs(t, err, ErrStorage)

	// Old file untouched, record still points at it.
	assert.True(t, env.store.Exists("pdf", "plan_2024-05.pdf"))
	current, err := env.service.ShowProject(created.Code)
	require.NoError(t, err)
	assert.Equal(t, "plan_2024-05.pdf", current.File)
}

func TestUpdateProject_FailedSaveCleansUpNewFile(t *testing.T) {
	env := setupProjectService(t)

	created, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Launch",
		Status: "pending",
	}, pdfUpload("plan.pdf", "v1"))
	require.NoError(t, err)

	env.service.repo = &failingUpdateRepo{ProjectRepository: env.service.repo}

	_, err = env.service.UpdateProject(created.Code, UpdateProjectInput{}, pdfUpload("roadmap.pdf", "v2"))
	require.ErrorIs(t, err, ErrPersistence)

	// New file compensated away, old one intact.
	assert.False(t, env.store.Exists("pdf", "roadmap_2024-05.pdf"))
	assert.True(t, env.store.Exists("pdf", "plan_2024-05.pdf"))
}

func TestUpdateProject_NotFoundCheckedBeforeFileWrite(t *testing.T) {
	env := setupProjectService(t)

	_, err := env.service.UpdateProject("ZZZZZZ", UpdateProjectInput{}, pdfUpload("plan.pdf", "v1"))
	require.ErrorIs(t, err, ErrProjectNotFound)

	// Missing project means no file mutation at all.
	assert.False(t, env.store.Exists("pdf", "plan_2024-05.pdf"))
}

func TestUpdateProject_ValidatesProvidedFields(t *testing.T) {
	env := setupProjectService(t)

	created, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Launch",
		Status: "pending",
	}, nil)
	require.NoError(t, err)

	_, err = env.service.UpdateProject(created.Code, UpdateProjectInput{
		Name:   strPtr(""),
		Status: strPtr("archived"),
	}, nil)

	var vErr *apierrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "name")
	assert.Contains(t, vErr.Fields, "status")
}

func TestUpdateProject_MultibyteNameLength(t *testing.T) {
	env := setupProjectService(t)

	created, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Launch",
		Status: "pending",
	}, nil)
	require.NoError(t, err)

	name := strings.Repeat("\u30d7", 200)
	updated, err := env.service.UpdateProject(created.Code, UpdateProjectInput{
		Name: strPtr(name),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
}

func TestUpdateProject_ClearsDate(t *testing.T) {
	env := setupProjectService(t)

	created, err := env.service.CreateProject(CreateProjectInput{
		Name:    "Launch",
		Status:  "pending",
		DueDate: "2024-06-01",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, created.DueDate)

	updated, err := env.service.UpdateProject(created.Code, UpdateProjectInput{
		DueDate: strPtr(""),
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestDestroyProject(t *testing.T) {
	env := setupProjectService(t)

	created, err := env.service.CreateProject(CreateProjectInput{
		Name:   "Launch",
		Status: "pending",
	}, pdfUpload("plan.pdf", "body"))
	require.NoError(t, err)

	require.NoError(t, env.service.DestroyProject(created.Code))

	_, err = env.service.ShowProject(created.Code)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.False(t, env.store.Exists("pdf", "plan_2024-05.pdf"))
}

func TestDestroyProject_NotFound(t *testing.T) {
	env := setupProjectService(t)

	err := env.service.DestroyProject("ZZZZZZ")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestFileURL(t *testing.T) {
	env := setupProjectService(t)

	withFile := &models.Project{File: "plan_2024-05.pdf"}
	assert.Equal(t, "http://localhost:8080/project-files/pdf/plan_2024-05.pdf", env.service.FileURL(withFile))

	withoutFile := &models.Project{}
	assert.Equal(t, "", env.service.FileURL(withoutFile))
}

// failingPutStore rejects every write.
type failingPutStore struct {
	storage.FileStore
}

func (s *failingPutStore) Put(ext, storedName string, content io.Reader) error {
	return errors.New("disk full")
}

// failingCreateRepo rejects inserts after the file step has run.
type failingCreateRepo struct {
	repository.ProjectRepository
}

func (r *failingCreateRepo) Create(project *models.Project) error {
	return errors.New("connection reset")
}

// staleCodeCheckRepo reports every code as free, as happens when another
// creator takes the same code between the check and the insert.
type staleCodeCheckRepo struct {
	repository.ProjectRepository
}

func (r *staleCodeCheckRepo) CodeExists(code string) (bool, error) {
	return false, nil
}

// failingUpdateRepo rejects saves after a replacement file was written.
type failingUpdateRepo struct {
	repository.ProjectRepository
}

func (r *failingUpdateRepo) Update(project *models.Project) error {
	return errors.New("connection reset")
}
