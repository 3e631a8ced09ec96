package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mizuhara/project-management-api/internal/dto"
	apierrors "github.com/mizuhara/project-management-api/internal/errors"
	"github.com/mizuhara/project-management-api/internal/services"
	"github.com/mizuhara/project-management-api/internal/utils"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns a paginated project list, newest first.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.ListProjects(params.Page, params.Limit)
	if err != nil {
		log.Printf("Project listing failed: %v", err)
		apierrors.InternalError(c, "An error occurred while listing projects.")
		return
	}

	items := make([]dto.ProjectDTO, 0, len(projects))
	for _, p := range projects {
		items = append(items, dto.ToProjectDTO(p, h.projectService.FileURL(&p)))
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateProject creates a project from a multipart form.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	input := services.CreateProjectInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		StartDate:   c.PostForm("start_date"),
		DueDate:     c.PostForm("due_date"),
		Status:      c.PostForm("status"),
	}

	upload, cleanup, err := formFileUpload(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid file upload")
		return
	}
	defer cleanup()

	project, err := h.projectService.CreateProject(input, upload)
	if err != nil {
		respondProjectError(c, "Project creation failed", "An error occurred while creating the project.", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully!",
		"data":    dto.ToProjectDTO(*project, h.projectService.FileURL(project)),
	})
}

// ShowProject returns a project by its public code.
func (h *ProjectHandler) ShowProject(c *gin.Context) {
	project, err := h.projectService.ShowProject(c.Param("code"))
	if err != nil {
		respondProjectError(c, "Project lookup failed", "An error occurred while fetching the project.", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project, h.projectService.FileURL(project)))
}

// UpdateProject partially updates a project; only submitted fields change.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	input := services.UpdateProjectInput{
		Name:        postFormPtr(c, "name"),
		Description: postFormPtr(c, "description"),
		StartDate:   postFormPtr(c, "start_date"),
		DueDate:     postFormPtr(c, "due_date"),
		Status:      postFormPtr(c, "status"),
	}

	upload, cleanup, err := formFileUpload(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid file upload")
		return
	}
	defer cleanup()

	project, err := h.projectService.UpdateProject(c.Param("code"), input, upload)
	if err != nil {
		respondProjectError(c, "Project update failed", "An error occurred while updating the project.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully!",
		"data":    dto.ToProjectDTO(*project, h.projectService.FileURL(project)),
	})
}

// DestroyProject deletes a project and its stored file.
func (h *ProjectHandler) DestroyProject(c *gin.Context) {
	if err := h.projectService.DestroyProject(c.Param("code")); err != nil {
		respondProjectError(c, "Project deletion failed", "An error occurred while deleting the project.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully!",
	})
}

// formFileUpload extracts the optional "file" form part. The returned cleanup
// closes the underlying multipart file and is safe to call unconditionally.
func formFileUpload(c *gin.Context) (*services.FileUpload, func(), error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, err
	}

	upload := &services.FileUpload{
		Name:    fileHeader.Filename,
		Size:    fileHeader.Size,
		Content: f,
	}
	return upload, func() { f.Close() }, nil
}

// postFormPtr distinguishes an absent form field (nil) from a submitted
// empty one, which is what partial update semantics need.
func postFormPtr(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}

func respondProjectError(c *gin.Context, logPrefix, publicMessage string, err error) {
	var vErr *apierrors.ValidationError
	switch {
	case errors.As(err, &vErr):
		apierrors.UnprocessableEntity(c, vErr.Fields)
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	default:
		log.Printf("%s: %v", logPrefix, err)
		apierrors.InternalError(c, publicMessage)
	}
}
