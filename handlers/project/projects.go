package project

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/taskboard-api/handlers/resource"
	"github.com/sahilchouksey/taskboard-api/services"
	"github.com/sahilchouksey/taskboard-api/utils/middleware"
	"github.com/sahilchouksey/taskboard-api/utils/response"
	"github.com/sahilchouksey/taskboard-api/utils/validation"
)

// ProjectHandler handles project-related requests
type ProjectHandler struct {
	projectService *services.ProjectService
	validator      *validation.Validator
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		validator:      validation.NewValidator(),
	}
}

// ProjectRequest represents the request body for creating or updating a project
type ProjectRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required,max=1000"`
}

// ListProjects handles GET /api/projects
func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	page := services.ClampPage(c.QueryInt("page", 1))
	projects, total, err := h.projectService.List(c.UserContext(), user, page)
	if err != nil {
		return response.InternalServerError(c, "Could not fetch projects.")
	}

	return response.Paginated(c, "Projects fetched successfully.",
		resource.NewProjects(projects),
		response.CalculatePagination(page, services.PageSize, total))
}

// GetProject handles GET /api/projects/:id/show
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.NotFound(c, "Project not found.")
	}

	project, err := h.projectService.Get(c.UserContext(), user, uint(id))
	if err != nil {
		return projectError(c, err, "view", "Could not fetch the project.")
	}

	return response.Success(c, "Project fetched successfully.", resource.NewProject(project))
}

// CreateProject handles POST /api/projects/create
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	req, fields, err := h.parseRequest(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if fields != nil {
		return response.ValidationError(c, fields)
	}

	project, err := h.projectService.Create(c.UserContext(), user, services.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return response.InternalServerError(c, "Could not create a project.")
	}

	return response.Created(c, "Project was created successfully.", resource.NewProject(project))
}

// UpdateProject handles PUT /api/projects/:id/edit
func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.NotFound(c, "Project not found.")
	}

	req, fields, err := h.parseRequest(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if fields != nil {
		return response.ValidationError(c, fields)
	}

	err = h.projectService.Update(c.UserContext(), user, uint(id), services.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return projectError(c, err, "update", "Could not update a project.")
	}

	return response.Success(c, "Project was updated successfully.", nil)
}

// DeleteProject handles DELETE /api/projects/:id/delete
func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.NotFound(c, "Project not found.")
	}

	if err := h.projectService.Delete(c.UserContext(), user, uint(id)); err != nil {
		return projectError(c, err, "delete", "Could not delete a project.")
	}

	return response.Success(c, "Project was deleted successfully.", nil)
}

// parseRequest binds and validates the body. A non-nil field map means
// validation failed.
func (h *ProjectHandler) parseRequest(c *fiber.Ctx) (*ProjectRequest, map[string]string, error) {
	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, nil, err
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Description = validation.SanitizeString(req.Description)

	if err := h.validator.ValidateStruct(req); err != nil {
		return nil, validation.FormatValidationErrors(err), nil
	}
	return &req, nil, nil
}

func projectError(c *fiber.Ctx, err error, action, internalMessage string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Project not found.")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "You cannot "+action+" the project.")
	default:
		return response.InternalServerError(c, internalMessage)
	}
}
