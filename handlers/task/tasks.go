package task

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/taskboard-api/handlers/resource"
	"github.com/sahilchouksey/taskboard-api/model"
	"github.com/sahilchouksey/taskboard-api/services"
	"github.com/sahilchouksey/taskboard-api/utils/middleware"
	"github.com/sahilchouksey/taskboard-api/utils/response"
	"github.com/sahilchouksey/taskboard-api/utils/validation"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService *services.TaskService
	validator   *validation.Validator
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validation.NewValidator(),
	}
}

// TaskRequest represents the request body for creating or updating a task
type TaskRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Status  string `json:"status" validate:"required,task_status"`
	DueDate string `json:"due_date" validate:"required,date_ymd"`
}

// ListTasksQuery holds the optional task list filters
type ListTasksQuery struct {
	DueDate string `query:"due_date" validate:"omitempty,date_ymd"`
	Status  string `query:"status" validate:"omitempty,task_status"`
	Sort    string `query:"sort" validate:"omitempty,oneof=asc desc"`
	Page    int    `query:"page" validate:"omitempty,min=1,max=100000"`
}

// ListTasks handles GET /api/projects/:pid/tasks
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	projectID, ok := paramID(c, "pid")
	if !ok {
		return response.NotFound(c, "Project not found.")
	}

	var query ListTasksQuery
	if err := c.QueryParser(&query); err != nil {
		return response.BadRequest(c, "Invalid query parameters.")
	}
	query.Sort = strings.ToLower(strings.TrimSpace(query.Sort))
	if err := h.validator.ValidateStruct(query); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	filter := services.TaskFilter{
		Status: model.TaskStatus(query.Status),
		Sort:   query.Sort,
	}
	if query.DueDate != "" {
		due, _ := validation.ParseDate(query.DueDate)
		filter.DueDate = &due
	}

	page := services.ClampPage(query.Page)

	tasks, total, err := h.taskService.List(c.UserContext(), user, projectID, filter, page)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Project not found.")
		}
		return response.InternalServerError(c, "Could not fetch tasks.")
	}

	return response.Paginated(c, "Tasks fetched successfully.",
		resource.NewTasks(tasks),
		response.CalculatePagination(page, services.PageSize, total))
}

// GetTask handles GET /api/projects/:pid/tasks/:tid/show
func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	projectID, taskID, ok := taskParams(c)
	if !ok {
		return response.NotFound(c, "Task not found.")
	}

	task, err := h.taskService.Get(c.UserContext(), user, projectID, taskID)
	if err != nil {
		return taskError(c, err, "view", "Could not fetch the task.")
	}

	return response.Success(c, "Task fetched successfully.", resource.NewTask(task))
}

// CreateTask handles POST /api/projects/:pid/tasks/create
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	projectID, ok := paramID(c, "pid")
	if !ok {
		return response.NotFound(c, "Project not found.")
	}

	input, fields, err := h.parseRequest(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if fields != nil {
		return response.ValidationError(c, fields)
	}

	task, err := h.taskService.Create(c.UserContext(), user, projectID, *input)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Project not found.")
		}
		return response.InternalServerError(c, "Could not create a task.")
	}

	return response.Created(c, "Task was created successfully.", resource.NewTask(task))
}

// UpdateTask handles PUT /api/projects/:pid/tasks/:tid/edit
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	projectID, taskID, ok := taskParams(c)
	if !ok {
		return response.NotFound(c, "Task not found.")
	}

	input, fields, err := h.parseRequest(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if fields != nil {
		return response.ValidationError(c, fields)
	}

	if err := h.taskService.Update(c.UserContext(), user, projectID, taskID, *input); err != nil {
		return taskError(c, err, "update", "Could not update a task.")
	}

	return response.Success(c, "Task was updated successfully.", nil)
}

// MarkTaskDone handles PATCH /api/projects/:pid/tasks/:tid/status-done
func (h *TaskHandler) MarkTaskDone(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	projectID, taskID, ok := taskParams(c)
	if !ok {
		return response.NotFound(c, "Task not found.")
	}

	if err := h.taskService.MarkDone(c.UserContext(), user, projectID, taskID); err != nil {
		return taskError(c, err, "update", "Could not mark the task as done.")
	}

	return response.Success(c, "Task was successfully marked as done.", nil)
}

// DeleteTask handles DELETE /api/projects/:pid/tasks/:tid/delete
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	projectID, taskID, ok := taskParams(c)
	if !ok {
		return response.NotFound(c, "Task not found.")
	}

	if err := h.taskService.Delete(c.UserContext(), user, projectID, taskID); err != nil {
		return taskError(c, err, "delete", "Could not delete a task.")
	}

	return response.Success(c, "Task was deleted successfully.", nil)
}

func (h *TaskHandler) parseRequest(c *fiber.Ctx) (*services.TaskInput, map[string]string, error) {
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, nil, err
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Status = strings.TrimSpace(req.Status)
	req.DueDate = strings.TrimSpace(req.DueDate)

	if err := h.validator.ValidateStruct(req); err != nil {
		return nil, validation.FormatValidationErrors(err), nil
	}

	// date_ymd has already accepted the value
	due, _ := validation.ParseDate(req.DueDate)

	return &services.TaskInput{
		Title:   req.Title,
		Status:  model.TaskStatus(req.Status),
		DueDate: due,
	}, nil, nil
}

func paramID(c *fiber.Ctx, key string) (uint, bool) {
	id, err := c.ParamsInt(key)
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

func taskParams(c *fiber.Ctx) (projectID, taskID uint, ok bool) {
	if projectID, ok = paramID(c, "pid"); !ok {
		return 0, 0, false
	}
	if taskID, ok = paramID(c, "tid"); !ok {
		return 0, 0, false
	}
	return projectID, taskID, true
}

func taskError(c *fiber.Ctx, err error, action, internalMessage string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Task not found.")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "You cannot "+action+" the task.")
	default:
		return response.InternalServerError(c, internalMessage)
	}
}
