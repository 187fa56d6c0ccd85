package services

import (
	"context"
	"errors"
	"time"

	"github.com/sahilchouksey/taskboard-api/model"
	"github.com/sahilchouksey/taskboard-api/utils/metrics"
	"github.com/sahilchouksey/taskboard-api/utils/mq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// TaskService implements CRUD for tasks nested under a project
type TaskService struct {
	db       *gorm.DB
	policy   *OwnershipPolicy
	projects *ProjectService
	events   eventEmitter
	log      *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(db *gorm.DB, policy *OwnershipPolicy, projects *ProjectService, publisher mq.Publisher, log *zap.Logger) *TaskService {
	return &TaskService{
		db:       db,
		policy:   policy,
		projects: projects,
		events:   newEventEmitter(publisher, log),
		log:      log,
	}
}

// TaskFilter narrows a task listing. Zero values mean "no filter";
// Sort defaults to newest first.
type TaskFilter struct {
	DueDate *time.Time
	Status  model.TaskStatus
	Sort    string
}

// TaskInput carries validated task fields
type TaskInput struct {
	Title   string
	Status  model.TaskStatus
	DueDate time.Time
}

// List returns one page of a project's tasks. The project must belong to user.
func (s *TaskService) List(ctx context.Context, user *model.User, projectID uint, filter TaskFilter, page int) ([]model.Task, int64, error) {
	page = ClampPage(page)

	if _, err := s.projects.findOwned(ctx, user, projectID); err != nil {
		return nil, 0, err
	}

	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&model.Task{}).Where("project_id = ?", projectID)
		if filter.DueDate != nil {
			query = query.Where("due_date = ?", model.NewDate(*filter.DueDate))
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		s.log.Error("Failed to count tasks", zap.Uint("project_id", projectID), zap.Error(err))
		return nil, 0, internal("count tasks", err)
	}

	direction := "DESC"
	if filter.Sort == SortAsc {
		direction = "ASC"
	}

	tasks := []model.Task{}
	if err := filtered().
		Order("created_at " + direction).
		Order("id " + direction).
		Limit(PageSize).
		Offset((page - 1) * PageSize).
		Find(&tasks).Error; err != nil {
		s.log.Error("Failed to list tasks", zap.Uint("project_id", projectID), zap.Error(err))
		return nil, 0, internal("list tasks", err)
	}

	return tasks, total, nil
}

// Get returns a task of the given project if user owns that project
func (s *TaskService) Get(ctx context.Context, user *model.User, projectID, taskID uint) (*model.Task, error) {
	task, err := s.findInProject(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(ctx, user, ActionView, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Create adds a task to a project owned by user
func (s *TaskService) Create(ctx context.Context, user *model.User, projectID uint, in TaskInput) (*model.Task, error) {
	project, err := s.projects.findOwned(ctx, user, projectID)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		ProjectID: project.ID,
		Title:     in.Title,
		Status:    in.Status,
		DueDate:   model.NewDate(in.DueDate),
	}

	err = runInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Create(&task).Error
	})
	metrics.RecordDomainOperation("task", "create", err)
	if err != nil {
		s.log.Error("Failed to create task", zap.Uint("project_id", projectID), zap.Error(err))
		return nil, internal("create task", err)
	}

	s.events.emit(ctx, mq.RoutingTaskCreated, taskEvent(&task, user))
	return &task, nil
}

// Update replaces title, status and due date of a task
func (s *TaskService) Update(ctx context.Context, user *model.User, projectID, taskID uint, in TaskInput) error {
	task, err := s.findInProject(ctx, projectID, taskID)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(ctx, user, ActionUpdate, task); err != nil {
		return err
	}

	wasDone := task.Status == model.TaskStatusDone
	task.Title = in.Title
	task.Status = in.Status
	task.DueDate = model.NewDate(in.DueDate)

	err = runInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Model(task).Select("title", "status", "due_date").Updates(task).Error
	})
	metrics.RecordDomainOperation("task", "update", err)
	if err != nil {
		s.log.Error("Failed to update task", zap.Uint("task_id", taskID), zap.Error(err))
		return internal("update task", err)
	}

	if !wasDone && task.Status == model.TaskStatusDone {
		s.events.emit(ctx, mq.RoutingTaskCompleted, taskEvent(task, user))
	}
	return nil
}

// MarkDone sets the task status to done and touches nothing else
func (s *TaskService) MarkDone(ctx context.Context, user *model.User, projectID, taskID uint) error {
	task, err := s.findInProject(ctx, projectID, taskID)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(ctx, user, ActionUpdate, task); err != nil {
		return err
	}

	err = runInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Model(task).Update("status", model.TaskStatusDone).Error
	})
	metrics.RecordDomainOperation("task", "mark_done", err)
	if err != nil {
		s.log.Error("Failed to mark task as done", zap.Uint("task_id", taskID), zap.Error(err))
		return internal("mark task done", err)
	}

	task.Status = model.TaskStatusDone
	s.events.emit(ctx, mq.RoutingTaskCompleted, taskEvent(task, user))
	return nil
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, user *model.User, projectID, taskID uint) error {
	task, err := s.findInProject(ctx, projectID, taskID)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(ctx, user, ActionDelete, task); err != nil {
		return err
	}

	err = runInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Delete(task).Error
	})
	metrics.RecordDomainOperation("task", "delete", err)
	if err != nil {
		s.log.Error("Failed to delete task", zap.Uint("task_id", taskID), zap.Error(err))
		return internal("delete task", err)
	}

	s.events.emit(ctx, mq.RoutingTaskDeleted, taskEvent(task, user))
	return nil
}

// findInProject scopes the lookup by project only; ownership is left to the policy
func (s *TaskService) findInProject(ctx context.Context, projectID, taskID uint) (*model.Task, error) {
	var task model.Task
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		s.log.Error("Failed to load task", zap.Uint("task_id", taskID), zap.Error(err))
		return nil, internal("load task", err)
	}
	return &task, nil
}

func taskEvent(task *model.Task, user *model.User) mq.TaskEventPayload {
	return mq.TaskEventPayload{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		UserID:    user.ID,
		Title:     task.Title,
		Status:    string(task.Status),
		DueDate:   time.Time(task.DueDate).Format("2006-01-02"),
	}
}
