package services

import (
	"context"
	"errors"

	"github.com/sahilchouksey/taskboard-api/model"
	"github.com/sahilchouksey/taskboard-api/utils/metrics"
	"github.com/sahilchouksey/taskboard-api/utils/mq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PageSize is the fixed number of items per listing page
const PageSize = 15

// MaxPage bounds page numbers so the row offset cannot overflow
const MaxPage = 100000

// ClampPage moves page into [1, MaxPage]
func ClampPage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	default:
		return page
	}
}

// ProjectService implements owner-scoped project CRUD
type ProjectService struct {
	db     *gorm.DB
	policy *OwnershipPolicy
	events eventEmitter
	log    *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(db *gorm.DB, policy *OwnershipPolicy, publisher mq.Publisher, log *zap.Logger) *ProjectService {
	return &ProjectService{
		db:     db,
		policy: policy,
		events: newEventEmitter(publisher, log),
		log:    log,
	}
}

// ProjectInput carries validated project fields
type ProjectInput struct {
	Name        string
	Description string
}

// List returns one page of the user's projects, newest first, and the total count
func (s *ProjectService) List(ctx context.Context, user *model.User, page int) ([]model.Project, int64, error) {
	page = ClampPage(page)

	owned := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.Project{}).Where("user_id = ?", user.ID)
	}

	var total int64
	if err := owned().Count(&total).Error; err != nil {
		s.log.Error("Failed to count projects", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, 0, internal("count projects", err)
	}

	projects := []model.Project{}
	if err := owned().
		Order("created_at DESC").
		Order("id DESC").
		Limit(PageSize).
		Offset((page - 1) * PageSize).
		Find(&projects).Error; err != nil {
		s.log.Error("Failed to list projects", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, 0, internal("list projects", err)
	}

	return projects, total, nil
}

// Get returns a project the user owns
func (s *ProjectService) Get(ctx context.Context, user *model.User, id uint) (*model.Project, error) {
	project, err := s.findOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(ctx, user, ActionView, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Create stores a new project owned by user
func (s *ProjectService) Create(ctx context.Context, user *model.User, in ProjectInput) (*model.Project, error) {
	project := model.Project{
		UserID:      user.ID,
		Name:        in.Name,
		Description: in.Description,
	}

	err := runInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Create(&project).Error
	})
	metrics.RecordDomainOperation("project", "create", err)
	if err != nil {
		s.log.Error("Failed to create project", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, internal("create project", err)
	}

	s.events.emit(ctx, mq.RoutingProjectCreated, mq.ProjectEventPayload{
		ProjectID: project.ID,
		UserID:    user.ID,
		Name:      project.Name,
	})
	return &project, nil
}

// Update replaces the name and description of an owned project
func (s *ProjectService) Update(ctx context.Context, user *model.User, id uint, in ProjectInput) error {
	project, err := s.findOwned(ctx, user, id)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(ctx, user, ActionUpdate, project); err != nil {
		return err
	}

	project.Name = in.Name
	project.Description = in.Description

	err = runInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Model(project).Select("name", "description").Updates(project).Error
	})
	metrics.RecordDomainOperation("project", "update", err)
	if err != nil {
		s.log.Error("Failed to update project", zap.Uint("project_id", id), zap.Error(err))
		return internal("update project", err)
	}
	return nil
}

// Delete removes an owned project together with all of its tasks
func (s *ProjectService) Delete(ctx context.Context, user *model.User, id uint) error {
	project, err := s.findOwned(ctx, user, id)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(ctx, user, ActionDelete, project); err != nil {
		return err
	}

	err = runInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	metrics.RecordDomainOperation("project", "delete", err)
	if err != nil {
		s.log.Error("Failed to delete project", zap.Uint("project_id", id), zap.Error(err))
		return internal("delete project", err)
	}

	s.events.emit(ctx, mq.RoutingProjectDeleted, mq.ProjectEventPayload{
		ProjectID: project.ID,
		UserID:    user.ID,
	})
	return nil
}

// findOwned looks a project up by id within the user's projects only
func (s *ProjectService) findOwned(ctx context.Context, user *model.User, id uint) (*model.Project, error) {
	var project model.Project
	err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		s.log.Error("Failed to load project", zap.Uint("project_id", id), zap.Error(err))
		return nil, internal("load project", err)
	}
	return &project, nil
}
