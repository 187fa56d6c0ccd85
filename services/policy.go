package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/taskboard-api/model"
	"gorm.io/gorm"
)

// Action is an operation a user attempts on a project or task
type Action string

const (
	ActionView   Action = "view"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// OwnershipPolicy decides whether a user may act on a project or task.
// A project belongs to its user_id; a task belongs to the owner of its project.
// View, update and delete share the same rule.
type OwnershipPolicy struct {
	db *gorm.DB
}

// NewOwnershipPolicy creates a policy that resolves parent projects through db
func NewOwnershipPolicy(db *gorm.DB) *OwnershipPolicy {
	return &OwnershipPolicy{db: db}
}

// Authorize returns ErrForbidden when user may not perform action on resource.
// resource must be *model.Project or *model.Task.
func (p *OwnershipPolicy) Authorize(ctx context.Context, user *model.User, action Action, resource any) error {
	var (
		allowed bool
		err     error
	)
	switch action {
	case ActionView:
		allowed, err = p.CanView(ctx, user, resource)
	case ActionUpdate:
		allowed, err = p.CanUpdate(ctx, user, resource)
	case ActionDelete:
		allowed, err = p.CanDelete(ctx, user, resource)
	default:
		return fmt.Errorf("unknown policy action %q", action)
	}
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("cannot %s %T: %w", action, resource, ErrForbidden)
	}
	return nil
}

// CanView reports whether user may view resource
func (p *OwnershipPolicy) CanView(ctx context.Context, user *model.User, resource any) (bool, error) {
	return p.owns(ctx, user, resource)
}

// CanUpdate reports whether user may update resource
func (p *OwnershipPolicy) CanUpdate(ctx context.Context, user *model.User, resource any) (bool, error) {
	return p.owns(ctx, user, resource)
}

// CanDelete reports whether user may delete resource
func (p *OwnershipPolicy) CanDelete(ctx context.Context, user *model.User, resource any) (bool, error) {
	return p.owns(ctx, user, resource)
}

func (p *OwnershipPolicy) owns(ctx context.Context, user *model.User, resource any) (bool, error) {
	if user == nil {
		return false, nil
	}

	switch r := resource.(type) {
	case *model.Project:
		return r.UserID == user.ID, nil
	case *model.Task:
		project := r.Project
		if project == nil || project.ID != r.ProjectID {
			var parent model.Project
			err := p.db.WithContext(ctx).Select("id", "user_id").First(&parent, r.ProjectID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			if err != nil {
				return false, internal("load parent project", err)
			}
			project = &parent
		}
		return project.UserID == user.ID, nil
	default:
		return false, fmt.Errorf("unsupported policy resource %T", resource)
	}
}
