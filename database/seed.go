package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilchouksey/taskboard-api/model"
	"github.com/sahilchouksey/taskboard-api/utils/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedUser describes the account the demo data is created for
type SeedUser struct {
	Name     string
	Email    string
	Password string
}

// Seeder handles database seeding operations
type Seeder struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, log *zap.Logger) *Seeder {
	return &Seeder{db: db, log: log}
}

// SeedAll creates the demo user and, if that user has no projects yet, a
// couple of sample projects with tasks. Running it twice changes nothing.
func (s *Seeder) SeedAll(u SeedUser) error {
	s.log.Info("Starting database seeding")

	user, err := s.SeedUser(u)
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	if err := s.SeedProjects(user); err != nil {
		return fmt.Errorf("failed to seed projects: %w", err)
	}

	s.log.Info("Database seeding completed")
	return nil
}

// SeedUser returns the user with u.Email, creating it when missing
func (s *Seeder) SeedUser(u SeedUser) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))

	var existing model.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		s.log.Info("Seed user already exists, skipping", zap.String("email", email))
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(u.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         u.Name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}

	s.log.Info("Created seed user", zap.String("email", user.Email))
	return user, nil
}

// SeedProjects creates sample projects and tasks for user
func (s *Seeder) SeedProjects(user *model.User) error {
	var count int64
	if err := s.db.Model(&model.Project{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		s.log.Info("Seed user already has projects, skipping", zap.Int64("projects", count))
		return nil
	}

	today := time.Now().UTC()
	projects := []model.Project{
		{
			UserID:      user.ID,
			Name:        "Website relaunch",
			Description: "Move the marketing site to the new design system.",
			Tasks: []model.Task{
				{Title: "Audit existing pages", Status: model.TaskStatusDone, DueDate: model.NewDate(today.AddDate(0, 0, -7))},
				{Title: "Build landing page", Status: model.TaskStatusInProgress, DueDate: model.NewDate(today.AddDate(0, 0, 3))},
				{Title: "Set up redirects", Status: model.TaskStatusPending, DueDate: model.NewDate(today.AddDate(0, 0, 10))},
			},
		},
		{
			UserID:      user.ID,
			Name:        "Quarterly planning",
			Description: "Collect goals and estimates for next quarter.",
			Tasks: []model.Task{
				{Title: "Draft goals", Status: model.TaskStatusPending, DueDate: model.NewDate(today.AddDate(0, 0, 5))},
				{Title: "Review with team", Status: model.TaskStatusPending, DueDate: model.NewDate(today.AddDate(0, 0, 12))},
			},
		},
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range projects {
			if err := tx.Create(&projects[i]).Error; err != nil {
				return err
			}
			s.log.Info("Created seed project",
				zap.String("name", projects[i].Name),
				zap.Int("tasks", len(projects[i].Tasks)),
			)
		}
		return nil
	})
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB, log *zap.Logger, u SeedUser) error {
	return NewSeeder(db, log).SeedAll(u)
}
