package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/taskboard-api/database/dbtest"
	"github.com/sahilchouksey/taskboard-api/model"
	"github.com/sahilchouksey/taskboard-api/utils/auth"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	auth.HashCost = bcrypt.MinCost
}

type publishedEvent struct {
	routingKey string
	payload    any
}

// recordingPublisher keeps every event it is handed
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.routingKey)
	}
	return keys
}

type fixture struct {
	db        *gorm.DB
	publisher *recordingPublisher
	policy    *OwnershipPolicy
	projects  *ProjectService
	tasks     *TaskService
	auth      *AuthService
	jwt       *auth.JWTManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t)
	log := zap.NewNop()
	publisher := &recordingPublisher{}
	policy := NewOwnershipPolicy(db)
	projects := NewProjectService(db, policy, publisher, log)
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "taskboard-test",
	})

	return &fixture{
		db:        db,
		publisher: publisher,
		policy:    policy,
		projects:  projects,
		tasks:     NewTaskService(db, policy, projects, publisher, log),
		auth:      NewAuthService(db, jwtManager, log),
		jwt:       jwtManager,
	}
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Name: email, Email: email, PasswordHash: "x"}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) project(t *testing.T, owner *model.User, name string) *model.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), owner, ProjectInput{Name: name, Description: name + " description"})
	require.NoError(t, err)
	return p
}

func (f *fixture) task(t *testing.T, owner *model.User, projectID uint, title string, status model.TaskStatus, due string) *model.Task {
	t.Helper()
	dueDate, err := time.Parse("2006-01-02", due)
	require.NoError(t, err)
	task, err := f.tasks.Create(context.Background(), owner, projectID, TaskInput{Title: title, Status: status, DueDate: dueDate})
	require.NoError(t, err)
	return task
}
