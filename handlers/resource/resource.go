// Package resource renders models into their public JSON shape.
package resource

import (
	"strings"
	"time"

	"github.com/sahilchouksey/taskboard-api/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DueDateLayout renders dates as 05-Jan-2024
const DueDateLayout = "02-Jan-2006"

// UserResource is the public view of a user
type UserResource struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProjectResource is the public view of a project
type ProjectResource struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskResource is the public view of a task
type TaskResource struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	DueDate   string `json:"due_date"`
	ProjectID int    `json:"project_id"`
}

func NewUser(u *model.User) UserResource {
	return UserResource{ID: u.ID, Name: u.Name, Email: u.Email}
}

func NewProject(p *model.Project) ProjectResource {
	return ProjectResource{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProjects(projects []model.Project) []ProjectResource {
	out := make([]ProjectResource, 0, len(projects))
	for i := range projects {
		out = append(out, NewProject(&projects[i]))
	}
	return out
}

func NewTask(t *model.Task) TaskResource {
	return TaskResource{
		ID:        t.ID,
		Title:     t.Title,
		Status:    StatusLabel(t.Status),
		DueDate:   time.Time(t.DueDate).Format(DueDateLayout),
		ProjectID: int(t.ProjectID),
	}
}

func NewTasks(tasks []model.Task) []TaskResource {
	out := make([]TaskResource, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTask(&tasks[i]))
	}
	return out
}

// StatusLabel title-cases a status, turning underscores into spaces:
// in_progress becomes "In Progress".
func StatusLabel(status model.TaskStatus) string {
	// cases.Caser is stateful, so build one per call
	return cases.Title(language.English).String(strings.ReplaceAll(string(status), "_", " "))
}
