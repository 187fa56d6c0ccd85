package resource

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sahilchouksey/taskboard-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Pending", StatusLabel(model.TaskStatusPending))
	assert.Equal(t, "In Progress", StatusLabel(model.TaskStatusInProgress))
	assert.Equal(t, "Done", StatusLabel(model.TaskStatusDone))
}

func TestNewTask(t *testing.T) {
	task := &model.Task{
		ID:        7,
		ProjectID: 3,
		Title:     "T1",
		Status:    model.TaskStatusInProgress,
		DueDate:   model.NewDate(time.Date(2024, 1, 5, 15, 4, 5, 0, time.UTC)),
	}

	raw, err := json.Marshal(NewTask(task))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"title":"T1","status":"In Progress","due_date":"05-Jan-2024","project_id":3}`, string(raw))
}

func TestNewTasksEmpty(t *testing.T) {
	raw, err := json.Marshal(NewTasks(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestNewUserHidesSecrets(t *testing.T) {
	raw, err := json.Marshal(NewUser(&model.User{ID: 1, Name: "A", Email: "a@example.com", PasswordHash: "hash"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"A","email":"a@example.com"}`, string(raw))
}
