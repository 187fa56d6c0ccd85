package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/taskboard-api/api"
	"github.com/sahilchouksey/taskboard-api/config"
	"github.com/sahilchouksey/taskboard-api/database"
	"github.com/sahilchouksey/taskboard-api/database/dbtest"
	"github.com/sahilchouksey/taskboard-api/router"
	"github.com/sahilchouksey/taskboard-api/services"
	"github.com/sahilchouksey/taskboard-api/utils/auth"
	"github.com/sahilchouksey/taskboard-api/utils/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.HashCost = bcrypt.MinCost
}

type envelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		CurrentPage int   `json:"current_page"`
		PerPage     int   `json:"per_page"`
		Total       int64 `json:"total"`
		TotalPages  int   `json:"total_pages"`
	} `json:"pagination"`
}

type client struct {
	t   *testing.T
	app *fiber.App
}

func newClient(t *testing.T) *client {
	t.Helper()

	log := zap.NewNop()
	server := api.NewAPIServer(":0", log)
	router.SetupRoutes(server.GetEngine(), router.Options{
		Store: database.NewGORMStore(dbtest.Open(t), log),
		Env: &config.EnvironmentVariable{
			JWT_SECRET:      "test-secret",
			JWT_ISSUER:      "taskboard-test",
			JWT_EXPIRY:      time.Hour,
			ALLOWED_ORIGINS: "*",
		},
		Logger:           log,
		Cache:            cache.NewMemoryCache(),
		DisableAccessLog: true,
	})
	return &client{t: t, app: server.GetEngine()}
}

func (c *client) do(method, path, token string, body any) (int, envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (c *client) register(name, email string) string {
	c.t.Helper()

	status, env := c.do(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(c.t, fiber.StatusCreated, status, env.Message)

	var data struct {
		AuthToken string `json:"auth_token"`
		ExpiresIn int    `json:"expires_in"`
		User      struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(c.t, data.AuthToken)
	return data.AuthToken
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type projectJSON struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type taskJSON struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	DueDate   string `json:"due_date"`
	ProjectID int    `json:"project_id"`
}

func TestOwnershipScenario(t *testing.T) {
	c := newClient(t)
	tokenA := c.register("Alice", "alice@example.com")

	status, env := c.do(fiber.MethodPost, "/api/projects/create", tokenA, fiber.Map{"name": "P1", "description": "first"})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Project was created successfully.", env.Message)
	project := decode[projectJSON](t, env.Data)

	status, env = c.do(fiber.MethodPost, fmt.Sprintf("/api/projects/%d/tasks/create", project.ID), tokenA, fiber.Map{
		"title":    "T1",
		"status":   "pending",
		"due_date": "2024-01-05",
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	task := decode[taskJSON](t, env.Data)
	assert.Equal(t, "Pending", task.Status)
	assert.Equal(t, "05-Jan-2024", task.DueDate)
	assert.Equal(t, int(project.ID), task.ProjectID)

	taskPath := fmt.Sprintf("/api/projects/%d/tasks/%d", project.ID, task.ID)

	status, env = c.do(fiber.MethodPatch, taskPath+"/status-done", tokenA, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Task was successfully marked as done.", env.Message)

	status, env = c.do(fiber.MethodGet, taskPath+"/show", tokenA, nil)
	require.Equal(t, fiber.StatusOK, status)
	shown := decode[taskJSON](t, env.Data)
	assert.Equal(t, "Done", shown.Status)
	assert.Equal(t, "T1", shown.Title)
	assert.Equal(t, "05-Jan-2024", shown.DueDate)

	tokenB := c.register("Bob", "bob@example.com")

	status, env = c.do(fiber.MethodGet, fmt.Sprintf("/api/projects/%d/show", project.ID), tokenB, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "error", env.Status)

	status, _ = c.do(fiber.MethodGet, taskPath+"/show", tokenB, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = c.do(fiber.MethodDelete, taskPath+"/delete", tokenB, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = c.do(fiber.MethodGet, fmt.Sprintf("/api/projects/%d/tasks", project.ID), tokenB, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = c.do(fiber.MethodGet, "/api/projects", tokenB, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]projectJSON](t, env.Data))
}

func TestAuthFlow(t *testing.T) {
	c := newClient(t)
	registered := c.register("Alice", "alice@example.com")

	status, env := c.do(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Again", "email": "ALICE@example.com", "password": "password123",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, string(env.Data), "email")

	status, env = c.do(fiber.MethodPost, "/api/auth/register", "", fiber.Map{"name": "", "email": "nope", "password": "short"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	fields := decode[map[string]string](t, env.Data)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	status, env = c.do(fiber.MethodPost, "/api/auth/login", "", fiber.Map{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials.", env.Message)

	status, env = c.do(fiber.MethodPost, "/api/auth/login", "", fiber.Map{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, fiber.StatusOK, status)
	loggedIn := decode[struct {
		AuthToken string `json:"auth_token"`
	}](t, env.Data).AuthToken

	// Both tokens work until logout
	status, _ = c.do(fiber.MethodGet, "/api/projects", registered, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = c.do(fiber.MethodGet, "/api/projects", loggedIn, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, env = c.do(fiber.MethodDelete, "/api/auth/logout", loggedIn, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "User logged out successfully.", env.Message)

	status, _ = c.do(fiber.MethodGet, "/api/projects", registered, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = c.do(fiber.MethodGet, "/api/projects", loggedIn, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = c.do(fiber.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = c.do(fiber.MethodGet, "/api/projects", "garbage", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRegisterPasswordByteLimit(t *testing.T) {
	c := newClient(t)

	// 40 characters but 80 bytes, more than bcrypt accepts
	status, env := c.do(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Accent", "email": "accent@example.com", "password": strings.Repeat("é", 40),
	})
	require.Equal(t, fiber.StatusBadRequest, status, env.Message)
	assert.Equal(t, "The given data was invalid.", env.Message)
	fields := decode[map[string]string](t, env.Data)
	assert.Equal(t, "The password field must not be greater than 72 bytes.", fields["password"])

	status, env = c.do(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Accent", "email": "accent@example.com", "password": strings.Repeat("é", 36),
	})
	assert.Equal(t, fiber.StatusCreated, status, env.Message)
}

func TestListPageBounds(t *testing.T) {
	c := newClient(t)
	token := c.register("Alice", "alice@example.com")

	status, env := c.do(fiber.MethodPost, "/api/projects/create", token, fiber.Map{"name": "P1", "description": "d"})
	require.Equal(t, fiber.StatusCreated, status)
	project := decode[projectJSON](t, env.Data)

	status, env = c.do(fiber.MethodGet, "/api/projects?page=9223372036854775807", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]projectJSON](t, env.Data))
	require.NotNil(t, env.Pagination)
	assert.Equal(t, services.MaxPage, env.Pagination.CurrentPage)
	assert.Equal(t, int64(1), env.Pagination.Total)

	tasks := fmt.Sprintf("/api/projects/%d/tasks", project.ID)
	status, env = c.do(fiber.MethodGet, tasks+"?page=9223372036854775807", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, decode[map[string]string](t, env.Data), "page")

	status, _ = c.do(fiber.MethodGet, tasks+"?page=-1", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTaskListFiltersAndValidation(t *testing.T) {
	c := newClient(t)
	token := c.register("Alice", "alice@example.com")

	status, env := c.do(fiber.MethodPost, "/api/projects/create", token, fiber.Map{"name": "P1", "description": "d"})
	require.Equal(t, fiber.StatusCreated, status)
	project := decode[projectJSON](t, env.Data)
	base := fmt.Sprintf("/api/projects/%d/tasks", project.ID)

	for _, in := range []fiber.Map{
		{"title": "a", "status": "pending", "due_date": "2024-01-05"},
		{"title": "b", "status": "done", "due_date": "2024-01-05"},
		{"title": "c", "status": "done", "due_date": "2024-01-06"},
		{"title": "d", "status": "in_progress", "due_date": "2024-01-05"},
	} {
		status, env := c.do(fiber.MethodPost, base+"/create", token, in)
		require.Equal(t, fiber.StatusCreated, status, env.Message)
	}

	status, env = c.do(fiber.MethodGet, base+"?status=done&due_date=2024-01-05", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	tasks := decode[[]taskJSON](t, env.Data)
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].Title)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.Total)
	assert.Equal(t, 15, env.Pagination.PerPage)

	status, env = c.do(fiber.MethodGet, base+"?sort=asc", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	tasks = decode[[]taskJSON](t, env.Data)
	require.Len(t, tasks, 4)
	assert.Equal(t, "a", tasks[0].Title)
	assert.Equal(t, "In Progress", tasks[3].Status)

	status, _ = c.do(fiber.MethodGet, base+"?sort=sideways", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = c.do(fiber.MethodGet, base+"?status=archived", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = c.do(fiber.MethodGet, base+"?due_date=05-01-2024", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = c.do(fiber.MethodPost, base+"/create", token, fiber.Map{"title": "x", "status": "archived", "due_date": "2024-01-05"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = c.do(fiber.MethodGet, "/api/projects/999/tasks", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestProjectUpdateAndDelete(t *testing.T) {
	c := newClient(t)
	token := c.register("Alice", "alice@example.com")

	status, env := c.do(fiber.MethodPost, "/api/projects/create", token, fiber.Map{"name": "P1", "description": "d"})
	require.Equal(t, fiber.StatusCreated, status)
	project := decode[projectJSON](t, env.Data)
	path := fmt.Sprintf("/api/projects/%d", project.ID)

	status, env = c.do(fiber.MethodPut, path+"/edit", token, fiber.Map{"name": "P1 renamed", "description": "new"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Project was updated successfully.", env.Message)

	status, env = c.do(fiber.MethodGet, path+"/show", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "P1 renamed", decode[projectJSON](t, env.Data).Name)

	status, _ = c.do(fiber.MethodPut, path+"/edit", token, fiber.Map{"name": ""})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = c.do(fiber.MethodDelete, path+"/delete", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Project was deleted successfully.", env.Message)

	status, _ = c.do(fiber.MethodGet, path+"/show", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = c.do(fiber.MethodGet, "/api/projects/abc/show", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHealthz(t *testing.T) {
	c := newClient(t)

	status, env := c.do(fiber.MethodGet, "/healthz", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "success", env.Status)

	status, env = c.do(fiber.MethodGet, "/no-such-route", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "error", env.Status)
}
