package mq

// Routing keys for domain events
const (
	RoutingProjectCreated = "project.created"
	RoutingProjectDeleted = "project.deleted"
	RoutingTaskCreated    = "task.created"
	RoutingTaskCompleted  = "task.completed"
	RoutingTaskDeleted    = "task.deleted"
)

type ProjectEventPayload struct {
	ProjectID uint   `json:"project_id"`
	UserID    uint   `json:"user_id"`
	Name      string `json:"name,omitempty"`
}

type TaskEventPayload struct {
	TaskID    uint   `json:"task_id"`
	ProjectID uint   `json:"project_id"`
	UserID    uint   `json:"user_id"`
	Title     string `json:"title,omitempty"`
	Status    string `json:"status,omitempty"`
	DueDate   string `json:"due_date,omitempty"` // YYYY-MM-DD
}
