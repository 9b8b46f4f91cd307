package dto

import (
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
)

// CreateTaskRequest body para POST /api/tasks.
type CreateTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ProductID   string `json:"product_id"`
}

// AssignUserRequest body para POST /api/tasks/:id/assignments.
type AssignUserRequest struct {
	UserID string `json:"user_id"`
}

// TaskAssignmentResponse par (usuario, producto).
type TaskAssignmentResponse struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

// TaskResponse tarea de producción en respuestas.
type TaskResponse struct {
	ID          string                   `json:"id"`
	OrderID     string                   `json:"order_id,omitempty"`
	ProductID   string                   `json:"product_id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	Comments    string                   `json:"comments,omitempty"`
	Status      string                   `json:"status"`
	StatusLabel string                   `json:"status_label"`
	Assignments []TaskAssignmentResponse `json:"assignments"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// NewTaskResponse convierte la entidad a respuesta.
func NewTaskResponse(t *entity.Task) TaskResponse {
	assignments := make([]TaskAssignmentResponse, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		assignments = append(assignments, TaskAssignmentResponse{UserID: a.UserID, ProductID: a.ProductID})
	}
	return TaskResponse{
		ID:          t.ID,
		OrderID:     t.OrderID,
		ProductID:   t.ProductID,
		Name:        t.Name,
		Description: t.Description,
		Comments:    t.Comments,
		Status:      string(t.Status),
		StatusLabel: t.Status.Label(),
		Assignments: assignments,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
