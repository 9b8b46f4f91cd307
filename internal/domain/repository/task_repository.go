package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
)

// TaskRepository define el puerto de persistencia para tareas de producción.
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Task, error)
	UpdateStatus(ctx context.Context, id string, status entity.TaskStatus, at time.Time) error
	AddAssignment(ctx context.Context, taskID string, assignment entity.TaskAssignment) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Task, error)
	ArchiveByOrder(ctx context.Context, orderID string, at time.Time) error
}
