package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo tareas de producción y sus asignaciones.
type TaskRepo struct {
	q Querier
}

// NewTaskRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

const taskColumns = `id, COALESCE(order_id, ''), product_id, name, description, comments, status,
	created_at, updated_at, archived_at`

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	err := row.Scan(&t.ID, &t.OrderID, &t.ProductID, &t.Name, &t.Description, &t.Comments, &t.Status,
		&t.CreatedAt, &t.UpdatedAt, &t.ArchivedAt)
	return &t, err
}

// Create persiste una tarea.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	query := `
		INSERT INTO tasks (id, order_id, product_id, name, description, comments, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		t.ID, nullable(t.OrderID), t.ProductID, t.Name, t.Description, t.Comments, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID obtiene una tarea con sus asignaciones.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	t, err := scanTask(r.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t.Assignments, err = r.assignments(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// GetForUpdate obtiene la tarea y bloquea la fila (FOR UPDATE NOWAIT).
func (r *TaskRepo) GetForUpdate(ctx context.Context, id string) (*entity.Task, error) {
	t, err := scanTask(r.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE NOWAIT`, id))
	found, err := lockError(err, "tarea "+id)
	if !found {
		return nil, err
	}
	if t.Assignments, err = r.assignments(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus cambia el estado de la tarea.
func (r *TaskRepo) UpdateStatus(ctx context.Context, id string, status entity.TaskStatus, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: tarea %s", domain.ErrNotFound, id)
	}
	return nil
}

// AddAssignment agrega el par (usuario, producto); repetirlo no hace nada.
func (r *TaskRepo) AddAssignment(ctx context.Context, taskID string, a entity.TaskAssignment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO task_assignments (task_id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (task_id, user_id) DO NOTHING`, taskID, a.UserID, a.ProductID)
	if err != nil {
		return fmt.Errorf("insert task assignment: %w", err)
	}
	return nil
}

// ListByOrder lista las tareas del pedido en orden de creación.
func (r *TaskRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Task, error) {
	rows, err := r.q.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var list []*entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for _, t := range list {
		if t.Assignments, err = r.assignments(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ArchiveByOrder archiva las tareas de un pedido archivado.
func (r *TaskRepo) ArchiveByOrder(ctx context.Context, orderID string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE tasks SET archived_at = $2, updated_at = $2
		WHERE order_id = $1 AND archived_at IS NULL`, orderID, at)
	if err != nil {
		return fmt.Errorf("archive tasks: %w", err)
	}
	return nil
}

func (r *TaskRepo) assignments(ctx context.Context, taskID string) ([]entity.TaskAssignment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT user_id, product_id FROM task_assignments
		WHERE task_id = $1 ORDER BY created_at, user_id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list task assignments: %w", err)
	}
	defer rows.Close()
	var list []entity.TaskAssignment
	for rows.Next() {
		var a entity.TaskAssignment
		if err := rows.Scan(&a.UserID, &a.ProductID); err != nil {
			return nil, fmt.Errorf("scan task assignment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
