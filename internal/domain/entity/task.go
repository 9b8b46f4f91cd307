package entity

import (
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain"
)

// TaskStatus estado de una tarea de producción (EstadoTarea).
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDIENTE"
	TaskInProgress TaskStatus = "EN_PROCESO"
	TaskPaused     TaskStatus = "EN_PAUSA"
	TaskCompleted  TaskStatus = "COMPLETADA"
	TaskCancelled  TaskStatus = "CANCELADA"
)

var taskStatusLabels = map[TaskStatus]string{
	TaskPending:    "Pendiente",
	TaskInProgress: "En proceso",
	TaskPaused:     "En pausa",
	TaskCompleted:  "Completada",
	TaskCancelled:  "Cancelada",
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskInProgress, TaskCancelled},
	TaskInProgress: {TaskCompleted, TaskPaused, TaskCancelled},
	TaskPaused:     {TaskInProgress, TaskCancelled},
}

// ParseTaskStatus valida un estado recibido como texto.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if _, ok := taskStatusLabels[st]; !ok {
		return "", domain.Invalid("estado de tarea desconocido: %q", s)
	}
	return st, nil
}

// Label devuelve la descripción para mostrar.
func (s TaskStatus) Label() string {
	if l, ok := taskStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Terminal COMPLETADA y CANCELADA no admiten más transiciones.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// CanTransitionTo valida una arista de la máquina de estados de tareas.
func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	for _, t := range taskTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// TaskAssignment par (usuario, producto) asignado a una tarea.
type TaskAssignment struct {
	UserID    string
	ProductID string
}

// Task tarea de producción ligada a un producto y, opcionalmente, a un pedido.
type Task struct {
	ID          string
	OrderID     string // vacío si la tarea no nace de un pedido
	ProductID   string
	Name        string
	Description string
	Comments    string
	Status      TaskStatus
	Assignments []TaskAssignment
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ArchivedAt  *time.Time
}

// HasAssignment indica si el usuario ya está asignado a la tarea.
func (t *Task) HasAssignment(userID string) bool {
	for _, a := range t.Assignments {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// Clone devuelve una copia profunda de la tarea.
func (t *Task) Clone() *Task {
	c := *t
	c.Assignments = append([]TaskAssignment(nil), t.Assignments...)
	if t.ArchivedAt != nil {
		at := *t.ArchivedAt
		c.ArchivedAt = &at
	}
	return &c
}
