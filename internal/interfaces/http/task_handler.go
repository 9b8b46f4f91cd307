package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/application/production"
	"github.com/jhoicas/Confecciones-api/internal/application/workflow"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
)

// TaskHandler maneja las peticiones HTTP de tareas de producción.
type TaskHandler struct {
	tasks    *production.UseCase
	workflow *workflow.Orchestrator
}

// NewTaskHandler construye el handler.
func NewTaskHandler(t *production.UseCase, wf *workflow.Orchestrator) *TaskHandler {
	return &TaskHandler{tasks: t, workflow: wf}
}

// Create POST /api/tasks
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	task, err := h.tasks.CreateTask(c.UserContext(), in.Name, in.Description, in.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTaskResponse(task))
}

// GetByID GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *fiber.Ctx) error {
	task, err := h.tasks.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewTaskResponse(task))
}

// Transition POST /api/tasks/:id/transition {"status": "COMPLETADA"}
func (h *TaskHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	target, err := entity.ParseTaskStatus(in.Status)
	if err != nil {
		return writeError(c, err)
	}
	var task *entity.Task
	if target == entity.TaskCompleted {
		task, err = h.workflow.CompleteTask(c.UserContext(), c.Params("id"))
	} else {
		task, err = h.tasks.Transition(c.UserContext(), c.Params("id"), target)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewTaskResponse(task))
}

// Assign POST /api/tasks/:id/assignments
func (h *TaskHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignUserRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	task, err := h.tasks.AssignUser(c.UserContext(), c.Params("id"), in.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewTaskResponse(task))
}
