package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

// CleanupTrigger enqueues an audit retention run outside its schedule and
// reports the schedule's state.
type CleanupTrigger interface {
	RunNow(ctx context.Context, requestedBy string) (string, error)
	IsRunning() bool
	GetNextRunTime() *time.Time
}

// TaskStatusReader looks up background task state.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController handles task queue endpoints.
type TasksController struct {
	cleanup CleanupTrigger
	status  TaskStatusReader
}

// NewTasksController creates a new TasksController.
func NewTasksController(cleanup CleanupTrigger, status TaskStatusReader) *TasksController {
	return &TasksController{cleanup: cleanup, status: status}
}

// TaskInfo represents basic information about a task.
type TaskInfo struct {
	ID     string `json:"id"`
	Queue  string `json:"queue,omitempty"`
	Status string `json:"status"`
}

// CleanupSchedule is the state of the recurring audit retention job.
type CleanupSchedule struct {
	Running bool       `json:"running"`
	NextRun *time.Time `json:"nextRun,omitempty"`
}

// GetAuditCleanup handles GET /api/admin/audit/cleanup
func (tc *TasksController) GetAuditCleanup(c *gin.Context) {
	c.JSON(http.StatusOK, CleanupSchedule{
		Running: tc.cleanup.IsRunning(),
		NextRun: tc.cleanup.GetNextRunTime(),
	})
}

// RunAuditCleanup handles POST /api/admin/audit/cleanup
func (tc *TasksController) RunAuditCleanup(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	taskID, err := tc.cleanup.RunNow(ctx, "api")
	if err != nil {
		respondInternalError(c, err, "enqueue audit cleanup")
		return
	}

	respondAccepted(c, "task enqueued", TaskInfo{
		ID:     taskID,
		Queue:  "cleanup_audit_events",
		Status: taskStatusToString(backlite.TaskStatusPending),
	})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.status.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, TaskInfo{ID: taskID, Status: taskStatusToString(status)})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
