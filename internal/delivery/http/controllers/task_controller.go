package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"teamdesk/internal/delivery/http/helpers"
	"teamdesk/internal/delivery/http/middleware"
	"teamdesk/internal/domain"
)

// CreateTaskRequest is the request body for POST /tasks
type CreateTaskRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Deadline      time.Time `json:"deadline"`
	TeamID        string    `json:"team_id"`
	AssigneeEmail string    `json:"assignee_email"` // optional
}

// Validate implements Validator.
func (c CreateTaskRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.Deadline.IsZero() {
		errs = append(errs, "deadline is required")
	}
	if strings.TrimSpace(c.TeamID) == "" {
		errs = append(errs, "team_id is required")
	}
	return errs
}

// UpdateTaskRequest is the request body for PATCH /tasks/{taskID}. All fields optional.
type UpdateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Deadline      *time.Time `json:"deadline"`
	Status        *string    `json:"status"`
	AssigneeEmail *string    `json:"assignee_email"` // empty string unassigns
}

// Validate implements Validator.
func (u UpdateTaskRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.Status != nil && !domain.ValidTaskStatus(*u.Status) {
		errs = append(errs, "status must be \"open\", \"in_progress\", or \"done\"")
	}
	return errs
}

// AddCommentRequest is the request body for POST /tasks/{taskID}/comments
type AddCommentRequest struct {
	Text string `json:"text"`
}

// Validate implements Validator.
func (a AddCommentRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Text) == "" {
		errs = append(errs, "text is required")
	}
	return errs
}

// TaskSuccessResponse is the success response envelope for single-task endpoints.
type TaskSuccessResponse struct {
	Data  *domain.Task      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListTasksSuccessResponse is the success response envelope for GET /tasks (200).
type ListTasksSuccessResponse struct {
	Data  []*domain.Task    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CommentSuccessResponse is the success response envelope for POST /tasks/{taskID}/comments (201).
type CommentSuccessResponse struct {
	Data  *domain.Comment   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// TaskController handles task and comment endpoints.
type TaskController struct {
	Logger  *slog.Logger
	Service domain.TaskService
}

// NewTaskController creates a TaskController with the given logger and service.
func NewTaskController(logger *slog.Logger, svc domain.TaskService) *TaskController {
	return &TaskController{
		Logger:  logger,
		Service: svc,
	}
}

// writeTaskError maps task domain errors to HTTP responses; returns false when
// the error was not one of the known task failures.
func (c *TaskController) writeTaskError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "task not found")
	case errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "assignee not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the task creator may do that")
	case errors.Is(err, domain.ErrAssigneeNotInTeam),
		errors.Is(err, domain.ErrDeadlineInPast),
		errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		return false
	}
	return true
}

// CreateTask godoc
// @Summary Create a task
// @Description Create a task owned by a team, optionally assigned by email. The assignee must belong to the team. Deadline must be in the future. Admin only.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTaskRequest true "Task data"
// @Success 201 {object} controllers.TaskSuccessResponse "data contains the created task"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tasks [post]
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateTaskRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	task := domain.NewTask(strings.TrimSpace(req.Title), req.Description, req.Deadline, userID, req.TeamID, now, now)
	created, err := c.Service.CreateTask(r.Context(), userID, req.TeamID, task, strings.TrimSpace(strings.ToLower(req.AssigneeEmail)))
	if err != nil {
		if c.writeTaskError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// ListTasks godoc
// @Summary List the caller's tasks
// @Description Returns tasks where the caller is creator or assignee, optionally filtered by status.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status: open, in_progress, done"
// @Success 200 {object} controllers.ListTasksSuccessResponse "data contains the tasks"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tasks [get]
func (c *TaskController) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && !domain.ValidTaskStatus(status) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "status must be \"open\", \"in_progress\", or \"done\"")
		return
	}
	tasks, err := c.Service.ListOwn(r.Context(), userID, status)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tasks)
}

// UpdateTask godoc
// @Summary Update a task
// @Description Partially update a task. Only the creator may update. Reassigning sends a notification to the new assignee; assignee_email "" unassigns. Admin only.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskID path string true "Task ID"
// @Param body body UpdateTaskRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.TaskSuccessResponse "data contains the updated task"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tasks/{taskID} [patch]
func (c *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	taskID := r.PathValue("taskID")
	if taskID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing taskID")
		return
	}
	var req UpdateTaskRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	upd := domain.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Status:      req.Status,
	}
	task, err := c.Service.UpdateTask(r.Context(), taskID, userID, upd, req.AssigneeEmail)
	if err != nil {
		if c.writeTaskError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Description Deletes a task. Only the creator may delete. Admin only.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param taskID path string true "Task ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tasks/{taskID} [delete]
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	taskID := r.PathValue("taskID")
	if taskID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing taskID")
		return
	}
	if err := c.Service.DeleteTask(r.Context(), taskID, userID); err != nil {
		if c.writeTaskError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

// AddComment godoc
// @Summary Comment on a task
// @Description Adds a comment to a task. Any authenticated user may comment.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskID path string true "Task ID"
// @Param body body AddCommentRequest true "Comment text"
// @Success 201 {object} controllers.CommentSuccessResponse "data contains the created comment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tasks/{taskID}/comments [post]
func (c *TaskController) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	taskID := r.PathValue("taskID")
	if taskID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing taskID")
		return
	}
	var req AddCommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.AddComment(r.Context(), taskID, userID, strings.TrimSpace(req.Text))
	if err != nil {
		if c.writeTaskError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comment)
}
