package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"teamdesk/internal/delivery/http/helpers"
	"teamdesk/internal/delivery/http/middleware"
	"teamdesk/internal/domain"
)

// CreateEvaluationRequest is the request body for POST /tasks/{taskID}/evaluations
type CreateEvaluationRequest struct {
	Rank int `json:"rank"`
}

// Validate implements Validator.
func (c CreateEvaluationRequest) Validate() []string {
	var errs []string
	if c.Rank < 1 || c.Rank > 5 {
		errs = append(errs, "rank must be between 1 and 5")
	}
	return errs
}

// EvaluationSuccessResponse is the success response envelope for POST /tasks/{taskID}/evaluations (201).
type EvaluationSuccessResponse struct {
	Data  *domain.Evaluation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// EvaluationController handles task evaluation endpoints.
type EvaluationController struct {
	Logger  *slog.Logger
	Service domain.EvaluationService
}

// NewEvaluationController creates an EvaluationController with the given logger and service.
func NewEvaluationController(logger *slog.Logger, svc domain.EvaluationService) *EvaluationController {
	return &EvaluationController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *EvaluationController) writeEvaluationError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the task creator may do that")
	case errors.Is(err, domain.ErrTaskNotDone), errors.Is(err, domain.ErrInvalidRank):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		return false
	}
	return true
}

// CreateEvaluation godoc
// @Summary Rate a completed task
// @Description Creates a 1..5 evaluation of a task. Only the task creator may rate, and only tasks with status "done". Admin only.
// @Tags evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskID path string true "Task ID"
// @Param body body CreateEvaluationRequest true "Rank (1..5)"
// @Success 201 {object} controllers.EvaluationSuccessResponse "data contains the created evaluation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tasks/{taskID}/evaluations [post]
func (c *EvaluationController) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
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
	var req CreateEvaluationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	eval, err := c.Service.CreateEvaluation(r.Context(), taskID, userID, req.Rank)
	if err != nil {
		if c.writeEvaluationError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, eval)
}

// DeleteEvaluation godoc
// @Summary Delete an evaluation
// @Description Deletes an evaluation. Only the creator of the evaluated task may delete. Admin only.
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param evaluationID path string true "Evaluation ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /evaluations/{evaluationID} [delete]
func (c *EvaluationController) DeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	evaluationID := r.PathValue("evaluationID")
	if evaluationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing evaluationID")
		return
	}
	if err := c.Service.DeleteEvaluation(r.Context(), evaluationID, userID); err != nil {
		if c.writeEvaluationError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "evaluation deleted"})
}
