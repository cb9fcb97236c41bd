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

// CreateMeetingRequest is the request body for POST /meetings
type CreateMeetingRequest struct {
	Topic     string   `json:"topic"`
	Date      string   `json:"date"`       // YYYY-MM-DD
	StartTime string   `json:"start_time"` // HH:MM
	EndTime   string   `json:"end_time"`   // HH:MM
	Members   []string `json:"members"`    // participant emails; the creator is always included
}

// Validate implements Validator.
func (c CreateMeetingRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Topic) == "" {
		errs = append(errs, "topic is required")
	}
	if c.Date == "" {
		errs = append(errs, "date is required")
	} else if _, err := time.ParseInLocation(dateLayout, c.Date, time.Local); err != nil {
		errs = append(errs, "date must be in YYYY-MM-DD format")
	}
	if c.StartTime == "" {
		errs = append(errs, "start_time is required")
	} else if err := domain.ParseTimeOfDay(c.StartTime); err != nil {
		errs = append(errs, "start_time must be in HH:MM format")
	}
	if c.EndTime == "" {
		errs = append(errs, "end_time is required")
	} else if err := domain.ParseTimeOfDay(c.EndTime); err != nil {
		errs = append(errs, "end_time must be in HH:MM format")
	}
	return errs
}

// UpdateMeetingRequest is the request body for PATCH /meetings/{meetingID}. All fields optional.
type UpdateMeetingRequest struct {
	Topic     *string  `json:"topic"`
	Date      *string  `json:"date"`       // YYYY-MM-DD
	StartTime *string  `json:"start_time"` // HH:MM
	EndTime   *string  `json:"end_time"`   // HH:MM
	Members   []string `json:"members"`    // when present, replaces the member set
}

// Validate implements Validator.
func (u UpdateMeetingRequest) Validate() []string {
	var errs []string
	if u.Topic != nil && strings.TrimSpace(*u.Topic) == "" {
		errs = append(errs, "topic cannot be empty")
	}
	if u.Date != nil {
		if _, err := time.ParseInLocation(dateLayout, *u.Date, time.Local); err != nil {
			errs = append(errs, "date must be in YYYY-MM-DD format")
		}
	}
	if u.StartTime != nil {
		if err := domain.ParseTimeOfDay(*u.StartTime); err != nil {
			errs = append(errs, "start_time must be in HH:MM format")
		}
	}
	if u.EndTime != nil {
		if err := domain.ParseTimeOfDay(*u.EndTime); err != nil {
			errs = append(errs, "end_time must be in HH:MM format")
		}
	}
	return errs
}

// MeetingSuccessResponse is the success response envelope for meeting endpoints.
type MeetingSuccessResponse struct {
	Data  *domain.Meeting   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MeetingController handles meeting scheduling endpoints.
type MeetingController struct {
	Logger  *slog.Logger
	Service domain.MeetingService
}

// NewMeetingController creates a MeetingController with the given logger and service.
func NewMeetingController(logger *slog.Logger, svc domain.MeetingService) *MeetingController {
	return &MeetingController{
		Logger:  logger,
		Service: svc,
	}
}

// writeMeetingError maps scheduling domain errors to HTTP responses; returns
// false when the error was not one of the known scheduling failures.
func (c *MeetingController) writeMeetingError(w http.ResponseWriter, err error) bool {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, conflict.Error())
	case errors.Is(err, domain.ErrInvalidInterval),
		errors.Is(err, domain.ErrMeetingInPast),
		errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "meeting not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the meeting creator may do that")
	default:
		return false
	}
	return true
}

// CreateMeeting godoc
// @Summary Schedule a meeting
// @Description Create a meeting on a date with HH:MM start and end times, inviting members by email. The creator always participates. Fails with 400 when the interval is invalid, the start is in the past, or any participant already has an overlapping meeting (the message lists the busy emails).
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMeetingRequest true "Meeting data"
// @Success 201 {object} controllers.MeetingSuccessResponse "data contains the created meeting with its members"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings [post]
func (c *MeetingController) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateMeetingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	date, _ := time.ParseInLocation(dateLayout, req.Date, time.Local)
	now := time.Now()
	meeting := domain.NewMeeting(strings.TrimSpace(req.Topic), date, req.StartTime, req.EndTime, userID, now, now)
	created, err := c.Service.Create(r.Context(), userID, meeting, req.Members)
	if err != nil {
		if c.writeMeetingError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// UpdateMeeting godoc
// @Summary Reschedule a meeting
// @Description Partially update a meeting. Only the creator may update, and a meeting that already ended cannot be changed. The conflict check reruns against the effective date, times, and members.
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting ID"
// @Param body body UpdateMeetingRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.MeetingSuccessResponse "data contains the updated meeting"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/{meetingID} [patch]
func (c *MeetingController) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	meetingID := r.PathValue("meetingID")
	if meetingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing meetingID")
		return
	}
	var req UpdateMeetingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	upd := domain.MeetingUpdate{
		Topic:     req.Topic,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Members:   req.Members,
	}
	if req.Date != nil {
		d, _ := time.ParseInLocation(dateLayout, *req.Date, time.Local)
		upd.Date = &d
	}
	meeting, err := c.Service.Update(r.Context(), meetingID, userID, upd)
	if err != nil {
		if c.writeMeetingError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meeting)
}

// DeleteMeeting godoc
// @Summary Cancel a meeting
// @Description Deletes a meeting. Only the creator may delete.
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/{meetingID} [delete]
func (c *MeetingController) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	meetingID := r.PathValue("meetingID")
	if meetingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing meetingID")
		return
	}
	if err := c.Service.Delete(r.Context(), meetingID, userID); err != nil {
		if c.writeMeetingError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "meeting deleted"})
}
