package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"teamdesk/internal/delivery/http/helpers"
	"teamdesk/internal/delivery/http/middleware"
	"teamdesk/internal/domain"
)

// CalendarSuccessResponse is the success response envelope for GET /calendar (200).
type CalendarSuccessResponse struct {
	Data  *domain.CalendarData `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CalendarController handles the aggregated calendar endpoint.
type CalendarController struct {
	Logger  *slog.Logger
	Service domain.CalendarService
}

// NewCalendarController creates a CalendarController with the given logger and service.
func NewCalendarController(logger *slog.Logger, svc domain.CalendarService) *CalendarController {
	return &CalendarController{
		Logger:  logger,
		Service: svc,
	}
}

// GetCalendar godoc
// @Summary Get the caller's calendar
// @Description Returns the caller's tasks and meetings merged into one chronological list. Pass either date=YYYY-MM-DD for a single day, or start and end (both YYYY-MM-DD, inclusive) for a range. Supplying both forms, neither, or a malformed date fails with 400 before any data is read.
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param date query string false "Single day (YYYY-MM-DD)"
// @Param start query string false "Range start (YYYY-MM-DD)"
// @Param end query string false "Range end (YYYY-MM-DD, inclusive)"
// @Success 200 {object} controllers.CalendarSuccessResponse "data contains period, count, and events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar [get]
func (c *CalendarController) GetCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	q := r.URL.Query()
	query := domain.CalendarQuery{
		Date:  q.Get("date"),
		Start: q.Get("start"),
		End:   q.Get("end"),
	}
	data, err := c.Service.GetCalendarData(r.Context(), userID, query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, data)
}
