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

// CreateTeamRequest is the request body for POST /teams
type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate implements Validator.
func (c CreateTeamRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// UpdateTeamRequest is the request body for PATCH /teams/{teamID}. Both fields optional.
type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Validate implements Validator.
func (u UpdateTeamRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	return errs
}

// MemberRequest is the request body for POST /teams/{teamID}/members
type MemberRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (m MemberRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(m.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// ChangeRoleRequest is the request body for PATCH /teams/{teamID}/members/{email}
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// Validate implements Validator.
func (c ChangeRoleRequest) Validate() []string {
	var errs []string
	if !domain.ValidRole(strings.TrimSpace(strings.ToLower(c.Role))) {
		errs = append(errs, "role must be \"user\", \"manager\", or \"admin\"")
	}
	return errs
}

// CurrentTeamResponse is the response body for GET /teams/current.
type CurrentTeamResponse struct {
	Team    *domain.Team   `json:"team"`
	Members []*domain.User `json:"members"`
}

// TeamSuccessResponse is the success response envelope for team endpoints.
type TeamSuccessResponse struct {
	Data  *domain.Team      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListTeamsSuccessResponse is the success response envelope for GET /teams (200).
type ListTeamsSuccessResponse struct {
	Data  []*domain.Team    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CurrentTeamSuccessResponse is the success response envelope for GET /teams/current (200).
type CurrentTeamSuccessResponse struct {
	Data  CurrentTeamResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// TeamController handles team management and membership endpoints.
type TeamController struct {
	Logger  *slog.Logger
	Service domain.TeamService
}

// NewTeamController creates a TeamController with the given logger and service.
func NewTeamController(logger *slog.Logger, svc domain.TeamService) *TeamController {
	return &TeamController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateTeam godoc
// @Summary Create a team
// @Description Create a new team with a name and optional description. The caller becomes the team creator. Admin only.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTeamRequest true "Team data"
// @Success 201 {object} controllers.TeamSuccessResponse "data contains the created team"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams [post]
func (c *TeamController) CreateTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateTeamRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	team := domain.NewTeam(strings.TrimSpace(req.Name), strings.TrimSpace(req.Description), userID, now, now)
	if err := c.Service.CreateTeam(r.Context(), team); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, team)
}

// ListTeams godoc
// @Summary List teams
// @Description Returns all teams. Admin only.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListTeamsSuccessResponse "data contains the teams"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams [get]
func (c *TeamController) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := c.Service.ListTeams(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, teams)
}

// UpdateTeam godoc
// @Summary Update a team
// @Description Update a team's name and/or description. Omitted fields are unchanged. Admin only.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Param body body UpdateTeamRequest true "Fields to update"
// @Success 200 {object} controllers.TeamSuccessResponse "data contains the updated team"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams/{teamID} [patch]
func (c *TeamController) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")
	if teamID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing teamID")
		return
	}
	var req UpdateTeamRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	team, err := c.Service.UpdateTeam(r.Context(), teamID, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "team not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, team)
}

// DeleteTeam godoc
// @Summary Delete a team
// @Description Deletes the team and detaches its members. Admin only.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams/{teamID} [delete]
func (c *TeamController) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")
	if teamID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing teamID")
		return
	}
	if err := c.Service.DeleteTeam(r.Context(), teamID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "team not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "team deleted"})
}

// GetCurrentTeam godoc
// @Summary Get the caller's team
// @Description Returns the authenticated user's team and its members.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.CurrentTeamSuccessResponse "data contains the team and its members"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams/current [get]
func (c *TeamController) GetCurrentTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	team, members, err := c.Service.GetCurrentTeam(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotInTeam) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "you do not belong to a team")
			return
		}
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "team not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CurrentTeamResponse{Team: team, Members: members})
}

// AddMember godoc
// @Summary Add a member to a team
// @Description Adds the user with the given email to the team. Fails if the user already belongs to a team. Admin only.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Param body body MemberRequest true "Member email"
// @Success 200 {object} controllers.GetMeSuccessResponse "data contains the added user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams/{teamID}/members [post]
func (c *TeamController) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")
	if teamID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing teamID")
		return
	}
	var req MemberRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.AddMember(r.Context(), teamID, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyInTeam) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "user already belongs to a team")
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "team not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// RemoveMember godoc
// @Summary Remove a member from their team
// @Description Removes the user with the given email from their current team. Admin only.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param email path string true "Email of the member to remove"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams/members/{email} [delete]
func (c *TeamController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(strings.ToLower(r.PathValue("email")))
	if email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing email")
		return
	}
	if err := c.Service.RemoveMember(r.Context(), email); err != nil {
		if errors.Is(err, domain.ErrNotInTeam) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "user does not belong to a team")
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "member removed"})
}

// ChangeMemberRole godoc
// @Summary Change a team member's role
// @Description Sets the role of the member with the given email. The user must belong to the team. Admin only.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Param email path string true "Member email"
// @Param body body ChangeRoleRequest true "New role"
// @Success 200 {object} controllers.GetMeSuccessResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams/{teamID}/members/{email} [patch]
func (c *TeamController) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")
	email := strings.TrimSpace(strings.ToLower(r.PathValue("email")))
	if teamID == "" || email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing teamID or email")
		return
	}
	var req ChangeRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.ChangeMemberRole(r.Context(), teamID, email, strings.TrimSpace(strings.ToLower(req.Role)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		if errors.Is(err, domain.ErrNotInTeam) || errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
