package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"teamdesk/internal/delivery/http/controllers"
	"teamdesk/internal/delivery/http/middleware"
	"teamdesk/internal/domain"
)

// Controllers bundles every controller the router mounts.
type Controllers struct {
	User       *controllers.UserController
	Team       *controllers.TeamController
	Task       *controllers.TaskController
	Meeting    *controllers.MeetingController
	Calendar   *controllers.CalendarController
	Evaluation *controllers.EvaluationController
}

// NewRouter initializes the HTTP router with all application routes.
// Admin-gated routes run RequireAuth then RequireRole(admin).
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleAdmin)(next))
	}

	// Auth
	mux.HandleFunc("POST /auth/register", c.User.Register)
	mux.HandleFunc("POST /auth/login", c.User.Login)

	// Users
	mux.HandleFunc("GET /users/me", auth(c.User.GetMe))
	mux.HandleFunc("PATCH /users/me", auth(c.User.UpdateMe))
	mux.HandleFunc("GET /users", admin(c.User.ListUsers))
	mux.HandleFunc("DELETE /users/{email}", admin(c.User.DeleteUser))

	// Teams
	mux.HandleFunc("POST /teams", admin(c.Team.CreateTeam))
	mux.HandleFunc("GET /teams", admin(c.Team.ListTeams))
	mux.HandleFunc("GET /teams/current", auth(c.Team.GetCurrentTeam))
	mux.HandleFunc("PATCH /teams/{teamID}", admin(c.Team.UpdateTeam))
	mux.HandleFunc("DELETE /teams/{teamID}", admin(c.Team.DeleteTeam))
	mux.HandleFunc("POST /teams/{teamID}/members", admin(c.Team.AddMember))
	mux.HandleFunc("DELETE /teams/members/{email}", admin(c.Team.RemoveMember))
	mux.HandleFunc("PATCH /teams/{teamID}/members/{email}", admin(c.Team.ChangeMemberRole))

	// Tasks
	mux.HandleFunc("POST /tasks", admin(c.Task.CreateTask))
	mux.HandleFunc("GET /tasks", auth(c.Task.ListTasks))
	mux.HandleFunc("PATCH /tasks/{taskID}", admin(c.Task.UpdateTask))
	mux.HandleFunc("DELETE /tasks/{taskID}", admin(c.Task.DeleteTask))
	mux.HandleFunc("POST /tasks/{taskID}/comments", auth(c.Task.AddComment))

	// Evaluations
	mux.HandleFunc("POST /tasks/{taskID}/evaluations", admin(c.Evaluation.CreateEvaluation))
	mux.HandleFunc("DELETE /evaluations/{evaluationID}", admin(c.Evaluation.DeleteEvaluation))

	// Meetings
	mux.HandleFunc("POST /meetings", auth(c.Meeting.CreateMeeting))
	mux.HandleFunc("PATCH /meetings/{meetingID}", auth(c.Meeting.UpdateMeeting))
	mux.HandleFunc("DELETE /meetings/{meetingID}", auth(c.Meeting.DeleteMeeting))

	// Calendar
	mux.HandleFunc("GET /calendar", auth(c.Calendar.GetCalendar))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
