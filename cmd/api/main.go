package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"teamdesk/config"
	_ "teamdesk/docs"
	"teamdesk/internal/adapters/auth"
	"teamdesk/internal/adapters/email"
	deliveryhttp "teamdesk/internal/delivery/http"
	"teamdesk/internal/delivery/http/controllers"
	"teamdesk/internal/delivery/http/middleware"
	"teamdesk/internal/jobs"
	"teamdesk/internal/repository/postgres"
	"teamdesk/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title TeamDesk API
// @version 1.0
// @description Small-business management backend: teams, tasks, meetings, evaluations, and an aggregated calendar.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	meetingRepo := postgres.NewMeetingRepository(db)
	evaluationRepo := postgres.NewEvaluationRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	mailer, err := email.NewMailer(cfg.Email)
	if err != nil {
		logger.Error("init mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()

	// Services
	emailSvc := services.NewEmailService(mailer, renderer)
	userSvc := services.NewUserService(userRepo, hasher, issuer, cfg.TokenExpiry, serviceTimeout)
	teamSvc := services.NewTeamService(teamRepo, userRepo, emailSvc, logger, serviceTimeout)
	taskSvc := services.NewTaskService(taskRepo, commentRepo, teamRepo, userRepo, emailSvc, logger, serviceTimeout)
	meetingSvc := services.NewMeetingService(meetingRepo, userRepo, emailSvc, logger, serviceTimeout)
	calendarSvc := services.NewCalendarService(taskRepo, meetingRepo, serviceTimeout)
	evaluationSvc := services.NewEvaluationService(evaluationRepo, taskRepo, serviceTimeout)

	// HTTP
	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		User:       controllers.NewUserController(logger, userSvc),
		Team:       controllers.NewTeamController(logger, teamSvc),
		Task:       controllers.NewTaskController(logger, taskSvc),
		Meeting:    controllers.NewMeetingController(logger, meetingSvc),
		Calendar:   controllers.NewCalendarController(logger, calendarSvc),
		Evaluation: controllers.NewEvaluationController(logger, evaluationSvc),
	}, verifier, logger)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, mux))

	// Background reminders
	reminders := jobs.NewReminderJob(logger, meetingRepo, taskRepo, userRepo, emailSvc)
	if err := reminders.Start(cfg.ReminderCron); err != nil {
		logger.Error("start reminder job", "err", err)
		os.Exit(1)
	}
	defer reminders.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}
}
