package app

import (
	"fmt"

	"gorm.io/gorm"

	"member-tracker-go/internal/config"
	attendancedomain "member-tracker-go/internal/domain/attendance"
	eventdomain "member-tracker-go/internal/domain/event"
	memberdomain "member-tracker-go/internal/domain/member"
	membershipdomain "member-tracker-go/internal/domain/membership"
	notificationdomain "member-tracker-go/internal/domain/notification"
	orgdomain "member-tracker-go/internal/domain/organization"
	reportdomain "member-tracker-go/internal/domain/report"
	semesterdomain "member-tracker-go/internal/domain/semester"
	"member-tracker-go/internal/email"
	"member-tracker-go/internal/jobs"
	"member-tracker-go/internal/metrics"
	"member-tracker-go/internal/repository/inmemory"
	attendancerepo "member-tracker-go/internal/repository/postgres/attendance"
	eventrepo "member-tracker-go/internal/repository/postgres/event"
	memberrepo "member-tracker-go/internal/repository/postgres/member"
	membershiprepo "member-tracker-go/internal/repository/postgres/membership"
	notificationrepo "member-tracker-go/internal/repository/postgres/notification"
	orgrepo "member-tracker-go/internal/repository/postgres/organization"
	reportrepo "member-tracker-go/internal/repository/postgres/report"
	semesterrepo "member-tracker-go/internal/repository/postgres/semester"
	"member-tracker-go/internal/transport/httpserver/handler"
	"member-tracker-go/pkg/logger"
)

// Graph is the wired set of services shared by the server, the scheduler
// and the CLI.
type Graph struct {
	Handlers  *handler.Handlers
	Members   *memberdomain.Service
	Reports   *reportdomain.Service
	Deliverer *jobs.Deliverer
	Sender    notificationdomain.Sender
}

func NewGraph(cfg config.Config, dbConn *gorm.DB, log logger.Logger) (*Graph, error) {
	recorder := metrics.New()

	orgRepo := orgrepo.NewPostgres(dbConn)
	memberRepo := memberrepo.NewPostgres(dbConn)
	semesterCache := inmemory.NewSemesterCache(semesterrepo.NewPostgres(dbConn), cfg.SemesterCache.Size, cfg.SemesterCache.TTL)
	eventRepo := eventrepo.NewPostgres(dbConn)
	membershipRepo := membershiprepo.NewPostgres(dbConn)
	attendanceRepo := attendancerepo.NewPostgres(dbConn)
	ledger := notificationrepo.NewPostgres(dbConn)

	organizations := orgdomain.NewService(orgRepo)
	members := memberdomain.NewService(memberRepo)
	semesters := semesterdomain.NewService(semesterCache)
	events := eventdomain.NewService(eventRepo, semesterCache)

	renderer, err := notificationdomain.NewRenderer(cfg.Email.AppName)
	if err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}
	sender, err := email.NewSender(cfg.Email, log)
	if err != nil {
		return nil, fmt.Errorf("email sender: %w", err)
	}
	dispatcher := notificationdomain.NewDispatcher(orgRepo, ledger, sender, cfg.Email.From, recorder, log)
	notifier := notificationdomain.NewAchievementNotifier(members, semesters, renderer, dispatcher)

	memberships := membershipdomain.NewService(membershipRepo, orgRepo, semesters, notifier, log)
	attendance := attendancedomain.NewService(attendanceRepo, events, members, memberships, log)
	reports := reportdomain.NewService(reportrepo.NewPostgres(dbConn), orgRepo, memberRepo, semesterCache, log)

	deliverer := jobs.NewDeliverer(jobs.Deps{
		Organizations: organizations,
		Reports:       reports,
		Statuses:      memberships,
		Members:       members,
		Semesters:     semesters,
		Renderer:      renderer,
		Dispatcher:    dispatcher,
		Metrics:       recorder,
	}, cfg.Jobs.Workers, log)

	handlers := handler.New(handler.Services{
		Organizations: organizations,
		Members:       members,
		Semesters:     semesters,
		Events:        events,
		Memberships:   memberships,
		Attendance:    attendance,
		Reports:       reports,
		Dispatches:    ledger,
	}, log)

	return &Graph{
		Handlers:  handlers,
		Members:   members,
		Reports:   reports,
		Deliverer: deliverer,
		Sender:    sender,
	}, nil
}
