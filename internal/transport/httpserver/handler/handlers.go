package handler

import (
	"context"

	attendancedomain "member-tracker-go/internal/domain/attendance"
	eventdomain "member-tracker-go/internal/domain/event"
	memberdomain "member-tracker-go/internal/domain/member"
	membershipdomain "member-tracker-go/internal/domain/membership"
	notificationdomain "member-tracker-go/internal/domain/notification"
	orgdomain "member-tracker-go/internal/domain/organization"
	reportdomain "member-tracker-go/internal/domain/report"
	semesterdomain "member-tracker-go/internal/domain/semester"
	"member-tracker-go/pkg/logger"
)

// DispatchLister reads the notification ledger for an organization.
type DispatchLister interface {
	List(ctx context.Context, orgID uint, limit int) ([]notificationdomain.Dispatch, error)
}

type Handlers struct {
	Organizations *orgdomain.Service
	Members       *memberdomain.Service
	Semesters     *semesterdomain.Service
	Events        *eventdomain.Service
	Memberships   *membershipdomain.Service
	Attendance    *attendancedomain.Service
	Reports       *reportdomain.Service
	Dispatches    DispatchLister
	log           logger.Logger
}

type Services struct {
	Organizations *orgdomain.Service
	Members       *memberdomain.Service
	Semesters     *semesterdomain.Service
	Events        *eventdomain.Service
	Memberships   *membershipdomain.Service
	Attendance    *attendancedomain.Service
	Reports       *reportdomain.Service
	Dispatches    DispatchLister
}

func New(services Services, log logger.Logger) *Handlers {
	return &Handlers{
		Organizations: services.Organizations,
		Members:       services.Members,
		Semesters:     services.Semesters,
		Events:        services.Events,
		Memberships:   services.Memberships,
		Attendance:    services.Attendance,
		Reports:       services.Reports,
		Dispatches:    services.Dispatches,
		log:           log,
	}
}
