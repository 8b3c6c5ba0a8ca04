package attendance

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"member-tracker-go/internal/domain/apperror"
	"member-tracker-go/internal/domain/event"
	"member-tracker-go/internal/domain/member"
	"member-tracker-go/internal/domain/membership"
	"member-tracker-go/internal/domain/validate"
	"member-tracker-go/pkg/logger"
)

const maxImportRows = 2000

type Service struct {
	repo    Repository
	events  EventGetter
	members MemberResolver
	credits Creditor
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, events EventGetter, members MemberResolver, credits Creditor, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		events:  events,
		members: members,
		credits: credits,
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) List(ctx context.Context, orgID, eventID uint) ([]Attendee, error) {
	if _, err := s.events.Get(ctx, orgID, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListForEvent(ctx, eventID)
}

// Record marks a member present at an event and credits their membership
// for the event's semester. Recording the same pair twice returns the
// existing row and credits nothing.
func (s *Service) Record(ctx context.Context, orgID, eventID uint, input RecordInput) (Recorded, error) {
	if err := validate.Struct(input); err != nil {
		return Recorded{}, err
	}
	e, err := s.events.Get(ctx, orgID, eventID)
	if err != nil {
		return Recorded{}, err
	}
	if _, err := s.members.Get(ctx, input.MemberID); err != nil {
		return Recorded{}, err
	}
	return s.record(ctx, e, input)
}

// CheckIn lets a member record their own attendance while the event runs.
func (s *Service) CheckIn(ctx context.Context, orgID, eventID, memberID uint) (Recorded, error) {
	e, err := s.events.Get(ctx, orgID, eventID)
	if err != nil {
		return Recorded{}, err
	}
	if !e.InProgress(s.now()) {
		return Recorded{}, ErrEventNotInProgress
	}
	return s.record(ctx, e, RecordInput{MemberID: memberID})
}

// Import records attendance from csv rows of "email,name". Unknown emails
// become new members. Row failures are reported and do not stop the import.
func (s *Service) Import(ctx context.Context, orgID, eventID uint, r io.Reader) (ImportResult, error) {
	e, err := s.events.Get(ctx, orgID, eventID)
	if err != nil {
		return ImportResult{}, err
	}

	rows, err := readImportRows(r)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Errors: []RowError{}}
	for _, row := range rows {
		check, err := s.members.CheckNewUser(ctx, member.IdentityInput{Name: row.name, Email: row.email})
		if err != nil {
			if apperror.KindOf(err) == apperror.InvalidInput {
				result.Errors = append(result.Errors, RowError{Line: row.line, Email: row.email, Message: apperror.PublicMessage(err)})
				continue
			}
			return result, err
		}
		if check.IsNewUser {
			result.CreatedMembers++
		}

		recorded, err := s.record(ctx, e, RecordInput{MemberID: check.Member.ID})
		if err != nil {
			return result, err
		}
		if recorded.Created {
			result.Recorded++
		} else {
			result.Duplicates++
		}
	}

	s.log.Info("attendance.import: finished",
		"organization_id", orgID, "event_id", eventID,
		"recorded", result.Recorded, "duplicates", result.Duplicates,
		"created_members", result.CreatedMembers, "row_errors", len(result.Errors))
	return result, nil
}

func (s *Service) record(ctx context.Context, e *event.Event, input RecordInput) (Recorded, error) {
	a := Attendance{
		MemberID:       input.MemberID,
		EventID:        e.ID,
		CheckedInAt:    s.now().UTC(),
		Notes:          input.Notes,
		Rating:         input.Rating,
		VolunteerHours: input.VolunteerHours,
	}
	created, err := s.repo.CreateAttendance(ctx, &a)
	if err != nil {
		return Recorded{}, err
	}
	if !created {
		return Recorded{Attendance: a, Created: false}, nil
	}

	_, _, err = s.credits.CreditAttendance(ctx, membership.CreditInput{
		OrganizationID: e.OrganizationID,
		SemesterID:     e.SemesterID,
		MemberID:       input.MemberID,
		EventType:      string(e.EventType),
	})
	if err != nil {
		if delErr := s.repo.DeleteAttendance(ctx, a.ID); delErr != nil {
			s.log.InternalError("attendance.record: rollback attendance failed", delErr,
				"attendance_id", a.ID, "event_id", e.ID, "member_id", input.MemberID)
		}
		return Recorded{}, err
	}
	return Recorded{Attendance: a, Created: true}, nil
}

type importRow struct {
	line  int
	email string
	name  string
}

func readImportRows(r io.Reader) ([]importRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows := make([]importRow, 0)
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
		}
		line++

		email := strings.TrimSpace(record[0])
		if line == 1 && strings.EqualFold(email, "email") {
			continue
		}
		if email == "" {
			continue
		}

		name := ""
		if len(record) > 1 {
			name = strings.TrimSpace(record[1])
		}
		if name == "" {
			name, _, _ = strings.Cut(email, "@")
		}

		rows = append(rows, importRow{line: line, email: email, name: name})
		if len(rows) > maxImportRows {
			return nil, apperror.Invalidf("import is limited to %d rows", maxImportRows)
		}
	}

	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}
	return rows, nil
}
