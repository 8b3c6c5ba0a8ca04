package report

import (
	"strconv"
	"time"

	"member-tracker-go/internal/domain/membership"
)

// Window bounds one period: memberships come from SemesterIDs, events from
// start times in [From, To).
type Window struct {
	SemesterIDs []uint
	From        time.Time
	To          time.Time
}

type MembershipRow struct {
	MemberID   uint
	SemesterID uint
	Name       string
	Email      string
	Role       membership.Role
	Points     int
	Active     bool
}

type EventAttendance struct {
	EventID         uint      `json:"event_id"`
	Name            string    `json:"name"`
	EventType       string    `json:"event_type"`
	StartAt         time.Time `json:"start_at"`
	AttendanceCount int       `json:"attendance_count"`
}

type MemberCounts struct {
	TotalMembers     int `json:"total_members"`
	NewMembers       int `json:"new_members"`
	ActiveMembers    int `json:"active_members"`
	NewActiveMembers int `json:"new_active_members"`
}

type MeetingsData struct {
	NumMeetings         int               `json:"num_meetings"`
	NumVolunteer        int               `json:"num_volunteer"`
	NumOther            int               `json:"num_other"`
	MeetingAttendance   int               `json:"meeting_attendance"`
	VolunteerAttendance int               `json:"volunteer_attendance"`
	OtherAttendance     int               `json:"other_attendance"`
	TotalAttendance     int               `json:"total_attendance"`
	Events              []EventAttendance `json:"events"`
}

// PeriodStats is the aggregator output. The Last fields are nil when no
// prior window was given.
type PeriodStats struct {
	MembersThis  MemberCounts
	MeetingsThis MeetingsData
	MembersLast  *MemberCounts
	MeetingsLast *MeetingsData

	Memberships []MembershipRow
}

type OrganizationSummary struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Abbreviation    string    `json:"abbreviation"`
	Email           string    `json:"email"`
	MembershipType  string    `json:"membership_type"`
	ActiveThreshold int       `json:"active_threshold"`
	CreatedAt       time.Time `json:"created_at"`
}

type PeriodKind string

const (
	PeriodSemester PeriodKind = "semester"
	PeriodAnnual   PeriodKind = "annual"
)

type PeriodInfo struct {
	Kind         PeriodKind `json:"kind"`
	Year         int        `json:"year"`
	SemesterID   uint       `json:"semester_id,omitempty"`
	SemesterName string     `json:"semester_name,omitempty"`
	From         time.Time  `json:"from"`
	To           time.Time  `json:"to"`
}

// Key identifies the period for delivery de-duplication.
func (p PeriodInfo) Key() string {
	if p.Kind == PeriodSemester {
		return SemesterPeriodKey(p.SemesterID)
	}
	return AnnualPeriodKey(p.Year)
}

func SemesterPeriodKey(semesterID uint) string {
	return "semester:" + strconv.FormatUint(uint64(semesterID), 10)
}

func AnnualPeriodKey(year int) string {
	return "annual:" + strconv.Itoa(year)
}

type MemberRow struct {
	MemberID uint   `json:"member_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Points   int    `json:"points"`
	Active   bool   `json:"active"`
}

// Body is what every period report carries.
type Body struct {
	Organization     OrganizationSummary
	Period           PeriodInfo
	MemberDataThis   MemberCounts
	MeetingsDataThis MeetingsData
	Members          []MemberRow
	EventTypeCounts  map[string]int
}

// Report is either a NewOrgReport or an EstablishedOrgReport.
type Report interface {
	IsNewOrg() bool
	Summary() Body
	isReport()
}

// NewOrgReport is produced when the organization has no history before the
// requested period. It never carries prior-period data.
type NewOrgReport struct {
	Body
}

func (NewOrgReport) IsNewOrg() bool  { return true }
func (r NewOrgReport) Summary() Body { return r.Body }
func (NewOrgReport) isReport()       {}

type EstablishedOrgReport struct {
	Body
	MemberDataLast   MemberCounts
	MeetingsDataLast MeetingsData
}

func (EstablishedOrgReport) IsNewOrg() bool  { return false }
func (r EstablishedOrgReport) Summary() Body { return r.Body }
func (EstablishedOrgReport) isReport()       {}

type MemberData struct {
	ID            uint              `json:"id"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Major         string            `json:"major"`
	Status        string            `json:"status"`
	Memberships   []MembershipBrief `json:"memberships"`
	TotalPoints   int               `json:"total_points"`
	SemestersSeen int               `json:"semesters"`
}

type MembershipBrief struct {
	SemesterID uint   `json:"semester_id"`
	Role       string `json:"role"`
	Points     int    `json:"points"`
	Active     bool   `json:"active"`
}

type AttendanceRow struct {
	AttendanceID uint      `json:"attendance_id"`
	EventID      uint      `json:"event_id"`
	EventName    string    `json:"event_name"`
	EventType    string    `json:"event_type"`
	SemesterID   uint      `json:"semester_id"`
	StartAt      time.Time `json:"start_at"`
	CheckedInAt  time.Time `json:"checked_in_at"`
}

type MemberReport struct {
	Organization   OrganizationSummary `json:"organization"`
	MemberData     MemberData          `json:"member_data"`
	AttendanceData []AttendanceRow     `json:"attendance_data"`
}
