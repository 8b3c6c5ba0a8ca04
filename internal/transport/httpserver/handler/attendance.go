package handler

import (
	"net/http"
	"time"

	attendancedomain "member-tracker-go/internal/domain/attendance"
	membershipdomain "member-tracker-go/internal/domain/membership"
)

const maxImportBytes = 2 << 20

type attendanceResponse struct {
	ID             uint      `json:"id"`
	MemberID       uint      `json:"member_id"`
	EventID        uint      `json:"event_id"`
	CheckedInAt    time.Time `json:"checked_in_at"`
	Notes          string    `json:"notes"`
	Rating         *int      `json:"rating"`
	VolunteerHours *float64  `json:"volunteer_hours"`
	MemberName     string    `json:"member_name,omitempty"`
	MemberEmail    string    `json:"member_email,omitempty"`
}

type recordedResponse struct {
	Attendance attendanceResponse `json:"attendance"`
	Created    bool               `json:"created"`
}

func (h *Handlers) ListAttendance(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := h.orgAccess(w, r, "attendance.list", membershipdomain.RoleEboard)
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	attendees, err := h.Attendance.List(r.Context(), orgID, eventID)
	if err != nil {
		h.fail(w, "attendance.list: list attendance failed", err, "org_id", orgID, "event_id", eventID)
		return
	}

	response := make([]attendanceResponse, 0, len(attendees))
	for _, a := range attendees {
		item := toAttendanceResponse(a.Attendance)
		item.MemberName = a.MemberName
		item.MemberEmail = a.MemberEmail
		response = append(response, item)
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendancedomain.RecordInput
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, orgID, ok := h.orgAccess(w, r, "attendance.record", membershipdomain.RoleEboard)
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	recorded, err := h.Attendance.Record(r.Context(), orgID, eventID, req)
	if err != nil {
		h.fail(w, "attendance.record: record failed", err, "org_id", orgID, "event_id", eventID, "member_id", req.MemberID, "by", user.MemberID)
		return
	}
	writeRecorded(w, recorded)
}

// CheckIn marks the caller present at an event that is in progress.
func (h *Handlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.org(w, r, "attendance.check_in")
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	recorded, err := h.Attendance.CheckIn(r.Context(), orgID, eventID, user.MemberID)
	if err != nil {
		h.fail(w, "attendance.check_in: check in failed", err, "org_id", orgID, "event_id", eventID, "member_id", user.MemberID)
		return
	}
	writeRecorded(w, recorded)
}

// ImportAttendance reads an email,name csv body. Rows for unknown emails
// create members.
func (h *Handlers) ImportAttendance(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.orgAccess(w, r, "attendance.import", membershipdomain.RoleEboard)
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	result, err := h.Attendance.Import(r.Context(), orgID, eventID, body)
	if err != nil {
		h.fail(w, "attendance.import: import failed", err, "org_id", orgID, "event_id", eventID, "by", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeRecorded(w http.ResponseWriter, recorded attendancedomain.Recorded) {
	status := http.StatusOK
	if recorded.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, recordedResponse{
		Attendance: toAttendanceResponse(recorded.Attendance),
		Created:    recorded.Created,
	})
}

func toAttendanceResponse(a attendancedomain.Attendance) attendanceResponse {
	return attendanceResponse{
		ID:             a.ID,
		MemberID:       a.MemberID,
		EventID:        a.EventID,
		CheckedInAt:    a.CheckedInAt,
		Notes:          a.Notes,
		Rating:         a.Rating,
		VolunteerHours: a.VolunteerHours,
	}
}
