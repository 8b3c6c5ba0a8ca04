package handler

import (
	"net/http"

	membershipdomain "member-tracker-go/internal/domain/membership"
)

// SemesterReport builds the report for ?semester_id, or the current
// semester when it is omitted.
func (h *Handlers) SemesterReport(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.orgAccess(w, r, "reports.semester", membershipdomain.RoleEboard)
	if !ok {
		return
	}
	semesterID, err := parseUintParam("semester_id", r.URL.Query().Get("semester_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.Reports.SemesterReport(r.Context(), orgID, semesterID)
	if err != nil {
		h.fail(w, "reports.semester: build report failed", err, "org_id", orgID, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) AnnualReport(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.orgAccess(w, r, "reports.annual", membershipdomain.RoleEboard)
	if !ok {
		return
	}
	year, err := parseIntParam("year", r.URL.Query().Get("year"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.Reports.AnnualReport(r.Context(), orgID, year)
	if err != nil {
		h.fail(w, "reports.annual: build report failed", err, "org_id", orgID, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MemberReport is visible to the member it describes and to eboard.
func (h *Handlers) MemberReport(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.org(w, r, "reports.member")
	if !ok {
		return
	}
	memberID, err := pathID(r, "member_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.selfOrEboard(w, r, "reports.member", user, orgID, memberID) {
		return
	}

	result, err := h.Reports.MemberReport(r.Context(), orgID, memberID)
	if err != nil {
		h.fail(w, "reports.member: build report failed", err, "org_id", orgID, "member_id", memberID)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
