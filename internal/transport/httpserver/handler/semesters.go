package handler

import (
	"net/http"
	"time"

	"member-tracker-go/internal/domain/apperror"
	semesterdomain "member-tracker-go/internal/domain/semester"
)

type semesterResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	AcademicYear string `json:"academic_year"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

type createSemesterRequest struct {
	Name         string `json:"name"`
	AcademicYear string `json:"academic_year"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

func (h *Handlers) ListSemesters(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	semesters, err := h.Semesters.List(r.Context())
	if err != nil {
		h.fail(w, "semesters.list: list semesters failed", err)
		return
	}

	response := make([]semesterResponse, 0, len(semesters))
	for _, s := range semesters {
		response = append(response, toSemesterResponse(s))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CurrentSemester(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	current, err := h.Semesters.Current(r.Context(), time.Now())
	if err != nil {
		h.fail(w, "semesters.current: resolve current semester failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toSemesterResponse(*current))
}

func (h *Handlers) CreateSemester(w http.ResponseWriter, r *http.Request) {
	var req createSemesterRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin {
		h.log.BusinessError("semesters.create: not an admin", apperror.New(apperror.Unauthorized, "admin only"), "member_id", user.MemberID)
		writeError(w, http.StatusUnauthorized, apperror.Unauthorized, "only administrators can manage semesters")
		return
	}

	start, err := parseDateRequired("start_date", req.StartDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	end, err := parseDateRequired("end_date", req.EndDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := h.Semesters.Create(r.Context(), semesterdomain.CreateInput{
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		StartDate:    start,
		EndDate:      end,
	})
	if err != nil {
		h.fail(w, "semesters.create: create semester failed", err, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusCreated, toSemesterResponse(*created))
}

func toSemesterResponse(s semesterdomain.Semester) semesterResponse {
	return semesterResponse{
		ID:           s.ID,
		Name:         s.Name,
		AcademicYear: s.AcademicYear,
		StartDate:    formatDate(s.StartDate),
		EndDate:      formatDate(s.EndDate),
	}
}
