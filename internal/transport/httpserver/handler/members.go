package handler

import (
	"net/http"
	"strings"
	"time"

	"member-tracker-go/internal/domain/apperror"
	memberdomain "member-tracker-go/internal/domain/member"
)

type memberResponse struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	PersonalEmail  string  `json:"personal_email"`
	Phone          string  `json:"phone"`
	GraduationDate *string `json:"graduation_date"`
	TshirtSize     string  `json:"tshirt_size"`
	Major          string  `json:"major"`
	Gender         string  `json:"gender"`
	Race           string  `json:"race"`
	Status         string  `json:"status"`
}

type updateMemberRequest struct {
	Name           *string `json:"name"`
	PersonalEmail  *string `json:"personal_email"`
	Phone          *string `json:"phone"`
	GraduationDate *string `json:"graduation_date"`
	TshirtSize     *string `json:"tshirt_size"`
	Major          *string `json:"major"`
	Gender         *string `json:"gender"`
	Race           *string `json:"race"`
	Status         *string `json:"status"`
}

func (h *Handlers) GetMemberMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	m, err := h.Members.Get(r.Context(), user.MemberID)
	if err != nil {
		h.fail(w, "members.get_me: get member failed", err, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(m))
}

func (h *Handlers) UpdateMemberMe(w http.ResponseWriter, r *http.Request) {
	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	input := memberdomain.UpdateInput{
		Name:          req.Name,
		PersonalEmail: req.PersonalEmail,
		Phone:         req.Phone,
		TshirtSize:    req.TshirtSize,
		Major:         req.Major,
		Gender:        req.Gender,
		Race:          req.Race,
	}
	if req.GraduationDate != nil {
		date, err := parseDateRequired("graduation_date", *req.GraduationDate)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		input.GraduationDate = &date
	}
	if req.Status != nil {
		status := memberdomain.Status(strings.ToLower(strings.TrimSpace(*req.Status)))
		input.Status = &status
	}

	m, err := h.Members.Update(r.Context(), user.MemberID, input)
	if err != nil {
		h.fail(w, "members.update_me: update member failed", err, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(m))
}

// LookupMember finds a member by username (their institutional email).
func (h *Handlers) LookupMember(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, apperror.InvalidInput, "username is required")
		return
	}

	m, err := h.Members.GetMemberByUsername(r.Context(), username)
	if err != nil {
		h.fail(w, "members.lookup: lookup failed", err, "username", username)
		return
	}
	if m == nil {
		writeDomainError(w, memberdomain.ErrMemberNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(m))
}

func toMemberResponse(m *memberdomain.Member) memberResponse {
	var graduation *string
	if m.GraduationDate != nil {
		formatted := m.GraduationDate.Format(dateLayout)
		graduation = &formatted
	}
	return memberResponse{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		PersonalEmail:  m.PersonalEmail,
		Phone:          m.Phone,
		GraduationDate: graduation,
		TshirtSize:     m.TshirtSize,
		Major:          m.Major,
		Gender:         m.Gender,
		Race:           m.Race,
		Status:         string(m.Status),
	}
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
