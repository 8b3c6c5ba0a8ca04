package handler

import (
	"net/http"
	"time"

	"member-tracker-go/internal/domain/apperror"
	membershipdomain "member-tracker-go/internal/domain/membership"
)

type membershipResponse struct {
	ID             uint      `json:"id"`
	MemberID       uint      `json:"member_id"`
	OrganizationID uint      `json:"organization_id"`
	SemesterID     uint      `json:"semester_id"`
	Role           string    `json:"role"`
	Points         int       `json:"points"`
	ActiveMember   bool      `json:"active_member"`
	ReceivedBonus  []int64   `json:"received_bonus"`
	CreatedAt      time.Time `json:"created_at"`
}

type membershipStatusResponse struct {
	Membership membershipResponse          `json:"membership"`
	Evaluation membershipdomain.Evaluation `json:"evaluation"`
}

type addMembershipRequest struct {
	MemberID   uint   `json:"member_id"`
	SemesterID *uint  `json:"semester_id"`
	Role       string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type adjustPointsRequest struct {
	Delta int `json:"delta"`
}

// JoinOrganization adds the caller as a plain member for the current
// semester.
func (h *Handlers) JoinOrganization(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.org(w, r, "memberships.join")
	if !ok {
		return
	}

	m, err := h.Memberships.JoinCurrent(r.Context(), orgID, user.MemberID, membershipdomain.RoleMember)
	if err != nil {
		h.fail(w, "memberships.join: join failed", err, "org_id", orgID, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusCreated, toMembershipResponse(m))
}

func (h *Handlers) ListMemberships(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := h.orgAccess(w, r, "memberships.list", membershipdomain.RoleEboard)
	if !ok {
		return
	}

	semesterID, err := parseUintParam("semester_id", r.URL.Query().Get("semester_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if semesterID == nil {
		current, err := h.Semesters.Current(r.Context(), time.Now())
		if err != nil {
			h.fail(w, "memberships.list: resolve current semester failed", err, "org_id", orgID)
			return
		}
		semesterID = &current.ID
	}

	memberships, err := h.Memberships.List(r.Context(), orgID, *semesterID)
	if err != nil {
		h.fail(w, "memberships.list: list memberships failed", err, "org_id", orgID, "semester_id", *semesterID)
		return
	}
	writeJSON(w, http.StatusOK, toMembershipResponses(memberships))
}

func (h *Handlers) ListMyMemberships(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.org(w, r, "memberships.list_mine")
	if !ok {
		return
	}

	memberships, err := h.Memberships.ListForMember(r.Context(), orgID, user.MemberID)
	if err != nil {
		h.fail(w, "memberships.list_mine: list memberships failed", err, "org_id", orgID, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, toMembershipResponses(memberships))
}

func (h *Handlers) AddMembership(w http.ResponseWriter, r *http.Request) {
	var req addMembershipRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, orgID, ok := h.orgAccess(w, r, "memberships.add", membershipdomain.RoleAdmin)
	if !ok {
		return
	}

	role, err := membershipdomain.ParseRole(req.Role)
	if err != nil {
		writeDomainError(w, apperror.E("memberships.add", apperror.InvalidInput, err))
		return
	}

	var m *membershipdomain.Membership
	if req.SemesterID == nil {
		m, err = h.Memberships.JoinCurrent(r.Context(), orgID, req.MemberID, role)
	} else {
		m, err = h.Memberships.Join(r.Context(), membershipdomain.JoinInput{
			OrganizationID: orgID,
			MemberID:       req.MemberID,
			SemesterID:     *req.SemesterID,
			Role:           role,
		})
	}
	if err != nil {
		h.fail(w, "memberships.add: join failed", err, "org_id", orgID, "member_id", req.MemberID, "by", user.MemberID)
		return
	}
	writeJSON(w, http.StatusCreated, toMembershipResponse(m))
}

func (h *Handlers) GetMembership(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.org(w, r, "memberships.get")
	if !ok {
		return
	}
	m, ok := h.loadMembership(w, r, "memberships.get", orgID)
	if !ok {
		return
	}
	if !h.selfOrEboard(w, r, "memberships.get", user, orgID, m.MemberID) {
		return
	}
	writeJSON(w, http.StatusOK, toMembershipResponse(m))
}

func (h *Handlers) DeleteMembership(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.orgAccess(w, r, "memberships.delete", membershipdomain.RoleAdmin)
	if !ok {
		return
	}
	id, err := pathID(r, "membership_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Memberships.Delete(r.Context(), orgID, id); err != nil {
		h.fail(w, "memberships.delete: delete failed", err, "org_id", orgID, "membership_id", id, "by", user.MemberID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) UpdateMembershipRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, orgID, ok := h.orgAccess(w, r, "memberships.update_role", membershipdomain.RoleAdmin)
	if !ok {
		return
	}
	id, err := pathID(r, "membership_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	role, err := membershipdomain.ParseRole(req.Role)
	if err != nil {
		writeDomainError(w, apperror.E("memberships.update_role", apperror.InvalidInput, err))
		return
	}

	m, err := h.Memberships.UpdateRole(r.Context(), orgID, id, role)
	if err != nil {
		h.fail(w, "memberships.update_role: update failed", err, "org_id", orgID, "membership_id", id, "by", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, toMembershipResponse(m))
}

func (h *Handlers) AdjustMembershipPoints(w http.ResponseWriter, r *http.Request) {
	var req adjustPointsRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, orgID, ok := h.orgAccess(w, r, "memberships.adjust_points", membershipdomain.RoleEboard)
	if !ok {
		return
	}
	id, err := pathID(r, "membership_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	m, evaluation, err := h.Memberships.AdjustPoints(r.Context(), orgID, id, req.Delta)
	if err != nil {
		h.fail(w, "memberships.adjust_points: adjust failed", err, "org_id", orgID, "membership_id", id, "delta", req.Delta, "by", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, membershipStatusResponse{
		Membership: toMembershipResponse(m),
		Evaluation: evaluation,
	})
}

func (h *Handlers) MembershipStatus(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.org(w, r, "memberships.status")
	if !ok {
		return
	}
	id, err := pathID(r, "membership_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	m, evaluation, err := h.Memberships.Status(r.Context(), orgID, id)
	if err != nil {
		h.fail(w, "memberships.status: evaluate failed", err, "org_id", orgID, "membership_id", id)
		return
	}
	if !h.selfOrEboard(w, r, "memberships.status", user, orgID, m.MemberID) {
		return
	}
	writeJSON(w, http.StatusOK, membershipStatusResponse{
		Membership: toMembershipResponse(m),
		Evaluation: evaluation,
	})
}

func (h *Handlers) RecomputeMembership(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.orgAccess(w, r, "memberships.recompute", membershipdomain.RoleEboard)
	if !ok {
		return
	}
	existing, ok := h.loadMembership(w, r, "memberships.recompute", orgID)
	if !ok {
		return
	}

	m, evaluation, err := h.Memberships.Recompute(r.Context(), existing.ID)
	if err != nil {
		h.fail(w, "memberships.recompute: recompute failed", err, "org_id", orgID, "membership_id", existing.ID, "by", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, membershipStatusResponse{
		Membership: toMembershipResponse(m),
		Evaluation: evaluation,
	})
}

func (h *Handlers) loadMembership(w http.ResponseWriter, r *http.Request, op string, orgID uint) (*membershipdomain.Membership, bool) {
	id, err := pathID(r, "membership_id")
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	m, err := h.Memberships.Get(r.Context(), orgID, id)
	if err != nil {
		h.fail(w, op+": get membership failed", err, "org_id", orgID, "membership_id", id)
		return nil, false
	}
	return m, true
}

func toMembershipResponse(m *membershipdomain.Membership) membershipResponse {
	bonuses := make([]int64, 0, len(m.ReceivedBonus))
	bonuses = append(bonuses, m.ReceivedBonus...)
	return membershipResponse{
		ID:             m.ID,
		MemberID:       m.MemberID,
		OrganizationID: m.OrganizationID,
		SemesterID:     m.SemesterID,
		Role:           m.Role.String(),
		Points:         m.Points,
		ActiveMember:   m.ActiveMember,
		ReceivedBonus:  bonuses,
		CreatedAt:      m.CreatedAt,
	}
}

func toMembershipResponses(items []membershipdomain.Membership) []membershipResponse {
	response := make([]membershipResponse, 0, len(items))
	for i := range items {
		response = append(response, toMembershipResponse(&items[i]))
	}
	return response
}
