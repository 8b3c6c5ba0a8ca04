package handler

import (
	"net/http"

	"member-tracker-go/internal/domain/apperror"
	membershipdomain "member-tracker-go/internal/domain/membership"
	"member-tracker-go/internal/transport/httpserver/middleware"
)

type authMeResponse struct {
	Member    memberResponse `json:"member"`
	IsNewUser bool           `json:"is_new_user"`
	IsAdmin   bool           `json:"is_admin"`
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	m, err := h.Members.Get(r.Context(), user.MemberID)
	if err != nil {
		h.fail(w, "auth.me: get member failed", err, "member_id", user.MemberID)
		return
	}

	writeJSON(w, http.StatusOK, authMeResponse{
		Member:    toMemberResponse(m),
		IsNewUser: user.IsNewUser,
		IsAdmin:   user.IsAdmin,
	})
}

func currentUser(w http.ResponseWriter, r *http.Request) (middleware.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, apperror.Unauthorized, "invalid token")
		return middleware.User{}, false
	}
	return user, true
}

// org resolves the caller and the {org_id} route param. Any signed-in user
// may read an organization's public data.
func (h *Handlers) org(w http.ResponseWriter, r *http.Request, op string) (middleware.User, uint, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return middleware.User{}, 0, false
	}
	orgID, err := pathID(r, "org_id")
	if err != nil {
		writeDomainError(w, err)
		return middleware.User{}, 0, false
	}
	if _, err := h.Organizations.Get(r.Context(), orgID); err != nil {
		h.fail(w, op+": get organization failed", err, "org_id", orgID)
		return middleware.User{}, 0, false
	}
	return user, orgID, true
}

// orgAccess is org plus a check that the caller holds at least min in the
// organization. Site admins pass every role check.
func (h *Handlers) orgAccess(w http.ResponseWriter, r *http.Request, op string, min membershipdomain.Role) (middleware.User, uint, bool) {
	user, orgID, ok := h.org(w, r, op)
	if !ok {
		return middleware.User{}, 0, false
	}
	if user.IsAdmin {
		return user, orgID, true
	}
	if _, err := h.Memberships.Authorize(r.Context(), orgID, user.MemberID, min); err != nil {
		h.fail(w, op+": not authorized", err, "org_id", orgID, "member_id", user.MemberID, "required", min.String())
		return middleware.User{}, 0, false
	}
	return user, orgID, true
}

// selfOrEboard allows the member the resource belongs to, or anyone with at
// least eboard in the organization.
func (h *Handlers) selfOrEboard(w http.ResponseWriter, r *http.Request, op string, user middleware.User, orgID, ownerID uint) bool {
	if user.MemberID == ownerID || user.IsAdmin {
		return true
	}
	if _, err := h.Memberships.Authorize(r.Context(), orgID, user.MemberID, membershipdomain.RoleEboard); err != nil {
		h.fail(w, op+": not authorized", err, "org_id", orgID, "member_id", user.MemberID, "owner_id", ownerID)
		return false
	}
	return true
}
