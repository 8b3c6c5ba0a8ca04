package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"member-tracker-go/internal/domain/apperror"
	membershipdomain "member-tracker-go/internal/domain/membership"
	orgdomain "member-tracker-go/internal/domain/organization"
	semesterdomain "member-tracker-go/internal/domain/semester"
)

type organizationResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Abbreviation    string    `json:"abbreviation"`
	Description     string    `json:"description"`
	Color           string    `json:"color"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	MembershipType  string    `json:"membership_type"`
	ActiveThreshold int       `json:"active_threshold"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type bonusResponse struct {
	ID               uint    `json:"id"`
	ThresholdPercent float64 `json:"threshold_percent"`
	BonusPoints      int     `json:"bonus_points"`
}

type requirementResponse struct {
	ID              uint            `json:"id"`
	EventType       string          `json:"event_type"`
	RequirementType string          `json:"requirement_type"`
	Value           float64         `json:"value"`
	Bonuses         []bonusResponse `json:"bonuses"`
}

type emailSettingsResponse struct {
	StatusEmails       bool `json:"status_emails"`
	AnnualReport       bool `json:"annual_report"`
	SemesterReport     bool `json:"semester_report"`
	MembershipAchieved bool `json:"membership_achieved"`
}

type dispatchResponse struct {
	ID        string    `json:"id"`
	PeriodKey string    `json:"period_key"`
	Kind      string    `json:"kind"`
	Recipient string    `json:"recipient"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handlers) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	orgs, err := h.Organizations.List(r.Context())
	if err != nil {
		h.fail(w, "organizations.list: list organizations failed", err)
		return
	}

	response := make([]organizationResponse, 0, len(orgs))
	for i := range orgs {
		response = append(response, toOrganizationResponse(&orgs[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

// CreateOrganization creates the organization and makes the caller its admin
// for the current semester.
func (h *Handlers) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req orgdomain.CreateInput
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if _, err := h.Semesters.Current(r.Context(), time.Now()); err != nil {
		if errors.Is(err, semesterdomain.ErrNoSemesters) {
			err = apperror.E("organizations.create", apperror.InvalidInput, errors.New("no semester is configured yet"))
		}
		h.fail(w, "organizations.create: resolve current semester failed", err, "member_id", user.MemberID)
		return
	}

	org, err := h.Organizations.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "organizations.create: create organization failed", err, "member_id", user.MemberID)
		return
	}

	if _, err := h.Memberships.JoinCurrent(r.Context(), org.ID, user.MemberID, membershipdomain.RoleAdmin); err != nil {
		h.fail(w, "organizations.create: add creator as admin failed", err, "org_id", org.ID, "member_id", user.MemberID)
		return
	}

	h.log.Info("organizations.create: organization created", "org_id", org.ID, "member_id", user.MemberID)
	writeJSON(w, http.StatusCreated, toOrganizationResponse(org))
}

func (h *Handlers) GetOrganization(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	orgID, err := pathID(r, "org_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	org, err := h.Organizations.Get(r.Context(), orgID)
	if err != nil {
		h.fail(w, "organizations.get: get organization failed", err, "org_id", orgID)
		return
	}
	writeJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *Handlers) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var req orgdomain.UpdateInput
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, orgID, ok := h.orgAccess(w, r, "organizations.update", membershipdomain.RoleAdmin)
	if !ok {
		return
	}

	org, err := h.Organizations.Update(r.Context(), orgID, req)
	if err != nil {
		h.fail(w, "organizations.update: update organization failed", err, "org_id", orgID, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *Handlers) ListRequirements(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := h.org(w, r, "requirements.list")
	if !ok {
		return
	}

	requirements, err := h.Organizations.Requirements(r.Context(), orgID)
	if err != nil {
		h.fail(w, "requirements.list: list requirements failed", err, "org_id", orgID)
		return
	}

	response := make([]requirementResponse, 0, len(requirements))
	for i := range requirements {
		response = append(response, toRequirementResponse(&requirements[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	var req orgdomain.RequirementInput
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, orgID, ok := h.orgAccess(w, r, "requirements.create", membershipdomain.RoleAdmin)
	if !ok {
		return
	}

	requirement, err := h.Organizations.AddRequirement(r.Context(), orgID, req)
	if err != nil {
		h.fail(w, "requirements.create: add requirement failed", err, "org_id", orgID, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusCreated, toRequirementResponse(requirement))
}

func (h *Handlers) UpdateRequirement(w http.ResponseWriter, r *http.Request) {
	var req orgdomain.RequirementInput
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, orgID, ok := h.orgAccess(w, r, "requirements.update", membershipdomain.RoleAdmin)
	if !ok {
		return
	}
	requirementID, err := pathID(r, "requirement_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	requirement, err := h.Organizations.UpdateRequirement(r.Context(), orgID, requirementID, req)
	if err != nil {
		h.fail(w, "requirements.update: update requirement failed", err, "org_id", orgID, "requirement_id", requirementID, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, toRequirementResponse(requirement))
}

func (h *Handlers) DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.orgAccess(w, r, "requirements.delete", membershipdomain.RoleAdmin)
	if !ok {
		return
	}
	requirementID, err := pathID(r, "requirement_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Organizations.DeleteRequirement(r.Context(), orgID, requirementID); err != nil {
		h.fail(w, "requirements.delete: delete requirement failed", err, "org_id", orgID, "requirement_id", requirementID, "member_id", user.MemberID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetEmailSettings(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := h.orgAccess(w, r, "email_settings.get", membershipdomain.RoleEboard)
	if !ok {
		return
	}

	settings, err := h.Organizations.EmailSettings(r.Context(), orgID)
	if err != nil {
		h.fail(w, "email_settings.get: get settings failed", err, "org_id", orgID)
		return
	}
	writeJSON(w, http.StatusOK, toEmailSettingsResponse(settings))
}

func (h *Handlers) CreateEmailSettings(w http.ResponseWriter, r *http.Request) {
	h.saveEmailSettings(w, r, "email_settings.create", http.StatusCreated, h.Organizations.CreateEmailSettings)
}

func (h *Handlers) UpdateEmailSettings(w http.ResponseWriter, r *http.Request) {
	h.saveEmailSettings(w, r, "email_settings.update", http.StatusOK, h.Organizations.UpdateEmailSettings)
}

type saveSettingsFunc func(ctx context.Context, orgID uint, input orgdomain.EmailSettingsInput) (*orgdomain.EmailSettings, error)

func (h *Handlers) saveEmailSettings(w http.ResponseWriter, r *http.Request, op string, status int, save saveSettingsFunc) {
	var req orgdomain.EmailSettingsInput
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, orgID, ok := h.orgAccess(w, r, op, membershipdomain.RoleAdmin)
	if !ok {
		return
	}

	settings, err := save(r.Context(), orgID, req)
	if err != nil {
		h.fail(w, op+": save settings failed", err, "org_id", orgID, "member_id", user.MemberID)
		return
	}
	writeJSON(w, status, toEmailSettingsResponse(settings))
}

func (h *Handlers) ListDispatches(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := h.orgAccess(w, r, "dispatches.list", membershipdomain.RoleEboard)
	if !ok {
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), 50, 500)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dispatches, err := h.Dispatches.List(r.Context(), orgID, limit)
	if err != nil {
		h.fail(w, "dispatches.list: list dispatches failed", err, "org_id", orgID)
		return
	}

	response := make([]dispatchResponse, 0, len(dispatches))
	for _, d := range dispatches {
		response = append(response, dispatchResponse{
			ID:        d.ID.String(),
			PeriodKey: d.PeriodKey,
			Kind:      string(d.Kind),
			Recipient: d.Recipient,
			Status:    string(d.Status),
			Error:     d.Error,
			CreatedAt: d.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func toOrganizationResponse(org *orgdomain.Organization) organizationResponse {
	return organizationResponse{
		ID:              org.ID,
		Name:            org.Name,
		Abbreviation:    org.Abbreviation,
		Description:     org.Description,
		Color:           org.Color,
		Email:           org.Email,
		Phone:           org.Phone,
		MembershipType:  string(org.MembershipType),
		ActiveThreshold: org.ActiveThreshold,
		CreatedAt:       org.CreatedAt,
		UpdatedAt:       org.UpdatedAt,
	}
}

func toRequirementResponse(req *orgdomain.MembershipRequirement) requirementResponse {
	bonuses := make([]bonusResponse, 0, len(req.Bonuses))
	for _, b := range req.Bonuses {
		bonuses = append(bonuses, bonusResponse{
			ID:               b.ID,
			ThresholdPercent: b.ThresholdPercent,
			BonusPoints:      b.BonusPoints,
		})
	}
	return requirementResponse{
		ID:              req.ID,
		EventType:       req.EventType,
		RequirementType: string(req.RequirementType),
		Value:           req.Value,
		Bonuses:         bonuses,
	}
}

func toEmailSettingsResponse(s *orgdomain.EmailSettings) emailSettingsResponse {
	return emailSettingsResponse{
		StatusEmails:       s.StatusEmails,
		AnnualReport:       s.AnnualReport,
		SemesterReport:     s.SemesterReport,
		MembershipAchieved: s.MembershipAchieved,
	}
}
