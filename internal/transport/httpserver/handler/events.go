package handler

import (
	"net/http"
	"time"

	"member-tracker-go/internal/domain/apperror"
	eventdomain "member-tracker-go/internal/domain/event"
	membershipdomain "member-tracker-go/internal/domain/membership"
)

type eventResponse struct {
	ID             uint      `json:"id"`
	OrganizationID uint      `json:"organization_id"`
	SemesterID     uint      `json:"semester_id"`
	Name           string    `json:"name"`
	StartAt        time.Time `json:"start_at"`
	EndAt          time.Time `json:"end_at"`
	Location       string    `json:"location"`
	Description    string    `json:"description"`
	EventType      string    `json:"event_type"`
	InProgress     bool      `json:"in_progress"`
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := h.org(w, r, "events.list")
	if !ok {
		return
	}

	query := r.URL.Query()
	semesterID, err := parseUintParam("semester_id", query.Get("semester_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	from, err := parseTimeParam("from", query.Get("from"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	to, err := parseTimeParam("to", query.Get("to"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		writeError(w, http.StatusBadRequest, apperror.InvalidInput, "to must not be before from")
		return
	}

	events, err := h.Events.List(r.Context(), orgID, eventdomain.ListFilter{
		SemesterID: semesterID,
		From:       from,
		To:         to,
	})
	if err != nil {
		h.fail(w, "events.list: list events failed", err, "org_id", orgID)
		return
	}

	now := time.Now()
	response := make([]eventResponse, 0, len(events))
	for i := range events {
		response = append(response, toEventResponse(&events[i], now))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventdomain.CreateInput
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, orgID, ok := h.orgAccess(w, r, "events.create", membershipdomain.RoleEboard)
	if !ok {
		return
	}

	created, err := h.Events.Create(r.Context(), orgID, req)
	if err != nil {
		h.fail(w, "events.create: create event failed", err, "org_id", orgID, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(created, time.Now()))
}

func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := h.org(w, r, "events.get")
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	e, err := h.Events.Get(r.Context(), orgID, eventID)
	if err != nil {
		h.fail(w, "events.get: get event failed", err, "org_id", orgID, "event_id", eventID)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e, time.Now()))
}

func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventdomain.CreateInput
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, orgID, ok := h.orgAccess(w, r, "events.update", membershipdomain.RoleEboard)
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := h.Events.Update(r.Context(), orgID, eventID, req)
	if err != nil {
		h.fail(w, "events.update: update event failed", err, "org_id", orgID, "event_id", eventID, "member_id", user.MemberID)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(updated, time.Now()))
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user, orgID, ok := h.orgAccess(w, r, "events.delete", membershipdomain.RoleEboard)
	if !ok {
		return
	}
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Events.Delete(r.Context(), orgID, eventID); err != nil {
		h.fail(w, "events.delete: delete event failed", err, "org_id", orgID, "event_id", eventID, "member_id", user.MemberID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EventCounts returns how many events of each type the organization held in
// a semester, defaulting to the current one.
func (h *Handlers) EventCounts(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := h.orgAccess(w, r, "events.counts", membershipdomain.RoleEboard)
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
			h.fail(w, "events.counts: resolve current semester failed", err, "org_id", orgID)
			return
		}
		semesterID = &current.ID
	}

	counts, err := h.Events.CountByType(r.Context(), orgID, *semesterID)
	if err != nil {
		h.fail(w, "events.counts: count events failed", err, "org_id", orgID, "semester_id", *semesterID)
		return
	}

	response := make(map[string]int, len(counts))
	for eventType, count := range counts {
		response[string(eventType)] = count
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"semester_id": *semesterID,
		"counts":      response,
	})
}

func toEventResponse(e *eventdomain.Event, now time.Time) eventResponse {
	return eventResponse{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		SemesterID:     e.SemesterID,
		Name:           e.Name,
		StartAt:        e.StartAt,
		EndAt:          e.EndAt,
		Location:       e.Location,
		Description:    e.Description,
		EventType:      string(e.EventType),
		InProgress:     e.InProgress(now),
	}
}
