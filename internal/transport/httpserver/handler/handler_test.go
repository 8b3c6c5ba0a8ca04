package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"member-tracker-go/internal/domain/apperror"
	memberdomain "member-tracker-go/internal/domain/member"
	membershipdomain "member-tracker-go/internal/domain/membership"
	orgdomain "member-tracker-go/internal/domain/organization"
	semesterdomain "member-tracker-go/internal/domain/semester"
	"member-tracker-go/internal/domain/validate"
	"member-tracker-go/internal/transport/httpserver/middleware"
	"member-tracker-go/pkg/logger"
)

type fakeMemberRepo struct {
	members map[uint]*memberdomain.Member
}

func (r *fakeMemberRepo) GetMember(ctx context.Context, id uint) (*memberdomain.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, memberdomain.ErrMemberNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMemberRepo) GetMemberByEmail(ctx context.Context, email string) (*memberdomain.Member, error) {
	for _, m := range r.members {
		if m.Email == email {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeMemberRepo) ListMembersByIDs(ctx context.Context, ids []uint) ([]memberdomain.Member, error) {
	return nil, nil
}

func (r *fakeMemberRepo) CreateMember(ctx context.Context, m *memberdomain.Member) error {
	m.ID = uint(len(r.members) + 1)
	copied := *m
	r.members[m.ID] = &copied
	return nil
}

func (r *fakeMemberRepo) UpdateMember(ctx context.Context, m *memberdomain.Member) error {
	copied := *m
	r.members[m.ID] = &copied
	return nil
}

type fakeSemesterRepo struct {
	semesters []semesterdomain.Semester
}

func (r *fakeSemesterRepo) ListSemesters(ctx context.Context) ([]semesterdomain.Semester, error) {
	return append([]semesterdomain.Semester(nil), r.semesters...), nil
}

func (r *fakeSemesterRepo) GetSemester(ctx context.Context, id uint) (*semesterdomain.Semester, error) {
	for _, s := range r.semesters {
		if s.ID == id {
			copied := s
			return &copied, nil
		}
	}
	return nil, semesterdomain.ErrSemesterNotFound
}

func (r *fakeSemesterRepo) CreateSemester(ctx context.Context, s *semesterdomain.Semester) error {
	s.ID = uint(len(r.semesters) + 1)
	r.semesters = append(r.semesters, *s)
	return nil
}

func newTestHandlers() (*Handlers, *fakeMemberRepo, *fakeSemesterRepo) {
	members := &fakeMemberRepo{members: map[uint]*memberdomain.Member{
		1: {ID: 1, Name: "Ada Lovelace", Email: "ada@example.edu"},
	}}
	semesters := &fakeSemesterRepo{}
	h := New(Services{
		Members:   memberdomain.NewService(members),
		Semesters: semesterdomain.NewService(semesters),
	}, logger.Discard())
	return h, members, semesters
}

func serve(t *testing.T, handler http.HandlerFunc, method, target, body string, user *middleware.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestWriteDomainErrorMapsKinds(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"not found", memberdomain.ErrMemberNotFound, http.StatusNotFound, "not_found", "member not found"},
		{"conflict", memberdomain.ErrEmailTaken, http.StatusInternalServerError, "conflict", "email already registered"},
		{"unauthorized", apperror.New(apperror.Unauthorized, "insufficient role"), http.StatusUnauthorized, "unauthorized", "insufficient role"},
		{"wrapped invalid", apperror.Wrap("op", apperror.Invalidf("bad year")), http.StatusBadRequest, "invalid_input", "bad year"},
		{"unclassified", errors.New("connection refused"), http.StatusInternalServerError, "upstream_failure", "internal error"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeDomainError(rec, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.status, rec.Code)
		}
		body := decodeError(t, rec)
		if body.Code != tc.code || body.Error != tc.msg {
			t.Fatalf("%s: unexpected body %+v", tc.name, body)
		}
	}
}

func TestWriteDomainErrorIncludesFields(t *testing.T) {
	err := validate.Struct(memberdomain.IdentityInput{Name: "  ", Email: "not-an-email"})
	rec := httptest.NewRecorder()
	writeDomainError(rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Fields["name"] == "" || body.Fields["email"] == "" {
		t.Fatalf("expected name and email field errors, got %v", body.Fields)
	}
}

func TestAuthMeReturnsMember(t *testing.T) {
	h, _, _ := newTestHandlers()
	rec := serve(t, h.AuthMe, http.MethodGet, "/api/auth/me", "", &middleware.User{MemberID: 1, Email: "ada@example.edu", IsNewUser: true})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body authMeResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.IsNewUser || body.Member.Email != "ada@example.edu" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestAuthMeWithoutUser(t *testing.T) {
	h, _, _ := newTestHandlers()
	rec := serve(t, h.AuthMe, http.MethodGet, "/api/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestUpdateMemberMeValidates(t *testing.T) {
	h, members, _ := newTestHandlers()
	user := &middleware.User{MemberID: 1}

	rec := serve(t, h.UpdateMemberMe, http.MethodPatch, "/api/members/me", `{"tshirt_size":"XXXL"}`, user)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Fields["tshirt_size"] == "" {
		t.Fatalf("expected tshirt_size error, got %v", body.Fields)
	}

	rec = serve(t, h.UpdateMemberMe, http.MethodPatch, "/api/members/me", `{"major":" Physics ","graduation_date":"2026-05-15"}`, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	stored := members.members[1]
	if stored.Major != "Physics" || stored.GraduationDate == nil || stored.GraduationDate.Year() != 2026 {
		t.Fatalf("unexpected stored member %+v", stored)
	}
}

func TestUpdateMemberMeRejectsUnknownFields(t *testing.T) {
	h, _, _ := newTestHandlers()
	rec := serve(t, h.UpdateMemberMe, http.MethodPatch, "/api/members/me", `{"email":"other@example.edu"}`, &middleware.User{MemberID: 1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLookupMember(t *testing.T) {
	h, _, _ := newTestHandlers()
	user := &middleware.User{MemberID: 1}

	rec := serve(t, h.LookupMember, http.MethodGet, "/api/members/lookup?username=ADA@example.edu", "", user)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = serve(t, h.LookupMember, http.MethodGet, "/api/members/lookup?username=new@rit.edu", "", user)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown username, got %d", rec.Code)
	}
}

func TestCreateSemesterRequiresAdmin(t *testing.T) {
	h, _, semesters := newTestHandlers()
	body := `{"name":"Fall 2024","academic_year":"2024-2025","start_date":"2024-08-26","end_date":"2024-12-20"}`

	rec := serve(t, h.CreateSemester, http.MethodPost, "/api/semesters", body, &middleware.User{MemberID: 1})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-admin, got %d", rec.Code)
	}
	if len(semesters.semesters) != 0 {
		t.Fatal("expected no semester to be created")
	}

	rec = serve(t, h.CreateSemester, http.MethodPost, "/api/semesters", body, &middleware.User{MemberID: 1, IsAdmin: true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created semesterResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.StartDate != "2024-08-26" || created.EndDate != "2024-12-20" {
		t.Fatalf("unexpected dates %+v", created)
	}
}

func TestCreateSemesterRejectsBadInput(t *testing.T) {
	h, _, _ := newTestHandlers()
	admin := &middleware.User{MemberID: 1, IsAdmin: true}

	rec := serve(t, h.CreateSemester, http.MethodPost, "/api/semesters", `{"name":"Fall","academic_year":"2024-2025","start_date":"08/26/2024","end_date":"2024-12-20"}`, admin)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}

	rec = serve(t, h.CreateSemester, http.MethodPost, "/api/semesters", `{"name":"Fall","academic_year":"2024-2026","start_date":"2024-08-26","end_date":"2024-12-20"}`, admin)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad academic year, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Fields["academic_year"] == "" {
		t.Fatalf("expected academic_year field error, got %+v", body)
	}
}

func TestCurrentSemesterWithoutSemesters(t *testing.T) {
	h, _, _ := newTestHandlers()
	rec := serve(t, h.CurrentSemester, http.MethodGet, "/api/semesters/current", "", &middleware.User{MemberID: 1})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPathID(t *testing.T) {
	router := chi.NewRouter()
	var got uint
	var gotErr error
	router.Get("/organizations/{org_id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = pathID(r, "org_id")
	})

	for target, want := range map[string]uint{"/organizations/42": 42, "/organizations/0": 0, "/organizations/abc": 0} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
		if got != want {
			t.Fatalf("%s: expected %d, got %d", target, want, got)
		}
		if want == 0 && !apperror.Is(gotErr, apperror.InvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", target, gotErr)
		}
	}
}

type fakeOrgRepo struct {
	orgdomain.Repository
}

func (fakeOrgRepo) GetOrganization(ctx context.Context, id uint) (*orgdomain.Organization, error) {
	if id != 1 {
		return nil, orgdomain.ErrOrganizationNotFound
	}
	return &orgdomain.Organization{ID: 1, Name: "CSH"}, nil
}

// noMemberships answers every lookup as if the member never joined.
type noMemberships struct {
	membershipdomain.Repository
}

func (noMemberships) ListMemberMemberships(ctx context.Context, orgID, memberID uint) ([]membershipdomain.Membership, error) {
	return nil, nil
}

func TestOrgAccessLetsSiteAdminsThrough(t *testing.T) {
	h := New(Services{
		Organizations: orgdomain.NewService(fakeOrgRepo{}),
		Memberships:   membershipdomain.NewService(noMemberships{}, nil, nil, nil, logger.Discard()),
	}, logger.Discard())

	router := chi.NewRouter()
	router.Get("/organizations/{org_id}/reports", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := h.orgAccess(w, r, "test", membershipdomain.RoleAdmin); ok {
			w.WriteHeader(http.StatusNoContent)
		}
	})

	cases := []struct {
		name   string
		user   middleware.User
		status int
	}{
		{"site admin", middleware.User{MemberID: 5, Email: "root@example.edu", IsAdmin: true}, http.StatusNoContent},
		{"non member", middleware.User{MemberID: 6, Email: "guest@example.edu"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/organizations/1/reports", nil)
		req = req.WithContext(middleware.WithUser(req.Context(), tc.user))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.status, rec.Code)
		}
	}
}
