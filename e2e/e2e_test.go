//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"member-tracker-go/internal/app"
	"member-tracker-go/internal/config"
	"member-tracker-go/internal/db"
	"member-tracker-go/internal/domain/notification"
	"member-tracker-go/internal/email"
	"member-tracker-go/internal/transport/httpserver"
	"member-tracker-go/internal/transport/httpserver/middleware"
	"member-tracker-go/pkg/logger"
)

const (
	jwtSecret  = "e2e-secret"
	jwtIssuer  = "member-tracker"
	adminEmail = "admin@example.edu"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	graph  *app.Graph
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.Discard()
	cfg := config.Config{
		AllowedOrigins: []string{"http://localhost:5173"},
		DB:             config.DBConfig{DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 2, ConnMaxLifetime: time.Minute},
		Auth: config.AuthConfig{
			JWTSecret:   jwtSecret,
			JWTIssuer:   jwtIssuer,
			AdminEmails: []string{adminEmail},
		},
		Email: config.EmailConfig{
			Provider: "console",
			AppName:  "Member Tracker",
			From:     "noreply@example.edu",
		},
		Jobs:          config.JobsConfig{Workers: 2},
		SemesterCache: config.SemesterCacheConfig{Size: 16, TTL: time.Minute},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if _, err := db.Migrate(dbConn, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	graph, err := app.NewGraph(cfg, dbConn, log)
	if err != nil {
		t.Fatalf("wire graph: %v", err)
	}
	router := httpserver.NewRouter(cfg, graph.Handlers, graph.Members, log)

	return &testEnv{server: httptest.NewServer(router), db: dbConn, graph: graph}
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func (e *testEnv) outbox(t *testing.T) []email.ConsoleMessage {
	t.Helper()
	console, ok := e.graph.Sender.(*email.Console)
	if !ok {
		t.Fatalf("expected console sender, got %T", e.graph.Sender)
	}
	return console.Sent()
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE report_dispatches, attendances, events, recognitions, email_settings, bonus_rules, " +
			"membership_requirements, memberships, semesters, members, organizations RESTART IDENTITY CASCADE",
	).Error
}

func token(t *testing.T, email, name string) string {
	t.Helper()
	claims := middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
		Name:  name,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	return do(t, client, method, url, token, "application/json", body)
}

func do(t *testing.T, client *http.Client, method, url, token, contentType string, body io.Reader) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, respBody
}

func expectStatus(t *testing.T, resp *http.Response, body []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected %d, got %d: %s", want, resp.StatusCode, string(body))
	}
}

func decode(t *testing.T, body []byte, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, dst); err != nil {
		t.Fatalf("decode %s: %v", string(body), err)
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

type authMeResponse struct {
	Member struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"member"`
	IsNewUser bool `json:"is_new_user"`
	IsAdmin   bool `json:"is_admin"`
}

type idResponse struct {
	ID uint `json:"id"`
}

type membershipResponse struct {
	ID           uint   `json:"id"`
	MemberID     uint   `json:"member_id"`
	Role         string `json:"role"`
	Points       int    `json:"points"`
	ActiveMember bool   `json:"active_member"`
}

type statusResponse struct {
	Membership membershipResponse `json:"membership"`
	Evaluation struct {
		IsActive bool `json:"is_active"`
		Points   int  `json:"points"`
	} `json:"evaluation"`
}

type recordedResponse struct {
	Created bool `json:"created"`
}

type importResponse struct {
	Recorded       int `json:"recorded"`
	Duplicates     int `json:"duplicates"`
	CreatedMembers int `json:"created_members"`
}

type reportResponse struct {
	IsNewOrg       bool `json:"is_new_org"`
	MemberDataThis struct {
		TotalMembers  int `json:"total_members"`
		ActiveMembers int `json:"active_members"`
	} `json:"member_data_this"`
	MeetingsDataThis struct {
		NumMeetings     int `json:"num_meetings"`
		TotalAttendance int `json:"total_attendance"`
	} `json:"meetings_data_this"`
	MemberDataLast *json.RawMessage `json:"member_data_last"`
}

func TestE2EHealthAndAuth(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/health", "", nil)
	expectStatus(t, resp, body, http.StatusOK)

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", "", nil)
	expectStatus(t, resp, body, http.StatusUnauthorized)
	var errResp errorResponse
	decode(t, body, &errResp)
	if errResp.Code != "unauthorized" {
		t.Fatalf("expected unauthorized, got %q", errResp.Code)
	}

	studentToken := token(t, "New@RIT.edu", "New Student")
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", studentToken, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var me authMeResponse
	decode(t, body, &me)
	if !me.IsNewUser || me.Member.Email != "new@rit.edu" || me.IsAdmin {
		t.Fatalf("unexpected first login %+v", me)
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", studentToken, nil)
	expectStatus(t, resp, body, http.StatusOK)
	decode(t, body, &me)
	if me.IsNewUser {
		t.Fatal("expected returning user to not be new")
	}
}

func TestE2EMembershipFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	base := env.server.URL + "/api"
	admin := token(t, adminEmail, "Org Admin")
	student := token(t, "student@example.edu", "Sam Student")
	now := time.Now().UTC()

	// Semesters are admin only.
	semester := map[string]string{
		"name":          "Current",
		"academic_year": fmt.Sprintf("%d-%d", now.Year(), now.Year()+1),
		"start_date":    now.AddDate(0, 0, -30).Format("2006-01-02"),
		"end_date":      now.AddDate(0, 0, 60).Format("2006-01-02"),
	}
	resp, body := requestJSON(t, client, http.MethodPost, base+"/semesters", student, semester)
	expectStatus(t, resp, body, http.StatusUnauthorized)
	resp, body = requestJSON(t, client, http.MethodPost, base+"/semesters", admin, semester)
	expectStatus(t, resp, body, http.StatusCreated)

	resp, body = requestJSON(t, client, http.MethodPost, base+"/organizations", admin, map[string]interface{}{
		"name":             "Robotics Club",
		"abbreviation":     "RC",
		"email":            "robotics@example.edu",
		"membership_type":  "points",
		"active_threshold": 10,
	})
	expectStatus(t, resp, body, http.StatusCreated)
	var org idResponse
	decode(t, body, &org)
	orgURL := fmt.Sprintf("%s/organizations/%d", base, org.ID)

	resp, body = requestJSON(t, client, http.MethodPost, orgURL+"/requirements", admin, map[string]interface{}{
		"event_type":       "general_meeting",
		"requirement_type": "points",
		"value":            5,
	})
	expectStatus(t, resp, body, http.StatusCreated)

	settings := map[string]bool{
		"status_emails":       true,
		"annual_report":       true,
		"semester_report":     true,
		"membership_achieved": true,
	}
	resp, body = requestJSON(t, client, http.MethodPost, orgURL+"/email-settings", admin, settings)
	expectStatus(t, resp, body, http.StatusCreated)
	resp, body = requestJSON(t, client, http.MethodPost, orgURL+"/email-settings", admin, settings)
	expectStatus(t, resp, body, http.StatusInternalServerError)
	var conflict struct {
		Code string `json:"code"`
	}
	decode(t, body, &conflict)
	if conflict.Code != "conflict" {
		t.Fatalf("expected conflict code, got %q", conflict.Code)
	}

	resp, body = requestJSON(t, client, http.MethodGet, base+"/semesters/current", admin, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var current idResponse
	decode(t, body, &current)

	resp, body = requestJSON(t, client, http.MethodPost, orgURL+"/events", admin, map[string]interface{}{
		"semester_id": current.ID,
		"name":        "Weekly meeting",
		"start_at":    now.Add(-time.Hour).Format(time.RFC3339),
		"end_at":      now.Add(time.Hour).Format(time.RFC3339),
		"event_type":  "general_meeting",
	})
	expectStatus(t, resp, body, http.StatusCreated)
	var meeting idResponse
	decode(t, body, &meeting)
	eventURL := fmt.Sprintf("%s/events/%d", orgURL, meeting.ID)

	// Students cannot manage events.
	resp, body = requestJSON(t, client, http.MethodDelete, eventURL, student, nil)
	expectStatus(t, resp, body, http.StatusUnauthorized)

	resp, body = requestJSON(t, client, http.MethodPost, eventURL+"/check-in", student, nil)
	expectStatus(t, resp, body, http.StatusCreated)
	resp, body = requestJSON(t, client, http.MethodPost, eventURL+"/check-in", student, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var again recordedResponse
	decode(t, body, &again)
	if again.Created {
		t.Fatal("expected second check-in to be a duplicate")
	}

	resp, body = requestJSON(t, client, http.MethodGet, orgURL+"/me/memberships", student, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var mine []membershipResponse
	decode(t, body, &mine)
	if len(mine) != 1 || mine[0].Points != 5 || mine[0].ActiveMember {
		t.Fatalf("unexpected memberships after check-in %+v", mine)
	}

	resp, body = requestJSON(t, client, http.MethodPatch, fmt.Sprintf("%s/memberships/%d/points", orgURL, mine[0].ID), admin, map[string]int{"delta": 5})
	expectStatus(t, resp, body, http.StatusOK)
	var adjusted statusResponse
	decode(t, body, &adjusted)
	if !adjusted.Evaluation.IsActive || adjusted.Membership.Points != 10 {
		t.Fatalf("expected active member with 10 points, got %+v", adjusted)
	}

	outbox := env.outbox(t)
	if len(outbox) != 1 || outbox[0].To != "student@example.edu" {
		t.Fatalf("expected one achievement email to the student, got %+v", outbox)
	}

	resp, body = do(t, client, http.MethodPost, eventURL+"/import", admin, "text/csv",
		strings.NewReader("email,name\nstudent@example.edu,Sam Student\nnew.person@example.edu,New Person\n"))
	expectStatus(t, resp, body, http.StatusOK)
	var imported importResponse
	decode(t, body, &imported)
	if imported.Recorded != 1 || imported.Duplicates != 1 || imported.CreatedMembers != 1 {
		t.Fatalf("unexpected import result %+v", imported)
	}

	resp, body = requestJSON(t, client, http.MethodGet, orgURL+"/reports/semester", student, nil)
	expectStatus(t, resp, body, http.StatusUnauthorized)

	resp, body = requestJSON(t, client, http.MethodGet, orgURL+"/reports/semester", admin, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var report reportResponse
	decode(t, body, &report)
	if !report.IsNewOrg || report.MemberDataLast != nil {
		t.Fatalf("expected new organization report, got %s", string(body))
	}
	if report.MeetingsDataThis.NumMeetings != 1 || report.MeetingsDataThis.TotalAttendance != 2 {
		t.Fatalf("unexpected meetings data %+v", report.MeetingsDataThis)
	}

	summary, err := env.graph.Deliverer.RunPass(context.Background(), notification.KindSemesterReport)
	if err != nil || summary.Failed != 0 {
		t.Fatalf("delivery pass failed: %+v %v", summary, err)
	}
	if _, err := env.graph.Deliverer.RunPass(context.Background(), notification.KindSemesterReport); err != nil {
		t.Fatalf("second delivery pass failed: %v", err)
	}

	reports := 0
	for _, msg := range env.outbox(t) {
		if msg.To == "robotics@example.edu" {
			reports++
		}
	}
	if reports != 1 {
		t.Fatalf("expected exactly one semester report email, got %d", reports)
	}

	resp, body = requestJSON(t, client, http.MethodGet, orgURL+"/dispatches", admin, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var dispatches []map[string]interface{}
	decode(t, body, &dispatches)
	if len(dispatches) != 2 {
		t.Fatalf("expected 2 dispatch rows, got %d", len(dispatches))
	}
}
