package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"member-tracker-go/internal/config"
	"member-tracker-go/internal/domain/apperror"
	"member-tracker-go/internal/domain/member"
	"member-tracker-go/pkg/logger"
)

type fakeResolver struct {
	members map[string]*member.Member
	inputs  []member.IdentityInput
	err     error
}

func (f *fakeResolver) CheckNewUser(ctx context.Context, input member.IdentityInput) (member.NewUserCheck, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return member.NewUserCheck{}, f.err
	}
	if m, ok := f.members[input.Email]; ok {
		return member.NewUserCheck{Member: m}, nil
	}
	m := &member.Member{ID: uint(len(f.members) + 100), Name: input.Name, Email: input.Email}
	if f.members == nil {
		f.members = make(map[string]*member.Member)
	}
	f.members[input.Email] = m
	return member.NewUserCheck{IsNewUser: true, Member: m}, nil
}

const testSecret = "test-secret"

func signToken(t *testing.T, claims Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims(email string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "member-tracker",
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
		Name:  "Ada Lovelace",
	}
}

func captureUser(t *testing.T, auth *JWTAuth, header string) (User, int) {
	t.Helper()
	var got User
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		got = user
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return got, rec.Code
}

func TestJWTAuthResolvesMember(t *testing.T) {
	resolver := &fakeResolver{members: map[string]*member.Member{
		"ada@example.edu": {ID: 7, Name: "Ada Lovelace", Email: "ada@example.edu"},
	}}
	auth := NewJWTAuth(config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "member-tracker", AdminEmails: []string{"ADA@example.edu"}}, resolver, logger.Discard())

	token := signToken(t, validClaims("ada@example.edu"), jwt.SigningMethodHS256, []byte(testSecret))
	user, code := captureUser(t, auth, "Bearer "+token)
	if code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	if user.MemberID != 7 || user.IsNewUser {
		t.Fatalf("unexpected user %+v", user)
	}
	if !user.IsAdmin {
		t.Fatal("expected admin email match to be case insensitive")
	}
}

func TestJWTAuthCreatesNewMember(t *testing.T) {
	resolver := &fakeResolver{}
	auth := NewJWTAuth(config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "member-tracker"}, resolver, logger.Discard())

	claims := validClaims("grace@example.edu")
	claims.Name = ""
	token := signToken(t, claims, jwt.SigningMethodHS256, []byte(testSecret))

	user, code := captureUser(t, auth, "Bearer "+token)
	if code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	if !user.IsNewUser {
		t.Fatal("expected new user")
	}
	if resolver.inputs[0].Name != "grace" {
		t.Fatalf("expected name from email local part, got %q", resolver.inputs[0].Name)
	}
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	auth := NewJWTAuth(config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "member-tracker"}, &fakeResolver{}, logger.Discard())

	expired := validClaims("ada@example.edu")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := validClaims("ada@example.edu")
	wrongIssuer.Issuer = "someone-else"
	noExpiry := validClaims("ada@example.edu")
	noExpiry.ExpiresAt = nil

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-token",
		"wrong secret":   "Bearer " + signToken(t, validClaims("ada@example.edu"), jwt.SigningMethodHS256, []byte("other")),
		"expired":        "Bearer " + signToken(t, expired, jwt.SigningMethodHS256, []byte(testSecret)),
		"wrong issuer":   "Bearer " + signToken(t, wrongIssuer, jwt.SigningMethodHS256, []byte(testSecret)),
		"no expiry":      "Bearer " + signToken(t, noExpiry, jwt.SigningMethodHS256, []byte(testSecret)),
		"wrong alg":      "Bearer " + signToken(t, validClaims("ada@example.edu"), jwt.SigningMethodHS512, []byte(testSecret)),
	}

	for name, header := range cases {
		handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatalf("%s: handler should not run", name)
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestJWTAuthResolverErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"malformed email claim", apperror.Invalidf("email must be a valid email address"), http.StatusUnauthorized},
		{"store down", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		auth := NewJWTAuth(config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "member-tracker"}, &fakeResolver{err: tc.err}, logger.Discard())
		token := signToken(t, validClaims("not-an-email"), jwt.SigningMethodHS256, []byte(testSecret))
		if _, status := captureUser(t, auth, "Bearer "+token); status != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.status, status)
		}
	}
}

func TestJWTAuthSkipUsesMockUser(t *testing.T) {
	resolver := &fakeResolver{}
	auth := NewJWTAuth(config.AuthConfig{SkipAuth: true, MockUserEmail: "dev@example.edu", MockUserName: "Dev User"}, resolver, logger.Discard())

	user, code := captureUser(t, auth, "")
	if code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	if user.Email != "dev@example.edu" || user.Name != "Dev User" {
		t.Fatalf("unexpected mock user %+v", user)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := NewCORS([]string{"http://localhost:5173"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/organizations", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("expected allowed origin header, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/organizations", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("expected no CORS header for unknown origin")
	}
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	limiters := NewRateLimiters(config.RateLimitConfig{Enabled: true, ReportRequests: 2, ImportRequests: 1, Window: time.Minute}, logger.Discard())
	handler := limiters.Reports(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/organizations/1/reports/annual", nil)
		req = req.WithContext(WithUser(req.Context(), User{MemberID: 1, Email: "ada@example.edu"}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}
