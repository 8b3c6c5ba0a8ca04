package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"member-tracker-go/internal/config"
	"member-tracker-go/internal/domain/apperror"
	"member-tracker-go/internal/domain/member"
	"member-tracker-go/pkg/logger"
)

type contextKey int

const userKey contextKey = iota

// User is the authenticated caller resolved to a member record.
type User struct {
	MemberID  uint
	Email     string
	Name      string
	IsNewUser bool
	IsAdmin   bool
}

// Claims are the bearer token claims. The subject is informational; the
// email is what identifies the member.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type MemberResolver interface {
	CheckNewUser(ctx context.Context, input member.IdentityInput) (member.NewUserCheck, error)
}

type JWTAuth struct {
	secret   []byte
	issuer   string
	members  MemberResolver
	skipAuth bool
	mockUser member.IdentityInput
	admins   map[string]struct{}
	log      logger.Logger
}

func NewJWTAuth(cfg config.AuthConfig, members MemberResolver, log logger.Logger) *JWTAuth {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		email = normalizeEmail(email)
		if email != "" {
			admins[email] = struct{}{}
		}
	}

	return &JWTAuth{
		secret:   []byte(cfg.JWTSecret),
		issuer:   strings.TrimSpace(cfg.JWTIssuer),
		members:  members,
		skipAuth: cfg.SkipAuth,
		mockUser: member.IdentityInput{
			Email: strings.TrimSpace(cfg.MockUserEmail),
			Name:  strings.TrimSpace(cfg.MockUserName),
		},
		admins: admins,
		log:    log,
	}
}

func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := a.mockUser
		if !a.skipAuth {
			if len(a.secret) == 0 {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}
			claims, err := a.parse(token)
			if err != nil {
				a.log.BusinessError("auth: invalid token", err, "path", r.URL.Path)
				unauthorized(w)
				return
			}
			identity = member.IdentityInput{Email: claims.Email, Name: claims.Name}
		}

		if identity.Email == "" {
			unauthorized(w)
			return
		}
		if strings.TrimSpace(identity.Name) == "" {
			identity.Name = localPart(identity.Email)
		}

		check, err := a.members.CheckNewUser(r.Context(), identity)
		if err != nil {
			switch apperror.KindOf(err) {
			case apperror.InvalidInput, apperror.Unauthorized:
				a.log.BusinessError("auth: token identity rejected", err, "email", identity.Email)
				unauthorized(w)
			default:
				a.log.InternalError("auth: resolve member failed", err, "email", identity.Email)
				writeError(w, http.StatusInternalServerError, "upstream_failure", "internal error")
			}
			return
		}

		_, isAdmin := a.admins[normalizeEmail(check.Member.Email)]
		ctx := WithUser(r.Context(), User{
			MemberID:  check.Member.ID,
			Email:     check.Member.Email,
			Name:      check.Member.Name,
			IsNewUser: check.IsNewUser,
			IsAdmin:   isAdmin,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *JWTAuth) parse(token string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		options = append(options, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, options...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token not valid")
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, errors.New("token has no email claim")
	}
	return claims, nil
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey).(User)
	if !ok || user.MemberID == 0 {
		return User{}, false
	}
	return user, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
