package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// Auth validates HS256 bearer tokens. The `sub` claim is the user id and the
// optional `role` claim grants admin routes.
type Auth struct {
	secret []byte
}

var ErrEmptySecret = errors.New("auth: signing secret is empty")

func NewAuth(secret string) (*Auth, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Auth{secret: []byte(secret)}, nil
}

func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := a.parse(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID, role)))
	})
}

// RequireRole must run after Authenticate.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) parse(header string) (string, string, error) {
	scheme, tokenStr, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
		return "", "", jwt.ErrTokenMalformed
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", "", jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", jwt.ErrTokenMalformed
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", "", jwt.ErrTokenInvalidClaims
	}
	role, _ := claims["role"].(string)
	return sub, role, nil
}

// IssueToken signs a token for userID. Used by tests and local tooling.
func (a *Auth) IssueToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{"sub": userID}
	if role != "" {
		claims["role"] = role
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
