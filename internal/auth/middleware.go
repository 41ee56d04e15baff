// Package auth verifies the signed session tokens issued when a table QR
// is scanned or a staff member signs in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dinehub/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	tenantIDKey contextKey = "tenant_id"
	roleKey     contextKey = "role"
	tableIDKey  contextKey = "table_id"
	subjectKey  contextKey = "sub"
)

// Claims is the session token payload. Customers carry the table they
// scanned; staff and kitchen tokens have no table.
type Claims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	TableID  string `json:"table_id,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token. Customer tokens expire with the cart
// session; staff tokens run a full shift.
func IssueToken(secret []byte, tenantID string, role models.Role, tableID, subject string, ttl time.Duration) (string, error) {
	claims := Claims{
		TenantID: tenantID,
		Role:     string(role),
		TableID:  tableID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies the signature and expiry and returns the claims.
func ParseToken(secret []byte, raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.TenantID == "" {
		return nil, errors.New("token carries no tenant")
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token and places the
// session identity into the request context.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := ParseToken(secret, parts[1])
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), tenantIDKey, claims.TenantID)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			ctx = context.WithValue(ctx, tableIDKey, claims.TableID)
			ctx = context.WithValue(ctx, subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates staff-only routes. It must sit inside Middleware.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := Role(r.Context())
			for _, role := range roles {
				if current == string(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

// Helpers to extract identity in handlers.

func TenantID(ctx context.Context) string {
	if v, ok := ctx.Value(tenantIDKey).(string); ok {
		return v
	}
	return ""
}

func Role(ctx context.Context) string {
	if v, ok := ctx.Value(roleKey).(string); ok {
		return v
	}
	return ""
}

func TableID(ctx context.Context) string {
	if v, ok := ctx.Value(tableIDKey).(string); ok {
		return v
	}
	return ""
}

func Subject(ctx context.Context) string {
	if v, ok := ctx.Value(subjectKey).(string); ok {
		return v
	}
	return ""
}
