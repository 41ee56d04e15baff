package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dinehub/internal/auth"
	"dinehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestIssueAndParseToken(t *testing.T) {
	raw, err := auth.IssueToken(secret, "t1", models.RoleCustomer, "tbl-7", "session-1", time.Hour)
	require.NoError(t, err)

	claims, err := auth.ParseToken(secret, raw)
	require.NoError(t, err)

	assert.Equal(t, "t1", claims.TenantID)
	assert.Equal(t, string(models.RoleCustomer), claims.Role)
	assert.Equal(t, "tbl-7", claims.TableID)
	assert.Equal(t, "session-1", claims.Subject)
}

func TestParseToken_WrongSecret(t *testing.T) {
	raw, err := auth.IssueToken(secret, "t1", models.RoleStaff, "", "u1", time.Hour)
	require.NoError(t, err)

	_, err = auth.ParseToken([]byte("other-secret"), raw)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	raw, err := auth.IssueToken(secret, "t1", models.RoleStaff, "", "u1", -time.Minute)
	require.NoError(t, err)

	_, err = auth.ParseToken(secret, raw)
	assert.Error(t, err)
}

func TestMiddleware_InjectsIdentity(t *testing.T) {
	raw, err := auth.IssueToken(secret, "t1", models.RoleCustomer, "tbl-7", "session-1", time.Hour)
	require.NoError(t, err)

	var gotTenant, gotRole, gotTable string
	handler := auth.Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = auth.TenantID(r.Context())
		gotRole = auth.Role(r.Context())
		gotTable = auth.TableID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", gotTenant)
	assert.Equal(t, string(models.RoleCustomer), gotRole)
	assert.Equal(t, "tbl-7", gotTable)
}

func TestMiddleware_RejectsMissingAndMalformedHeaders(t *testing.T) {
	handler := auth.Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	staffToken, err := auth.IssueToken(secret, "t1", models.RoleStaff, "", "u1", time.Hour)
	require.NoError(t, err)
	customerToken, err := auth.IssueToken(secret, "t1", models.RoleCustomer, "tbl-7", "s1", time.Hour)
	require.NoError(t, err)

	handler := auth.Middleware(secret)(
		auth.RequireRole(models.RoleStaff, models.RoleKitchen)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/o1/status", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/orders/o1/status", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
