package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yashkurhe5314/lms/internal/auth"
	"github.com/yashkurhe5314/lms/internal/middleware"
	"github.com/yashkurhe5314/lms/internal/models"
	"github.com/yashkurhe5314/lms/internal/store/memstore"
)

func newIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test-secret", time.Hour)
}

func addUser(t *testing.T, s *memstore.Store, role models.UserRole) models.User {
	t.Helper()
	user := models.User{
		ID:              primitive.NewObjectID(),
		Name:            "Test User",
		Email:           primitive.NewObjectID().Hex() + "@example.com",
		Role:            role,
		EnrolledCourses: []primitive.ObjectID{},
	}
	require.NoError(t, s.CreateUser(context.Background(), &user))
	return user
}

// next records the principal it saw so tests can assert on it.
func principalRecorder(got *models.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := middleware.PrincipalFrom(r.Context()); ok {
			*got = p
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateMissingHeader(t *testing.T) {
	authn := middleware.NewAuthenticator(newIssuer(), memstore.New())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	authn.Authenticate(principalRecorder(&models.Principal{})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	authn := middleware.NewAuthenticator(newIssuer(), memstore.New())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	authn.Authenticate(principalRecorder(&models.Principal{})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	s := memstore.New()
	user := addUser(t, s, models.RoleStudent)
	expired := auth.NewTokenIssuer("test-secret", -time.Minute)
	token, err := expired.Generate(user.ID.Hex(), string(user.Role))
	require.NoError(t, err)

	authn := middleware.NewAuthenticator(newIssuer(), s)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	authn.Authenticate(principalRecorder(&models.Principal{})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateDeletedUser(t *testing.T) {
	s := memstore.New()
	user := addUser(t, s, models.RoleStudent)
	issuer := newIssuer()
	token, err := issuer.Generate(user.ID.Hex(), string(user.Role))
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(context.Background(), user.ID))

	authn := middleware.NewAuthenticator(issuer, s)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	authn.Authenticate(principalRecorder(&models.Principal{})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A role claim baked into the token must not survive a demotion: the
// effective role is always re-read from the store.
func TestAuthenticateUsesStoredRole(t *testing.T) {
	s := memstore.New()
	user := addUser(t, s, models.RoleAdmin)
	issuer := newIssuer()
	token, err := issuer.Generate(user.ID.Hex(), string(models.RoleAdmin))
	require.NoError(t, err)

	// Demote after issuance.
	user.Role = models.RoleStudent
	require.NoError(t, s.UpdateUser(context.Background(), &user))

	var got models.Principal
	authn := middleware.NewAuthenticator(issuer, s)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	authn.Authenticate(principalRecorder(&got)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleStudent, got.Role)
	assert.Equal(t, user.ID, got.ID)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     models.UserRole
		required []models.UserRole
		wantCode int
	}{
		{"admin allowed", models.RoleAdmin, []models.UserRole{models.RoleAdmin}, http.StatusOK},
		{"teacher allowed in set", models.RoleTeacher, []models.UserRole{models.RoleTeacher, models.RoleAdmin}, http.StatusOK},
		{"student denied", models.RoleStudent, []models.UserRole{models.RoleTeacher, models.RoleAdmin}, http.StatusForbidden},
		{"teacher denied admin-only", models.RoleTeacher, []models.UserRole{models.RoleAdmin}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memstore.New()
			user := addUser(t, s, tt.role)
			issuer := newIssuer()
			token, err := issuer.Generate(user.ID.Hex(), string(tt.role))
			require.NoError(t, err)

			authn := middleware.NewAuthenticator(issuer, s)
			handler := authn.Authenticate(
				middleware.RequireRole(tt.required...)(principalRecorder(&models.Principal{})),
			)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	handler := middleware.RequireRole(models.RoleAdmin)(principalRecorder(&models.Principal{}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
