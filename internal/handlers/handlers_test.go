package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/yashkurhe5314/lms/internal/auth"
	"github.com/yashkurhe5314/lms/internal/models"
	"github.com/yashkurhe5314/lms/internal/routes"
	"github.com/yashkurhe5314/lms/internal/store/memstore"
)

const testPassword = "password123"

func newTestServer(t *testing.T) (*mux.Router, *memstore.Store, *auth.TokenIssuer) {
	t.Helper()
	st := memstore.New()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := routes.SetupRouter(st, st, tokens, nil, logger)
	return router, st, tokens
}

func addUser(t *testing.T, st *memstore.Store, email string, role models.UserRole) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		ID:              primitive.NewObjectID(),
		Name:            "Test User",
		Email:           email,
		Password:        string(hashed),
		Role:            role,
		EnrolledCourses: []primitive.ObjectID{},
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	require.NoError(t, st.CreateUser(context.Background(), &user))
	return user
}

func addCourse(t *testing.T, st *memstore.Store, instructor primitive.ObjectID) models.Course {
	t.Helper()
	course := models.Course{
		ID:               primitive.NewObjectID(),
		Title:            "Operating Systems",
		Description:      "Processes, memory, filesystems",
		Instructor:       instructor,
		Duration:         "12 weeks",
		Level:            models.LevelAdvanced,
		Price:            99,
		EnrolledStudents: []primitive.ObjectID{},
		CreatedAt:        time.Now(),
	}
	require.NoError(t, st.CreateCourse(context.Background(), &course))
	return course
}

func bearer(t *testing.T, tokens *auth.TokenIssuer, user models.User) string {
	t.Helper()
	token, err := tokens.Generate(user.ID.Hex(), string(user.Role))
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, router *mux.Router, method, path, authz string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}
