package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yashkurhe5314/lms/internal/apperr"
	"github.com/yashkurhe5314/lms/internal/models"
)

func seedCourse(t *testing.T, s *Store, instructor primitive.ObjectID) models.Course {
	t.Helper()
	course := models.Course{
		ID:               primitive.NewObjectID(),
		Title:            "Intro to Distributed Systems",
		Description:      "Consensus, replication, failure",
		Instructor:       instructor,
		Duration:         "8 weeks",
		Level:            models.LevelIntermediate,
		Price:            49,
		EnrolledStudents: []primitive.ObjectID{},
		CreatedAt:        time.Now(),
	}
	require.NoError(t, s.CreateCourse(context.Background(), &course))
	return course
}

func seedUser(t *testing.T, s *Store, email string, role models.UserRole) models.User {
	t.Helper()
	user := models.User{
		ID:              primitive.NewObjectID(),
		Name:            "Test User",
		Email:           email,
		Role:            role,
		EnrolledCourses: []primitive.ObjectID{},
	}
	require.NoError(t, s.CreateUser(context.Background(), &user))
	return user
}

func TestEnrollOnce(t *testing.T) {
	s := New()
	student := seedUser(t, s, "student@example.com", models.RoleStudent)
	course := seedCourse(t, s, primitive.NewObjectID())

	rec, err := s.Enroll(context.Background(), course.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, rec.StudentID)
	assert.Equal(t, course.ID, rec.CourseID)

	_, err = s.Enroll(context.Background(), course.ID, student.ID)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	got, err := s.GetCourse(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{student.ID}, got.EnrolledStudents)

	mirror, err := s.GetUser(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{course.ID}, mirror.EnrolledCourses)
}

func TestEnrollMissingCourse(t *testing.T) {
	s := New()
	student := seedUser(t, s, "student@example.com", models.RoleStudent)

	_, err := s.Enroll(context.Background(), primitive.NewObjectID(), student.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestEnrollConcurrentSamePair(t *testing.T) {
	s := New()
	student := seedUser(t, s, "student@example.com", models.RoleStudent)
	course := seedCourse(t, s, primitive.NewObjectID())

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Enroll(context.Background(), course.ID, student.ID)
		}(i)
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperr.ErrConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicted)

	got, err := s.GetCourse(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Len(t, got.EnrolledStudents, 1)
}

func TestReconcileRepairsMirror(t *testing.T) {
	s := New()
	student := seedUser(t, s, "student@example.com", models.RoleStudent)
	course := seedCourse(t, s, primitive.NewObjectID())

	s.MirrorErr = errors.New("mirror write failed")
	_, err := s.Enroll(context.Background(), course.ID, student.ID)
	require.Error(t, err)
	s.MirrorErr = nil

	// Course side is written, student side is not.
	got, err := s.GetCourse(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Len(t, got.EnrolledStudents, 1)
	mirror, err := s.GetUser(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Empty(t, mirror.EnrolledCourses)

	repaired, err := s.ReconcileEnrollments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	mirror, err = s.GetUser(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{course.ID}, mirror.EnrolledCourses)

	// Already consistent: nothing to repair.
	repaired, err = s.ReconcileEnrollments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, repaired)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := New()
	seedUser(t, s, "dup@example.com", models.RoleStudent)

	user := models.User{ID: primitive.NewObjectID(), Email: "dup@example.com"}
	err := s.CreateUser(context.Background(), &user)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestUpdateUserDuplicateEmail(t *testing.T) {
	s := New()
	seedUser(t, s, "taken@example.com", models.RoleStudent)
	victim := seedUser(t, s, "victim@example.com", models.RoleStudent)

	victim.Email = "taken@example.com"
	err := s.UpdateUser(context.Background(), &victim)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	got, err := s.GetUser(context.Background(), victim.ID)
	require.NoError(t, err)
	assert.Equal(t, "victim@example.com", got.Email)

	// Keeping one's own email is not a conflict.
	victim.Email = "victim@example.com"
	victim.Name = "Renamed"
	assert.NoError(t, s.UpdateUser(context.Background(), &victim))
}
