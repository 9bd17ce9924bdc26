// Package store is the persistence layer. Handlers and middleware depend on
// the interfaces here so tests can substitute the in-memory implementation.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yashkurhe5314/lms/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type CourseStore interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id primitive.ObjectID) error

	// Enroll adds studentID to the course's enrollment set and mirrors the
	// course into the student's enrolled-course list. The course-side write is
	// an atomic add-if-absent, so two concurrent calls for the same pair can
	// never both succeed.
	Enroll(ctx context.Context, courseID, studentID primitive.ObjectID) (*models.Enrollment, error)

	// ReconcileEnrollments repairs student-side mirrors that fell out of sync
	// with the authoritative course-side sets. Returns how many entries were
	// re-added.
	ReconcileEnrollments(ctx context.Context) (int, error)
}
