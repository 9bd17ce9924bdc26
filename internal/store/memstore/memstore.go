// Package memstore is an in-memory implementation of the store interfaces,
// used by tests in place of MongoDB.
package memstore

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yashkurhe5314/lms/internal/apperr"
	"github.com/yashkurhe5314/lms/internal/models"
)

type Store struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]models.User
	courses map[primitive.ObjectID]models.Course

	// MirrorErr, when set, makes Enroll fail after the course-side write,
	// simulating a crash between the authoritative write and its mirror.
	MirrorErr error
}

func New() *Store {
	return &Store{
		users:   make(map[primitive.ObjectID]models.User),
		courses: make(map[primitive.ObjectID]models.Course),
	}
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return apperr.E(apperr.ErrConflict, "email already registered")
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperr.E(apperr.ErrNotFound, "user not found")
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, apperr.E(apperr.ErrNotFound, "user not found")
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return apperr.E(apperr.ErrNotFound, "user not found")
	}
	for id, u := range s.users {
		if id != user.ID && u.Email == user.Email {
			return apperr.E(apperr.ErrConflict, "email already registered")
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return apperr.E(apperr.ErrNotFound, "user not found")
	}
	delete(s.users, id)
	return nil
}

func (s *Store) CreateCourse(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.courses[course.ID] = *course
	return nil
}

func (s *Store) GetCourse(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses[id]
	if !ok {
		return nil, apperr.E(apperr.ErrNotFound, "course not found")
	}
	return &course, nil
}

func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses := make([]models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		courses = append(courses, c)
	}
	return courses, nil
}

func (s *Store) UpdateCourse(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[course.ID]; !ok {
		return apperr.E(apperr.ErrNotFound, "course not found")
	}
	s.courses[course.ID] = *course
	return nil
}

func (s *Store) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return apperr.E(apperr.ErrNotFound, "course not found")
	}
	delete(s.courses, id)
	return nil
}

// Enroll performs the check and both writes under the store lock, matching
// the add-if-absent semantics of the Mongo conditional update.
func (s *Store) Enroll(ctx context.Context, courseID, studentID primitive.ObjectID) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses[courseID]
	if !ok {
		return nil, apperr.E(apperr.ErrNotFound, "course not found")
	}
	for _, id := range course.EnrolledStudents {
		if id == studentID {
			return nil, apperr.E(apperr.ErrConflict, "already enrolled in this course")
		}
	}

	course.EnrolledStudents = append(course.EnrolledStudents, studentID)
	s.courses[courseID] = course

	if s.MirrorErr != nil {
		return nil, s.MirrorErr
	}
	if user, ok := s.users[studentID]; ok {
		user.EnrolledCourses = append(user.EnrolledCourses, courseID)
		s.users[studentID] = user
	}

	return &models.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}, nil
}

func (s *Store) ReconcileEnrollments(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repaired := 0
	for _, course := range s.courses {
		for _, studentID := range course.EnrolledStudents {
			user, ok := s.users[studentID]
			if !ok {
				continue
			}
			if !contains(user.EnrolledCourses, course.ID) {
				user.EnrolledCourses = append(user.EnrolledCourses, course.ID)
				s.users[studentID] = user
				repaired++
			}
		}
	}
	return repaired, nil
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
