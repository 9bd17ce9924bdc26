package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yashkurhe5314/lms/internal/apperr"
	"github.com/yashkurhe5314/lms/internal/models"
)

type MongoUserStore struct {
	users   *mongo.Collection
	timeout time.Duration
}

func NewMongoUserStore(client *mongo.Client, dbName string, timeout time.Duration) *MongoUserStore {
	return &MongoUserStore{
		users:   client.Database(dbName).Collection("users"),
		timeout: timeout,
	}
}

// EnsureIndexes creates the unique email index the uniqueness checks rely
// on. Called once at startup.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating email index: %w", err)
	}
	return nil
}

func (s *MongoUserStore) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The email check and insert are not atomic, but a unique index on email
	// backstops the race with a duplicate key error.
	err := s.users.FindOne(ctx, bson.M{"email": user.Email}).Err()
	if err == nil {
		return apperr.E(apperr.ErrConflict, "email already registered")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("checking email availability: %w", err)
	}

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.E(apperr.ErrConflict, "email already registered")
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (s *MongoUserStore) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.E(apperr.ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.E(apperr.ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	return users, nil
}

func (s *MongoUserStore) UpdateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The email must not belong to anyone else; the unique index backstops
	// the race between this check and the replace.
	err := s.users.FindOne(ctx, bson.M{"email": user.Email, "_id": bson.M{"$ne": user.ID}}).Err()
	if err == nil {
		return apperr.E(apperr.ErrConflict, "email already registered")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("checking email availability: %w", err)
	}

	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.E(apperr.ErrConflict, "email already registered")
		}
		return fmt.Errorf("updating user: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.E(apperr.ErrNotFound, "user not found")
	}
	return nil
}

func (s *MongoUserStore) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.E(apperr.ErrNotFound, "user not found")
	}
	return nil
}

type MongoCourseStore struct {
	courses *mongo.Collection
	users   *mongo.Collection
	timeout time.Duration
}

func NewMongoCourseStore(client *mongo.Client, dbName string, timeout time.Duration) *MongoCourseStore {
	db := client.Database(dbName)
	return &MongoCourseStore{
		courses: db.Collection("courses"),
		users:   db.Collection("users"),
		timeout: timeout,
	}
}

func (s *MongoCourseStore) CreateCourse(ctx context.Context, course *models.Course) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.courses.InsertOne(ctx, course); err != nil {
		return fmt.Errorf("creating course: %w", err)
	}
	return nil
}

func (s *MongoCourseStore) GetCourse(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var course models.Course
	if err := s.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.E(apperr.ErrNotFound, "course not found")
		}
		return nil, fmt.Errorf("fetching course: %w", err)
	}
	return &course, nil
}

func (s *MongoCourseStore) ListCourses(ctx context.Context) ([]models.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.courses.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer cursor.Close(ctx)

	courses := []models.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("decoding courses: %w", err)
	}
	return courses, nil
}

func (s *MongoCourseStore) UpdateCourse(ctx context.Context, course *models.Course) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.courses.ReplaceOne(ctx, bson.M{"_id": course.ID}, course)
	if err != nil {
		return fmt.Errorf("updating course: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.E(apperr.ErrNotFound, "course not found")
	}
	return nil
}

func (s *MongoCourseStore) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.courses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.E(apperr.ErrNotFound, "course not found")
	}
	return nil
}

func (s *MongoCourseStore) Enroll(ctx context.Context, courseID, studentID primitive.ObjectID) (*models.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Single conditional update: matches only when the course exists and the
	// student is not yet in the set. Racing calls for the same pair can match
	// at most once.
	res, err := s.courses.UpdateOne(ctx,
		bson.M{"_id": courseID, "enrolled_students": bson.M{"$ne": studentID}},
		bson.M{"$addToSet": bson.M{"enrolled_students": studentID}},
	)
	if err != nil {
		return nil, fmt.Errorf("enrolling student: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the course is gone or the student is already in. A missing
		// course must surface as not-found, so disambiguate.
		if err := s.courses.FindOne(ctx, bson.M{"_id": courseID}).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperr.E(apperr.ErrNotFound, "course not found")
			}
			return nil, fmt.Errorf("checking course: %w", err)
		}
		return nil, apperr.E(apperr.ErrConflict, "already enrolled in this course")
	}

	// Mirror into the student's list. The course side above is authoritative;
	// if this write fails the error propagates and the mirror is repaired by
	// ReconcileEnrollments.
	if _, err := s.users.UpdateOne(ctx,
		bson.M{"_id": studentID},
		bson.M{"$addToSet": bson.M{"enrolled_courses": courseID}},
	); err != nil {
		return nil, fmt.Errorf("mirroring enrollment: %w", err)
	}

	return &models.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}, nil
}

func (s *MongoCourseStore) ReconcileEnrollments(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.courses.Find(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("listing courses: %w", err)
	}
	defer cursor.Close(ctx)

	repaired := 0
	for cursor.Next(ctx) {
		var course models.Course
		if err := cursor.Decode(&course); err != nil {
			return repaired, fmt.Errorf("decoding course: %w", err)
		}
		for _, studentID := range course.EnrolledStudents {
			res, err := s.users.UpdateOne(ctx,
				bson.M{"_id": studentID, "enrolled_courses": bson.M{"$ne": course.ID}},
				bson.M{"$addToSet": bson.M{"enrolled_courses": course.ID}},
			)
			if err != nil {
				return repaired, fmt.Errorf("repairing enrollment mirror: %w", err)
			}
			repaired += int(res.ModifiedCount)
		}
	}
	return repaired, cursor.Err()
}
