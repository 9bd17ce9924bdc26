package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment is the membership fact created when a student joins a course.
// It is materialized as set membership in Course.EnrolledStudents (the
// authoritative side) and mirrored in User.EnrolledCourses.
type Enrollment struct {
	StudentID  primitive.ObjectID `json:"student_id" bson:"student_id"`
	CourseID   primitive.ObjectID `json:"course_id" bson:"course_id"`
	EnrolledAt time.Time          `json:"enrolled_at" bson:"enrolled_at"`
}
