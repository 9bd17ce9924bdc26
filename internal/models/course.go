package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

type Course struct {
	ID               primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title            string               `json:"title" bson:"title"`
	Description      string               `json:"description" bson:"description"`
	Instructor       primitive.ObjectID   `json:"instructor" bson:"instructor"`
	Duration         string               `json:"duration" bson:"duration"`
	Level            CourseLevel          `json:"level" bson:"level"`
	Price            float64              `json:"price" bson:"price"`
	EnrolledStudents []primitive.ObjectID `json:"enrolled_students" bson:"enrolled_students"`
	CreatedAt        time.Time            `json:"created_at" bson:"created_at"`
}
