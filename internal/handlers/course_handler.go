package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yashkurhe5314/lms/internal/apperr"
	"github.com/yashkurhe5314/lms/internal/middleware"
	"github.com/yashkurhe5314/lms/internal/models"
	"github.com/yashkurhe5314/lms/internal/store"
)

type CourseHandler struct {
	courses store.CourseStore
	logger  *slog.Logger
}

func NewCourseHandler(courses store.CourseStore, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, logger: logger}
}

func courseID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return primitive.NilObjectID, apperr.E(apperr.ErrValidation, "invalid course id")
	}
	return id, nil
}

// ListCourses returns the full catalog. No authentication required.
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListCourses(r.Context())
	if err != nil {
		apperr.Write(w, err)
		return
	}
	respondJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	course, err := h.courses.GetCourse(r.Context(), id)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	respondJSON(w, http.StatusOK, course)
}

type createCourseRequest struct {
	Title       string             `json:"title" validate:"required"`
	Description string             `json:"description" validate:"required"`
	Duration    string             `json:"duration" validate:"required"`
	Level       models.CourseLevel `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Price       float64            `json:"price" validate:"gte=0"`
}

// CreateCourse creates a course owned by the caller. The instructor is always
// the authenticated principal; clients cannot assign courses to someone else.
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthenticated, "authentication required"))
		return
	}

	var req createCourseRequest
	if err := decodeStrict(r, &req); err != nil {
		apperr.Write(w, err)
		return
	}
	if err := checkPayload(req); err != nil {
		apperr.Write(w, err)
		return
	}

	course := &models.Course{
		ID:               primitive.NewObjectID(),
		Title:            req.Title,
		Description:      req.Description,
		Instructor:       principal.ID,
		Duration:         req.Duration,
		Level:            req.Level,
		Price:            req.Price,
		EnrolledStudents: []primitive.ObjectID{},
		CreatedAt:        time.Now(),
	}
	if err := h.courses.CreateCourse(r.Context(), course); err != nil {
		apperr.Write(w, err)
		return
	}

	h.logger.Info("course created", "course_id", course.ID.Hex(), "instructor", principal.ID.Hex())
	respondJSON(w, http.StatusCreated, course)
}

// updateCourseRequest is the allow-list for PATCH. Instructor and enrollment
// fields are deliberately absent; unknown fields are rejected at decode time.
type updateCourseRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Duration    *string             `json:"duration"`
	Level       *models.CourseLevel `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       *float64            `json:"price" validate:"omitempty,gte=0"`
}

func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthenticated, "authentication required"))
		return
	}

	id, err := courseID(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	// Existence first, ownership second; the order is part of the contract.
	course, err := h.courses.GetCourse(r.Context(), id)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if !principal.CanManage(course.Instructor) {
		apperr.Write(w, apperr.E(apperr.ErrForbidden, "not authorized to update this course"))
		return
	}

	var req updateCourseRequest
	if err := decodeStrict(r, &req); err != nil {
		apperr.Write(w, err)
		return
	}
	if err := checkPayload(req); err != nil {
		apperr.Write(w, err)
		return
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Price != nil {
		course.Price = *req.Price
	}

	if err := h.courses.UpdateCourse(r.Context(), course); err != nil {
		apperr.Write(w, err)
		return
	}
	respondJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthenticated, "authentication required"))
		return
	}

	id, err := courseID(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	course, err := h.courses.GetCourse(r.Context(), id)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if !principal.CanManage(course.Instructor) {
		apperr.Write(w, apperr.E(apperr.ErrForbidden, "not authorized to delete this course"))
		return
	}

	if err := h.courses.DeleteCourse(r.Context(), id); err != nil {
		apperr.Write(w, err)
		return
	}

	h.logger.Info("course deleted", "course_id", id.Hex(), "by", principal.ID.Hex())
	respondJSON(w, http.StatusOK, map[string]string{"message": "course deleted successfully"})
}

// Enroll joins the authenticated principal to a course. Any authenticated
// user may enroll; re-enrolling is an error, not a no-op.
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthenticated, "authentication required"))
		return
	}

	id, err := courseID(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	enrollment, err := h.courses.Enroll(r.Context(), id, principal.ID)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	h.logger.Info("student enrolled", "course_id", id.Hex(), "student_id", principal.ID.Hex())
	respondJSON(w, http.StatusOK, enrollment)
}

// Reconcile repairs enrollment mirrors on student records. Admin only.
func (h *CourseHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	repaired, err := h.courses.ReconcileEnrollments(r.Context())
	if err != nil {
		apperr.Write(w, err)
		return
	}
	h.logger.Info("enrollment mirrors reconciled", "repaired", repaired)
	respondJSON(w, http.StatusOK, map[string]int{"repaired": repaired})
}
