package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/yashkurhe5314/lms/internal/apperr"
	"github.com/yashkurhe5314/lms/internal/models"
	"github.com/yashkurhe5314/lms/internal/store"
	"github.com/yashkurhe5314/lms/internal/utils"
)

// UserHandler is the admin-only user management surface. Role gating happens
// in the route table; handlers assume an admin principal.
type UserHandler struct {
	users  store.UserStore
	mailer *utils.Mailer
	logger *slog.Logger
}

func NewUserHandler(users store.UserStore, mailer *utils.Mailer, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, mailer: mailer, logger: logger}
}

func userID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return primitive.NilObjectID, apperr.E(apperr.ErrValidation, "invalid user id")
	}
	return id, nil
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		apperr.Write(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Name     string          `json:"name" validate:"required"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Role     models.UserRole `json:"role" validate:"omitempty,oneof=student teacher admin"`
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeStrict(r, &req); err != nil {
		apperr.Write(w, err)
		return
	}
	if err := checkPayload(req); err != nil {
		apperr.Write(w, err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleStudent
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	now := time.Now()
	user := &models.User{
		ID:              primitive.NewObjectID(),
		Name:            req.Name,
		Email:           req.Email,
		Password:        string(hashed),
		Role:            req.Role,
		EnrolledCourses: []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		apperr.Write(w, err)
		return
	}

	if h.mailer.Enabled() {
		body := fmt.Sprintf("<p>Hi %s,</p><p>An account has been created for you. Sign in with your email address to get started.</p>", user.Name)
		go func() {
			if err := h.mailer.Send(user.Email, "Welcome to the platform", body); err != nil {
				h.logger.Error("failed to send welcome email", "user_id", user.ID.Hex(), "err", err)
			}
		}()
	}

	h.logger.Info("user created", "user_id", user.ID.Hex(), "role", user.Role)
	respondJSON(w, http.StatusCreated, user)
}

// updateUserRequest is the allow-list for admin PATCH on a user. The
// enrolled-course list is owned by the enrollment path and not patchable.
type updateUserRequest struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email" validate:"omitempty,email"`
	Password *string          `json:"password" validate:"omitempty,min=8"`
	Role     *models.UserRole `json:"role" validate:"omitempty,oneof=student teacher admin"`
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	var req updateUserRequest
	if err := decodeStrict(r, &req); err != nil {
		apperr.Write(w, err)
		return
	}
	if err := checkPayload(req); err != nil {
		apperr.Write(w, err)
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			apperr.Write(w, err)
			return
		}
		user.Password = string(hashed)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	user.UpdatedAt = time.Now()

	if err := h.users.UpdateUser(r.Context(), user); err != nil {
		apperr.Write(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		apperr.Write(w, err)
		return
	}

	h.logger.Info("user deleted", "user_id", id.Hex())
	respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted successfully"})
}
