package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/yashkurhe5314/lms/internal/apperr"
	"github.com/yashkurhe5314/lms/internal/auth"
	"github.com/yashkurhe5314/lms/internal/models"
	"github.com/yashkurhe5314/lms/internal/store"
)

type AuthHandler struct {
	users  store.UserStore
	tokens *auth.TokenIssuer
	logger *slog.Logger
}

func NewAuthHandler(users store.UserStore, tokens *auth.TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Signup registers a new student account and signs them in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(r, &req); err != nil {
		apperr.Write(w, err)
		return
	}
	if err := checkPayload(req); err != nil {
		apperr.Write(w, err)
		return
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
		Role:            models.RoleStudent,
		EnrolledCourses: []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		apperr.Write(w, err)
		return
	}

	token, err := h.tokens.Generate(user.ID.Hex(), string(user.Role))
	if err != nil {
		apperr.Write(w, err)
		return
	}

	h.logger.Info("user signed up", "user_id", user.ID.Hex())
	respondJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signin verifies credentials and returns a fresh bearer token.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decode(r, &req); err != nil {
		apperr.Write(w, err)
		return
	}
	if err := checkPayload(req); err != nil {
		apperr.Write(w, err)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = apperr.E(apperr.ErrUnauthenticated, "invalid email or password")
		}
		apperr.Write(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrUnauthenticated, "invalid email or password"))
		return
	}

	token, err := h.tokens.Generate(user.ID.Hex(), string(user.Role))
	if err != nil {
		apperr.Write(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}
