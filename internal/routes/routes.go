package routes

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yashkurhe5314/lms/internal/auth"
	"github.com/yashkurhe5314/lms/internal/handlers"
	"github.com/yashkurhe5314/lms/internal/middleware"
	"github.com/yashkurhe5314/lms/internal/models"
	"github.com/yashkurhe5314/lms/internal/store"
	"github.com/yashkurhe5314/lms/internal/utils"
)

func SetupRouter(users store.UserStore, courses store.CourseStore, tokens *auth.TokenIssuer, mailer *utils.Mailer, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Server is healthy"))
	}).Methods("GET")

	authn := middleware.NewAuthenticator(tokens, users)
	authHandler := handlers.NewAuthHandler(users, tokens, logger)
	courseHandler := handlers.NewCourseHandler(courses, logger)
	userHandler := handlers.NewUserHandler(users, mailer, logger)

	api := router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	api.HandleFunc("/auth/signin", authHandler.Signin).Methods("POST")
	api.HandleFunc("/courses", courseHandler.ListCourses).Methods("GET")
	api.HandleFunc("/courses/{id}", courseHandler.GetCourse).Methods("GET")

	// Any authenticated user may enroll
	enrolled := api.NewRoute().Subrouter()
	enrolled.Use(authn.Authenticate)
	enrolled.HandleFunc("/courses/{id}/enroll", courseHandler.Enroll).Methods("POST")

	// Course authoring: coarse role gate here, ownership checked per resource
	// inside the handlers
	staff := api.NewRoute().Subrouter()
	staff.Use(authn.Authenticate, middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
	staff.HandleFunc("/courses", courseHandler.CreateCourse).Methods("POST")
	staff.HandleFunc("/courses/{id}", courseHandler.UpdateCourse).Methods("PATCH")
	staff.HandleFunc("/courses/{id}", courseHandler.DeleteCourse).Methods("DELETE")

	// Admin-only user management and maintenance
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authn.Authenticate, middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/users", userHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/users", userHandler.CreateUser).Methods("POST")
	admin.HandleFunc("/users/{id}", userHandler.UpdateUser).Methods("PATCH")
	admin.HandleFunc("/users/{id}", userHandler.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/reconcile", courseHandler.Reconcile).Methods("POST")

	return router
}
