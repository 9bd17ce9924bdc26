// Command createadmin bootstraps an admin account. It is idempotent: running
// it again with an existing email is a no-op.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/yashkurhe5314/lms/internal/apperr"
	"github.com/yashkurhe5314/lms/internal/config"
	"github.com/yashkurhe5314/lms/internal/database"
	"github.com/yashkurhe5314/lms/internal/models"
	"github.com/yashkurhe5314/lms/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	email := "admin@lms.local"
	password := "admin123"
	name := "Admin User"
	args := os.Args[1:]
	if len(args) > 0 {
		email = args[0]
	}
	if len(args) > 1 {
		password = args[1]
	}
	if len(args) > 2 {
		name = args[2]
	}

	cfg := config.LoadConfig()
	client, err := database.ConnectMongoDB(cfg.MongoURI)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "err", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	users := store.NewMongoUserStore(client, cfg.DatabaseName, cfg.Timeout)

	ctx := context.Background()
	if err := users.EnsureIndexes(ctx); err != nil {
		logger.Error("failed to create indexes", "err", err)
		os.Exit(1)
	}
	if _, err := users.GetUserByEmail(ctx, email); err == nil {
		logger.Info("admin user already exists", "email", email)
		return
	} else if !errors.Is(err, apperr.ErrNotFound) {
		logger.Error("failed to check existing admin", "err", err)
		os.Exit(1)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", "err", err)
		os.Exit(1)
	}

	now := time.Now()
	admin := &models.User{
		ID:              primitive.NewObjectID(),
		Name:            name,
		Email:           email,
		Password:        string(hashed),
		Role:            models.RoleAdmin,
		EnrolledCourses: []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := users.CreateUser(ctx, admin); err != nil {
		logger.Error("failed to create admin user", "err", err)
		os.Exit(1)
	}

	logger.Info("admin user created", "email", email, "name", name)
}
