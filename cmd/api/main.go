package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/rs/cors"

	"github.com/yashkurhe5314/lms/internal/auth"
	"github.com/yashkurhe5314/lms/internal/config"
	"github.com/yashkurhe5314/lms/internal/database"
	"github.com/yashkurhe5314/lms/internal/routes"
	"github.com/yashkurhe5314/lms/internal/store"
	"github.com/yashkurhe5314/lms/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Connect to MongoDB
	client, err := database.ConnectMongoDB(cfg.MongoURI)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("failed to disconnect from MongoDB", "err", err)
		}
	}()

	users := store.NewMongoUserStore(client, cfg.DatabaseName, cfg.Timeout)
	if err := users.EnsureIndexes(context.Background()); err != nil {
		logger.Error("failed to create indexes", "err", err)
		os.Exit(1)
	}
	courses := store.NewMongoCourseStore(client, cfg.DatabaseName, cfg.Timeout)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	// Initialize router
	router := routes.SetupRouter(users, courses, tokens, mailer, logger)

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	// Wrap router with CORS
	handler := c.Handler(router)

	// Start server
	logger.Info("server running", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
