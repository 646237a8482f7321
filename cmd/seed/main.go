package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jpcadena/aws-session-management/internal/awsconn"
	"github.com/jpcadena/aws-session-management/internal/config"
	"github.com/jpcadena/aws-session-management/internal/database"
	"github.com/jpcadena/aws-session-management/internal/domain/sessions"
	"github.com/jpcadena/aws-session-management/internal/logger"
	"github.com/jpcadena/aws-session-management/internal/storage/dynamo"
	pgstorage "github.com/jpcadena/aws-session-management/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog := logger.New("development", "info")
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr := logger.New(cfg.Env, cfg.LogLevel)

	if cfg.SessionBackend == config.BackendMemory {
		logr.Error("seed command requires SESSION_BACKEND=postgres or SESSION_BACKEND=dynamodb")
		os.Exit(1)
	}

	ctx := context.Background()

	var repo sessions.Repository
	switch cfg.SessionBackend {
	case config.BackendPostgres:
		db, err := database.Connect(ctx, database.Options{
			Driver:          cfg.DatabaseDriver,
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
			Logger:          logr,
		})
		if err != nil {
			logr.Error("failed to connect database", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		migrator := database.NewEmbeddedMigrator(db.DB, logr)
		if err := db.RunMigrations(ctx, migrator); err != nil {
			logr.Error("migrations failed", "err", err)
			os.Exit(1)
		}

		repo = pgstorage.NewSessionRepository(db.DB)
	case config.BackendDynamoDB:
		awsCfg, err := awsconn.Load(ctx, cfg)
		if err != nil {
			logr.Error("failed to load aws config", "err", err)
			os.Exit(1)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
			}
		})

		// The table is expected to exist; seeding does not create it.
		repo = dynamo.NewSessionRepository(client, cfg.DynamoTable, logr)
	}

	sampleSessions := []sessions.Session{
		{UserID: "0b4f9d2e-9b1f-4c83-a1e4-5f0a4d2b7c11", LastAction: "login"},
		{UserID: "6c2d81aa-3f45-4e0b-b6d8-19c7e5a4f302", LastAction: "view_dashboard"},
		{UserID: "e91a7f55-88c0-4a21-9d36-b2f04c6d8e73", LastAction: "logout"},
	}

	seeded := make([]sessions.Session, 0, len(sampleSessions))
	for _, s := range sampleSessions {
		saved, err := repo.Update(ctx, s.UserID, s.LastAction)
		if err != nil {
			logr.Error("failed to seed session", "user_id", s.UserID, "err", err)
			os.Exit(1)
		}
		logr.Info("seeded session", "user_id", saved.UserID, "last_action", saved.LastAction)
		seeded = append(seeded, saved)
	}

	for _, s := range seeded {
		fmt.Printf("Session: %s (%s)\n", s.UserID, s.LastAction)
	}

	logr.Info("seed complete")
}
