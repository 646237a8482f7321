package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/jpcadena/aws-session-management/internal/apidoc"
	"github.com/jpcadena/aws-session-management/internal/awsconn"
	"github.com/jpcadena/aws-session-management/internal/config"
	"github.com/jpcadena/aws-session-management/internal/database"
	"github.com/jpcadena/aws-session-management/internal/domain"
	"github.com/jpcadena/aws-session-management/internal/events"
	"github.com/jpcadena/aws-session-management/internal/httpapi"
	"github.com/jpcadena/aws-session-management/internal/logger"
	"github.com/jpcadena/aws-session-management/internal/server"
	"github.com/jpcadena/aws-session-management/internal/storage/dynamo"
	"github.com/jpcadena/aws-session-management/internal/storage/memory"
	pgstorage "github.com/jpcadena/aws-session-management/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr := logger.New(cfg.Env, cfg.LogLevel)
	logr.Info("starting api", "project", config.ProjectName, "env", cfg.Env)

	baseCtx := context.Background()

	var db *database.DB
	if cfg.SessionBackend == config.BackendPostgres {
		db, err = database.Connect(baseCtx, database.Options{
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
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logr.Error("error closing database", "err", cerr)
			}
		}()

		migrator := database.NewEmbeddedMigrator(db.DB, logr)
		if err := db.RunMigrations(baseCtx, migrator); err != nil {
			logr.Error("database migrations failed", "err", err)
			os.Exit(1)
		}
	}

	domainContainer, err := buildDomainContainer(baseCtx, cfg, logr, db)
	if err != nil {
		logr.Error("failed to init domain container", "err", err)
		os.Exit(1)
	}

	openapiJSON, err := apidoc.Build(cfg)
	if err != nil {
		logr.Error("failed to build api document", "err", err)
		os.Exit(1)
	}

	srv := server.New(cfg, logr)

	httpapi.Register(srv.Mux(), logr, domainContainer, openapiJSON)

	go func() {
		if err := srv.Run(); err != nil {
			logr.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server shutdown failed", "err", err)
		os.Exit(1)
	}
	logr.Info("shutdown completed")
}

func buildDomainContainer(ctx context.Context, cfg config.Config, logr *slog.Logger, db *database.DB) (domain.Container, error) {
	var opts domain.Options

	var awsCfg aws.Config
	if cfg.SessionBackend == config.BackendDynamoDB || cfg.EventsBackend == config.EventsSQS {
		var err error
		awsCfg, err = awsconn.Load(ctx, cfg)
		if err != nil {
			return domain.Container{}, err
		}
	}

	switch cfg.SessionBackend {
	case config.BackendMemory:
		logr.Info("using in-memory session store (SESSION_BACKEND=memory)")
		repo := memory.NewSessionRepository()
		opts.SessionRepo = repo
		opts.Checks = append(opts.Checks, domain.Check{Name: "memory", Fn: repo.Health})
	case config.BackendDynamoDB:
		logr.Info("using dynamodb session store (SESSION_BACKEND=dynamodb)", "table", cfg.DynamoTable)
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
			}
		})
		repo := dynamo.NewSessionRepository(client, cfg.DynamoTable, logr)
		opts.SessionRepo = repo
		opts.Checks = append(opts.Checks, domain.Check{Name: "dynamodb", Fn: repo.Health})
	case config.BackendPostgres:
		if db == nil {
			return domain.Container{}, fmt.Errorf("postgres backend requires database connection")
		}
		logr.Info("using postgres session store (SESSION_BACKEND=postgres)")
		repo := pgstorage.NewSessionRepository(db.DB)
		opts.SessionRepo = repo
		opts.Checks = append(opts.Checks, domain.Check{Name: "postgres", Fn: repo.Health})
	default:
		return domain.Container{}, fmt.Errorf("unsupported session backend: %s", cfg.SessionBackend)
	}

	if cfg.EventsBackend == config.EventsSQS {
		logr.Info("publishing session events to sqs", "queue_url", cfg.SQSQueueURL)
		publisher := events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL, cfg.AWSQueueName, logr)
		opts.Publisher = publisher
		opts.Checks = append(opts.Checks, domain.Check{Name: "sqs", Fn: publisher.Health})
	}

	return domain.New(opts), nil
}
