package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Project identity shared by logging, the ping route and the API document.
const (
	ProjectName = "aws-session-management"
	APIName     = "AWS Session Management"
	APIVersion  = "1.0"

	// APIPrefix is the base path for all versioned API routes.
	APIPrefix = "/api/v1"

	// AssetsDir is the directory served under /static and the home of the
	// images embedded in the API document.
	AssetsDir = "static"

	// NoClientFound is logged when a request carries no peer address.
	NoClientFound = "No client found on the request"
)

// Session storage backends selectable via SESSION_BACKEND.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

// Event publisher backends selectable via EVENTS_BACKEND.
const (
	EventsNone = "none"
	EventsSQS  = "sqs"
)

// Contact identifies the API maintainer in the OpenAPI document.
type Contact struct {
	Name  string
	URL   string
	Email string
}

// Config holds application configuration loaded from environment variables.
type Config struct {
	Env               string
	HTTPHost          string
	HTTPPort          int
	LogLevel          string
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration

	ServerURL         string
	ServerDescription string
	SwaggerSHAKey     string

	SessionBackend string
	EventsBackend  string

	DynamoTable    string
	DynamoEndpoint string

	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	AWSAccountID       int64
	AWSQueueName       string
	SQSQueueURL        string

	HSTSMaxAge             int
	CertTransparencyMaxAge int

	Contact *Contact

	DatabaseDriver    string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
}

const (
	defaultEnv               = "development"
	defaultHTTPHost          = "0.0.0.0"
	defaultHTTPPort          = 8080
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultSessionBackend = BackendMemory
	defaultEventsBackend  = EventsNone

	defaultDynamoTable = "UserSessions"

	defaultHSTSMaxAge             = 31536000
	defaultCertTransparencyMaxAge = 86400

	defaultDatabaseDriver    = "pgx"
	defaultDBMaxOpenConns    = 10
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = time.Hour
	defaultDBConnMaxIdleTime = 30 * time.Minute
)

const (
	awsAccessKeyLen = 20
	awsSecretKeyLen = 40
)

// awsRegionPattern matches region codes such as us-east-1 or eu-central-1.
var awsRegionPattern = regexp.MustCompile(`^[a-z]{2}-[a-z]{4,9}-\d$`)

// Load reads configuration values from the environment, applying defaults
// where necessary. A .env file in the working directory is honored when
// present.
func Load() (Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := Config{
		Env:               getEnv("APP_ENV", defaultEnv),
		HTTPHost:          getEnv("HOST", defaultHTTPHost),
		HTTPPort:          getInt("PORT", defaultHTTPPort),
		LogLevel:          os.Getenv("SERVER_LOG_LEVEL"),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		ReadHeaderTimeout: getDuration("READ_HEADER_TIMEOUT", defaultReadHeaderTimeout),

		ServerURL:         os.Getenv("SERVER_URL"),
		ServerDescription: os.Getenv("SERVER_DESCRIPTION"),
		SwaggerSHAKey:     os.Getenv("SWAGGER_SHA_KEY"),

		SessionBackend: getEnv("SESSION_BACKEND", defaultSessionBackend),
		EventsBackend:  getEnv("EVENTS_BACKEND", defaultEventsBackend),

		DynamoTable:    getEnv("DYNAMODB_TABLE", defaultDynamoTable),
		DynamoEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),

		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          os.Getenv("AWS_REGION"),
		AWSAccountID:       getInt64("AWS_ACCOUNT_ID", 0),
		AWSQueueName:       os.Getenv("AWS_QUEUE_NAME"),
		SQSQueueURL:        os.Getenv("SQS_QUEUE_URL"),

		HSTSMaxAge:             getInt("STRICT_TRANSPORT_SECURITY_MAX_AGE", defaultHSTSMaxAge),
		CertTransparencyMaxAge: getInt("CERTIFICATE_TRANSPARENCY_MAX_AGE", defaultCertTransparencyMaxAge),

		DatabaseDriver:    getEnv("DATABASE_DRIVER", defaultDatabaseDriver),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", defaultDBMaxOpenConns),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", defaultDBMaxIdleConns),
		DBConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", defaultDBConnMaxLifetime),
		DBConnMaxIdleTime: getDuration("DB_CONN_MAX_IDLE_TIME", defaultDBConnMaxIdleTime),
	}

	cfg.Contact = assembleContact()

	if net.ParseIP(cfg.HTTPHost) == nil {
		return Config{}, fmt.Errorf("HOST must be an IP address, got %q", cfg.HTTPHost)
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return Config{}, fmt.Errorf("PORT must be a valid port number, got %d", cfg.HTTPPort)
	}
	if cfg.HSTSMaxAge <= 0 {
		return Config{}, fmt.Errorf("STRICT_TRANSPORT_SECURITY_MAX_AGE must be positive")
	}
	if cfg.CertTransparencyMaxAge <= 0 {
		return Config{}, fmt.Errorf("CERTIFICATE_TRANSPARENCY_MAX_AGE must be positive")
	}

	switch cfg.SessionBackend {
	case BackendMemory:
		// no external dependencies
	case BackendDynamoDB:
		if err := validateAWSCredentials(cfg); err != nil {
			return Config{}, err
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when SESSION_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown SESSION_BACKEND value: %s", cfg.SessionBackend)
	}

	switch cfg.EventsBackend {
	case EventsNone:
	case EventsSQS:
		if err := validateAWSCredentials(cfg); err != nil {
			return Config{}, err
		}
		if cfg.AWSQueueName == "" {
			return Config{}, fmt.Errorf("AWS_QUEUE_NAME is required when EVENTS_BACKEND=sqs")
		}
		queueURL, err := assembleQueueURL(cfg)
		if err != nil {
			return Config{}, err
		}
		cfg.SQSQueueURL = queueURL
	default:
		return Config{}, fmt.Errorf("unknown EVENTS_BACKEND value: %s", cfg.EventsBackend)
	}

	return cfg, nil
}

func validateAWSCredentials(cfg Config) error {
	if len(cfg.AWSAccessKeyID) != awsAccessKeyLen {
		return fmt.Errorf("AWS_ACCESS_KEY_ID must be exactly %d characters", awsAccessKeyLen)
	}
	if len(cfg.AWSSecretAccessKey) != awsSecretKeyLen {
		return fmt.Errorf("AWS_SECRET_ACCESS_KEY must be exactly %d characters", awsSecretKeyLen)
	}
	if !awsRegionPattern.MatchString(cfg.AWSRegion) {
		return fmt.Errorf("AWS_REGION %q is not a valid region code", cfg.AWSRegion)
	}
	return nil
}

// assembleQueueURL returns the configured SQS queue URL, deriving it from the
// account id, region and queue name when SQS_QUEUE_URL is not set.
func assembleQueueURL(cfg Config) (string, error) {
	if cfg.SQSQueueURL != "" {
		parsed, err := url.Parse(cfg.SQSQueueURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return "", fmt.Errorf("SQS_QUEUE_URL %q is not a valid URL", cfg.SQSQueueURL)
		}
		return cfg.SQSQueueURL, nil
	}

	if cfg.AWSAccountID <= 0 || cfg.AWSRegion == "" || cfg.AWSQueueName == "" {
		return "", fmt.Errorf("missing necessary configuration to assemble SQS queue URL")
	}

	assembled := url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("sqs.%s.amazonaws.com", cfg.AWSRegion),
		Path:   fmt.Sprintf("/%d/%s", cfg.AWSAccountID, cfg.AWSQueueName),
	}
	return assembled.String(), nil
}

// assembleContact collects the optional CONTACT_* variables, returning nil
// when none are set.
func assembleContact() *Contact {
	contact := Contact{
		Name:  os.Getenv("CONTACT_NAME"),
		URL:   os.Getenv("CONTACT_URL"),
		Email: os.Getenv("CONTACT_EMAIL"),
	}
	if contact.Name == "" && contact.URL == "" && contact.Email == "" {
		return nil
	}
	return &contact
}

func getEnv(key string, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
