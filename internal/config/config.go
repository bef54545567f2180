package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Table backends
const (
	BackendGoogle   = "google"
	BackendXLSX     = "xlsx"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Image hosts
const (
	ImageHostDrive = "drive"
	ImageHostS3    = "s3"
	ImageHostLocal = "local"
)

// PDF engines
const (
	PDFEngineGofpdf      = "gofpdf"
	PDFEngineWkhtmltopdf = "wkhtmltopdf"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port          string
	Environment   string
	PublicBaseURL string

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// Tables
	TableBackend          string
	SpreadsheetID         string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	XLSXPath              string
	DatabaseURL           string
	SheetsCacheTTL        time.Duration
	SheetsCacheSize       int
	SheetsRetryAttempts   int
	SheetsRetryBase       time.Duration

	// Images
	ImageHost       string
	StoragePath     string
	DriveFolderID   string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	// Auth
	PasswordHash        string
	AdminBypassEnabled  bool
	AdminBypassEmail    string
	AdminBypassPassword string
	SeedDefaultAuditor  bool

	// Audit sessions
	SessionIdleTTL time.Duration

	// Reports
	PDFEngine         string
	ReportFontPath    string
	WkhtmltopdfPath   string
	ImageFetchTimeout time.Duration

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	ResendAPIKey string
	FromEmail    string

	// Sentry
	SentryDSN string
}

// Lookup resolves a configuration key, reporting whether it was set
type Lookup func(key string) (string, bool)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads configuration through lookup. The CLI passes a
// viper-backed lookup so config files and flags feed the same keys.
func LoadFrom(lookup Lookup) (*Config, error) {
	e := env{lookup: lookup}
	environment := e.getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Port:                  e.getEnv("PORT", "8080"),
		Environment:           environment,
		PublicBaseURL:         strings.TrimRight(e.getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		JWTSecret:             e.getEnv("JWT_SECRET", ""),
		JWTExpirationHours:    e.getEnvAsInt("JWT_EXPIRATION_HOURS", 12),
		TableBackend:          strings.ToLower(e.getEnv("TABLE_BACKEND", BackendXLSX)),
		SpreadsheetID:         e.getEnv("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredentialsFile: e.getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		GoogleCredentialsJSON: e.getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		XLSXPath:              e.getEnv("XLSX_PATH", "./storage/auditnote.xlsx"),
		DatabaseURL:           e.getEnv("DATABASE_URL", ""),
		SheetsCacheTTL:        e.getEnvAsDuration("SHEETS_CACHE_TTL", 5*time.Minute),
		SheetsCacheSize:       e.getEnvAsInt("SHEETS_CACHE_SIZE", 16),
		SheetsRetryAttempts:   e.getEnvAsInt("SHEETS_RETRY_ATTEMPTS", 5),
		SheetsRetryBase:       e.getEnvAsDuration("SHEETS_RETRY_BASE", time.Second),
		ImageHost:             strings.ToLower(e.getEnv("IMAGE_HOST", ImageHostLocal)),
		StoragePath:           e.getEnv("STORAGE_PATH", "./storage"),
		DriveFolderID:         e.getEnv("DRIVE_FOLDER_ID", ""),
		S3Bucket:              e.getEnv("S3_BUCKET", ""),
		S3Region:              e.getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:            e.getEnv("S3_ENDPOINT", ""),
		S3AccessKey:           e.getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:           e.getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL:       strings.TrimRight(e.getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		PasswordHash:          strings.ToLower(e.getEnv("PASSWORD_HASH", "sha256")),
		AdminBypassEnabled:    e.getEnvAsBool("ADMIN_BYPASS_ENABLED", environment != "production"),
		AdminBypassEmail:      e.getEnv("ADMIN_BYPASS_EMAIL", "admin"),
		AdminBypassPassword:   e.getEnv("ADMIN_BYPASS_PASSWORD", "admin123"),
		SeedDefaultAuditor:    e.getEnvAsBool("SEED_DEFAULT_AUDITOR", true),
		SessionIdleTTL:        e.getEnvAsDuration("SESSION_IDLE_TTL", 12*time.Hour),
		PDFEngine:             strings.ToLower(e.getEnv("PDF_ENGINE", PDFEngineGofpdf)),
		ReportFontPath:        e.getEnv("REPORT_FONT_PATH", "./fonts/DejaVuSans.ttf"),
		WkhtmltopdfPath:       e.getEnv("WKHTMLTOPDF_PATH", ""),
		ImageFetchTimeout:     e.getEnvAsDuration("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		WorkerCount:           e.getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins:        e.getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		ResendAPIKey:          e.getEnv("RESEND_API_KEY", ""),
		FromEmail:             e.getEnv("FROM_EMAIL", ""),
		SentryDSN:             e.getEnv("SENTRY_DSN", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" && c.Environment == "production" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	switch c.TableBackend {
	case BackendGoogle:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID is required for the google table backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres table backend")
		}
	case BackendXLSX:
		if c.XLSXPath == "" {
			return fmt.Errorf("XLSX_PATH is required for the xlsx table backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown TABLE_BACKEND %q", c.TableBackend)
	}

	switch c.ImageHost {
	case ImageHostDrive:
		if c.DriveFolderID == "" {
			return fmt.Errorf("DRIVE_FOLDER_ID is required for the drive image host")
		}
	case ImageHostS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 image host")
		}
	case ImageHostLocal:
	default:
		return fmt.Errorf("unknown IMAGE_HOST %q", c.ImageHost)
	}

	if c.PDFEngine != PDFEngineGofpdf && c.PDFEngine != PDFEngineWkhtmltopdf {
		return fmt.Errorf("unknown PDF_ENGINE %q", c.PDFEngine)
	}
	if c.PasswordHash != "sha256" && c.PasswordHash != "bcrypt" {
		return fmt.Errorf("unknown PASSWORD_HASH %q", c.PasswordHash)
	}
	if c.SheetsRetryAttempts < 1 {
		c.SheetsRetryAttempts = 1
	}
	return nil
}

// UsesGoogle reports whether any component talks to Google APIs
func (c *Config) UsesGoogle() bool {
	return c.TableBackend == BackendGoogle || c.ImageHost == ImageHostDrive
}

// EmailEnabled reports whether Resend is configured
func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != "" && c.FromEmail != ""
}

type env struct {
	lookup Lookup
}

// getEnv reads an environment variable or returns a default value
func (e env) getEnv(key, defaultValue string) string {
	if value, exists := e.lookup(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func (e env) getEnvAsInt(key string, defaultValue int) int {
	valueStr := e.getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (e env) getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := e.getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds
func (e env) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := e.getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func (e env) getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := e.getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
