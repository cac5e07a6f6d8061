package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/objectstore"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

const devJWTSecret = "local-dev-secret"

type Config struct {
	Env             string
	Port            string
	ShutdownTimeout time.Duration

	StoreDriver string
	DBUser      string
	DBPassword  string
	DBHost      string
	DBName      string

	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	ResetURL      string

	AllowedOrigins []string

	// Object storage for profile images
	ObjectBackend string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	PublicBaseURL string
	UploadDir     string
	MaxUploadMB   int
}

type StorageConfig struct {
	Driver   string
	User     string
	Password string
	Host     string
	Name     string
}

// LoadConfig reads the environment, after loading a .env file when one is
// present in the working directory.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	var errs []error

	duration := func(key string, def time.Duration) time.Duration {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return d
	}

	maxUpload := 5
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_UPLOAD_MB: %w", err))
		} else {
			maxUpload = n
		}
	}

	cfg := &Config{
		Env:  getenv("APP_ENV", EnvLocal),
		Port: getenv("PORT", "8080"),

		StoreDriver: getenv("STORE_DRIVER", DriverMySQL),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBHost:      getenv("DB_HOST", "localhost:3306"),
		DBName:      os.Getenv("DB_NAME"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      duration("TOKEN_TTL", 72*time.Hour),
		ResetTokenTTL: duration("RESET_TOKEN_TTL", time.Hour),
		ResetURL:      getenv("RESET_URL", "http://localhost:3000/reset"),

		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),

		ObjectBackend:   getenv("OBJECT_BACKEND", "dir"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        getenv("S3_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		PublicBaseURL:   os.Getenv("PUBLIC_BASE_URL"),
		UploadDir:       getenv("UPLOAD_DIR", "./uploads"),
		MaxUploadMB:     maxUpload,
		ShutdownTimeout: duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.JWTSecret == "" && cfg.Env == EnvLocal {
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.PublicBaseURL == "" && cfg.ObjectBackend == "dir" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port + "/uploads"
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, prod, got %q", c.Env))
	}

	switch c.StoreDriver {
	case DriverMemory:
		if c.Env == EnvProd {
			errs = append(errs, errors.New("STORE_DRIVER=memory is not allowed in prod"))
		}
	case DriverMySQL:
		if c.DBUser == "" || c.DBName == "" {
			errs = append(errs, errors.New("DB_USER and DB_NAME are required for the mysql store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Env == EnvProd && c.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in prod"))
	}
	if c.TokenTTL <= 0 || c.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}

	switch c.ObjectBackend {
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 backend"))
		}
	case "dir":
		if c.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required for the dir backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown OBJECT_BACKEND %q", c.ObjectBackend))
	}

	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}

	return errors.Join(errs...)
}

// StorageConfig returns the record store settings.
func (c *Config) StorageConfig() StorageConfig {
	return StorageConfig{
		Driver:   c.StoreDriver,
		User:     c.DBUser,
		Password: c.DBPassword,
		Host:     c.DBHost,
		Name:     c.DBName,
	}
}

// ObjectStoreConfig returns the blob storage settings.
func (c *Config) ObjectStoreConfig() objectstore.Config {
	return objectstore.Config{
		Backend:       c.ObjectBackend,
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		Endpoint:      c.S3Endpoint,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		PublicBaseURL: c.PublicBaseURL,
		Dir:           c.UploadDir,
	}
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
