package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	MediaPolicyLocked   = "locked"
	MediaPolicyEditable = "editable"

	DefaultRegionID = "reg_01J4XQEHZV04VK5KDPV6ZMDYNK"
)

type Config struct {
	AppEnv string
	Port   string

	CatalogURL        string
	CatalogTimeout    time.Duration
	CatalogMaxRetries int
	RegionID          string

	JWTSecret         string
	CookieTTL         time.Duration
	CookieSecure      bool
	ProtectedPrefixes []string
	LoginPath         string

	MaxUploadSize int64
	StagingDir    string
	MediaPolicy   string
	UploadDriver  string
	PageSize      int
	CacheTTL      time.Duration

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	S3Region        string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	RedisURL  string
	RedisAddr string

	NATSURL string

	OriginURL string
}

var AppConfig *Config

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using system environment variables")
	}

	maxUploadSize, _ := strconv.ParseInt(os.Getenv("MAX_UPLOAD_SIZE"), 10, 64)
	if maxUploadSize <= 0 {
		maxUploadSize = 5 * 1024 * 1024
	}

	retries, err := strconv.Atoi(getEnv("CATALOG_MAX_RETRIES", "3"))
	if err != nil || retries < 0 {
		retries = 3
	}

	pageSize, err := strconv.Atoi(getEnv("PAGE_SIZE", "10"))
	if err != nil || pageSize < 1 {
		pageSize = 10
	}

	secure, _ := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))

	policy := strings.ToLower(getEnv("STAGED_MEDIA_POLICY", MediaPolicyLocked))
	if policy != MediaPolicyEditable {
		policy = MediaPolicyLocked
	}

	AppConfig = &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("APP_PORT", getEnv("PORT", "8082")),

		CatalogURL:        strings.TrimSuffix(getEnv("CATALOG_URL", "http://localhost:9000"), "/"),
		CatalogTimeout:    getDuration("CATALOG_TIMEOUT", 10*time.Second),
		CatalogMaxRetries: retries,
		RegionID:          getEnv("REGION_ID", DefaultRegionID),

		JWTSecret:         getEnv("JWT_SECRET", "secret"),
		CookieTTL:         getDuration("COOKIE_TTL", 7*24*time.Hour),
		CookieSecure:      secure,
		ProtectedPrefixes: splitList(getEnv("PROTECTED_PREFIXES", "/dashboard,/profile")),
		LoginPath:         getEnv("LOGIN_PATH", "/login"),

		MaxUploadSize: maxUploadSize,
		StagingDir:    getEnv("STAGING_DIR", "./uploads/staging"),
		MediaPolicy:   policy,
		UploadDriver:  strings.ToLower(getEnv("UPLOAD_DRIVER", "catalog")),
		PageSize:      pageSize,
		CacheTTL:      getDuration("CACHE_TTL", 5*time.Minute),

		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "products"),

		S3Region:        os.Getenv("S3_REGION"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Prefix:        getEnv("S3_PREFIX", "uploads"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "catalog_admin"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		RedisURL:  os.Getenv("REDIS_URL"),
		RedisAddr: os.Getenv("REDIS_ADDR"),

		NATSURL: os.Getenv("NATS_URL"),

		OriginURL: os.Getenv("ORIGIN_URL"),
	}

	logrus.WithFields(logrus.Fields{
		"env":          AppConfig.AppEnv,
		"port":         AppConfig.Port,
		"catalog_url":  AppConfig.CatalogURL,
		"upload":       AppConfig.UploadDriver,
		"media_policy": AppConfig.MediaPolicy,
	}).Info("Configuration loaded")

	return AppConfig
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HasDatabase reports whether Postgres settings were provided. Without them
// drafts are kept in memory.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != "" || c.DBHost != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != "" || c.RedisAddr != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logrus.WithField("key", key).Warnf("invalid duration %q, using %s", raw, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
