package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds process-wide settings read from the environment
type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	HTTPPort      string
	LogLevel      string

	JWTSecret string
	TokenTTL  time.Duration

	// SessionTTL bounds how long an idle intake session survives in Redis
	SessionTTL time.Duration
	// ComplaintTTL bounds how long a filed complaint stays trackable
	ComplaintTTL time.Duration

	CatalogPath string
	CORS        CORSConfig
	AI          *AIConfig
}

// CORSConfig configures the CORS middleware
type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// Load reads configuration from environment variables, falling back to defaults
func Load() *Config {
	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "grievance"),
		RedisAddr:     redisAddr(getEnv("REDIS_URI", "localhost:6379")),
		HTTPPort:      getEnv("PORT", "5000"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 24*time.Hour),
		SessionTTL:    getEnvDuration("SESSION_TTL", 2*time.Hour),
		ComplaintTTL:  getEnvDuration("COMPLAINT_TTL", 30*24*time.Hour),
		CatalogPath:   os.Getenv("CATALOG_PATH"),
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, PATCH, DELETE, OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type, Authorization"),
		},
		AI: DefaultAIConfig(),
	}
}

// AIConfig holds settings for the generative-language classifier
type AIConfig struct {
	APIKey    string `json:"-"` // Never serialize
	Model     string `json:"model"`
	TimeoutMS int    `json:"timeoutMs"`
}

// DefaultAIConfig returns the classifier configuration from the environment
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:    os.Getenv("GEMINI_API_KEY"),
		Model:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		TimeoutMS: getEnvInt("GEMINI_TIMEOUT_MS", 10000),
	}
}

// IsEnabled returns true if the classifier API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// Timeout returns the per-call classifier timeout
func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// redisAddr strips a redis:// scheme if present
func redisAddr(v string) string {
	if len(v) > 8 && v[:8] == "redis://" {
		return v[8:]
	}
	return v
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
