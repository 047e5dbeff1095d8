package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskhub/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type SMTPConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
}

type Config struct {
	Environment      string        `json:"environment"`
	ServerPort       string        `json:"server_port"`
	DBHost           string        `json:"db_host"`
	DBPort           string        `json:"db_port"`
	DBUser           string        `json:"db_user"`
	DBPassword       string        `json:"-"`
	DBName           string        `json:"db_name"`
	DBSSLMode        string        `json:"db_ssl_mode"`
	DBMaxIdleConns   int           `json:"db_max_idle_conns"`
	DBMaxOpenConns   int           `json:"db_max_open_conns"`
	JWTSecret        string        `json:"-"`
	JWTTTL           time.Duration `json:"jwt_ttl"`
	FrontendURL      string        `json:"frontend_url"`
	SMTP             SMTPConfig    `json:"smtp"`
	Redis            RedisConfig   `json:"redis"`
	RateLimitAuth    int           `json:"rate_limit_auth"`
	SentryDSN        string        `json:"-"`
	ReminderInterval time.Duration `json:"reminder_interval"`
	LogLevel         string        `json:"log_level"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func LoadConfig() error {
	cfg := Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "taskhub"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTTTL:         getEnvAsDuration("JWT_TTL", 24*time.Hour),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", "localhost"),
			Port:      getEnvAsInt("SMTP_PORT", 587),
			Username:  getEnv("SMTP_USERNAME", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			FromEmail: getEnv("SMTP_FROM_EMAIL", "no-reply@taskhub.local"),
			FromName:  getEnv("SMTP_FROM_NAME", "TaskHub"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimitAuth:    getEnvAsInt("RATE_LIMIT_AUTH", 20),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		ReminderInterval: getEnvAsDuration("REMINDER_INTERVAL", 15*time.Minute),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	// Validate required configurations
	if cfg.IsProduction() {
		if cfg.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if cfg.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required in production")
		}
	} else if cfg.JWTSecret == "" {
		cfg.JWTSecret = "development-secret"
		logrus.Warn("JWT_SECRET not set, using an insecure development secret")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}

	AppConfig = cfg
	logConfig()
	return nil
}

// InitLogging configures the global logrus logger from AppConfig.
func InitLogging() {
	level, err := logrus.ParseLevel(AppConfig.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if AppConfig.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
}

func ConnectDB() error {
	log := logrus.WithField("component", "database")
	dsn := DSN()
	log.WithField("dsn", maskPassword(dsn)).Info("Attempting to connect to database...")

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("Successfully connected to the database")

	log.Info("Starting database migration...")
	if err := models.Migrate(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Info("Database migration completed")
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	logrus.WithFields(logrus.Fields{
		"environment":       AppConfig.Environment,
		"server_port":       AppConfig.ServerPort,
		"database":          fmt.Sprintf("%s@%s:%s/%s", AppConfig.DBUser, AppConfig.DBHost, AppConfig.DBPort, AppConfig.DBName),
		"redis_enabled":     AppConfig.Redis.Enabled,
		"smtp_host":         AppConfig.SMTP.Host,
		"sentry":            AppConfig.SentryDSN != "",
		"reminder_interval": AppConfig.ReminderInterval.String(),
	}).Info("Loaded configuration")
}
