package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"colors-app-go/pkg/logger"
)

type Config struct {
	HTTPPort    string
	Env         string
	CORSOrigins []string
	DB          DBConfig
	Supabase    SupabaseConfig
	Nudge       NudgeConfig
	Push        PushConfig
	Redis       RedisConfig
	Avatars     AvatarsConfig
	RateLimit   RateLimitConfig
	GroupCache  time.Duration
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type SupabaseConfig struct {
	URL            string
	PublishableKey string
	JWTSecret      string
	AuthTimeout    time.Duration
	SkipAuth       bool
	MockUserID     string
	MockUserPhone  string
}

// NudgeConfig drives the daily random-time nudges. Window times are local
// wall-clock "HH:MM" values applied in each user's timezone.
type NudgeConfig struct {
	WindowStart  string
	WindowEnd    string
	FunctionsKey string
	CronEnabled  bool
	AssignCron   string
	DispatchCron string
	LockTTL      time.Duration
}

type PushConfig struct {
	URL         string
	AccessToken string
	Timeout     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AvatarsConfig struct {
	Bucket     string
	Region     string
	Prefix     string
	PresignTTL time.Duration
}

type RateLimitConfig struct {
	SupportPerMinute int
	SupportBurst     int
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8081", "http://localhost:19006"}),
		GroupCache:  getEnvDuration("GROUP_CACHE_TTL", time.Minute),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "colors"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			PublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", getEnv("EXPO_PUBLIC_SUPABASE_ANON_KEY", "")),
			JWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
			AuthTimeout:    getEnvDuration("SUPABASE_AUTH_TIMEOUT", 5*time.Second),
			SkipAuth:       getEnvBool("AUTH_SKIP", false),
			MockUserID:     getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserPhone:  getEnv("AUTH_MOCK_USER_PHONE", "+15550000001"),
		},
		Nudge: NudgeConfig{
			WindowStart:  getEnv("NUDGE_WINDOW_START", "10:00"),
			WindowEnd:    getEnv("NUDGE_WINDOW_END", "20:00"),
			FunctionsKey: getEnv("FUNCTIONS_KEY", ""),
			CronEnabled:  getEnvBool("NUDGE_CRON_ENABLED", false),
			AssignCron:   getEnv("NUDGE_ASSIGN_CRON", "*/30 * * * *"),
			DispatchCron: getEnv("NUDGE_DISPATCH_CRON", "* * * * *"),
			LockTTL:      getEnvDuration("NUDGE_LOCK_TTL", 36*time.Hour),
		},
		Push: PushConfig{
			URL:         getEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
			AccessToken: getEnv("EXPO_ACCESS_TOKEN", ""),
			Timeout:     getEnvDuration("EXPO_PUSH_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Avatars: AvatarsConfig{
			Bucket:     getEnv("AVATARS_BUCKET", ""),
			Region:     getEnv("AWS_REGION", "us-east-1"),
			Prefix:     getEnv("AVATARS_PREFIX", "avatars/"),
			PresignTTL: getEnvDuration("AVATARS_PRESIGN_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			SupportPerMinute: getEnvInt("SUPPORT_RATE_PER_MINUTE", 6),
			SupportBurst:     getEnvInt("SUPPORT_RATE_BURST", 3),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
