package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config структура конфигурации приложения
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Stripe   StripeConfig
	Platform PlatformConfig
}

// AppConfig общие настройки приложения
type AppConfig struct {
	Env      string
	LogLevel string
}

// ServerConfig конфигурация HTTP сервера
type ServerConfig struct {
	Port            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig конфигурация базы данных
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig конфигурация Redis кеша
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig конфигурация Kafka
type KafkaConfig struct {
	Brokers []string
}

// StripeConfig конфигурация Stripe
type StripeConfig struct {
	SecretKey            string
	WebhookSecret        string // секрет для прямых событий (/webhooks/stripe)
	ConnectWebhookSecret string // секрет для событий connected-аккаунтов (/webhooks/stripe/connect)
	ConnectClientID      string
	ConnectRedirectURI   string
	OnboardingRefreshURL string
	OnboardingReturnURL  string
	CheckoutSuccessURL   string
	CheckoutCancelURL    string
}

// PlatformConfig параметры платформы
type PlatformConfig struct {
	CommissionRate  float64 // доля платформы, по умолчанию 3%
	DefaultCurrency string
	SiteName        string
}

// GetDSN возвращает строку подключения к базе данных
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Load загружает конфигурацию из переменных окружения.
// Вне production дополнительно читает .env через godotenv.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// Отсутствие .env не считается ошибкой
		_ = godotenv.Load()
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "clublaunch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
		},
		Stripe: StripeConfig{
			SecretKey:            getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:        getEnv("STRIPE_WEBHOOK_SECRET", ""),
			ConnectWebhookSecret: getEnv("STRIPE_CONNECT_WEBHOOK_SECRET", ""),
			ConnectClientID:      getEnv("STRIPE_CONNECT_CLIENT_ID", ""),
			ConnectRedirectURI:   getEnv("STRIPE_CONNECT_REDIRECT_URI", ""),
			OnboardingRefreshURL: getEnv("STRIPE_ONBOARDING_REFRESH_URL", "https://ezclub.app/stripe-setup/callback?stripe_return=error"),
			OnboardingReturnURL:  getEnv("STRIPE_ONBOARDING_RETURN_URL", "https://ezclub.app/stripe-setup/callback?stripe_return=success"),
			CheckoutSuccessURL:   getEnv("STRIPE_CHECKOUT_SUCCESS_URL", "https://ezclub.app/success?sid={CHECKOUT_SESSION_ID}"),
			CheckoutCancelURL:    getEnv("STRIPE_CHECKOUT_CANCEL_URL", "https://ezclub.app/cancel"),
		},
		Platform: PlatformConfig{
			CommissionRate:  getEnvAsFloat("PLATFORM_COMMISSION_RATE", 0.03),
			DefaultCurrency: getEnv("PLATFORM_DEFAULT_CURRENCY", "usd"),
			SiteName:        getEnv("PLATFORM_SITE_NAME", "ezplatform"),
		},
	}

	if cfg.Platform.CommissionRate < 0 || cfg.Platform.CommissionRate >= 1 {
		return nil, fmt.Errorf("invalid commission rate: %f", cfg.Platform.CommissionRate)
	}

	return cfg, nil
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int или возвращает значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat получает значение переменной окружения как float64 или возвращает значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsSlice получает значение переменной окружения как список через запятую
func getEnvAsSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
