package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	CORS     CORSConfig
	MQTT     MQTTConfig
	Influx   InfluxConfig
	Telegram TelegramConfig
	Identity IdentityConfig
	Policy   PolicyConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins string
}

type MQTTConfig struct {
	URL         string
	StatusTopic string
	RFIDTopic   string
	TelemTopic  string
	MetricsAddr string
}

// InfluxConfig is optional; an empty URL disables raw telemetry writes.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// TelegramConfig is optional; an empty token means notifications are no-ops.
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

type IdentityConfig struct {
	BaseURL   string
	SecretKey string
}

// PolicyConfig holds the payout and transfer amounts. These are policy
// constants, not values derived from bin size or weight.
type PolicyConfig struct {
	PayoutAmount         float64
	TransferAmount       float64
	EnforceCustomerFloor bool
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	jwtExpiry, err := getIntEnv("JWT_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	chatID, err := getInt64Env("TELEGRAM_CHAT_ID", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}

	payout, err := getFloatEnv("PAYOUT_AMOUNT", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYOUT_AMOUNT: %w", err)
	}

	transfer, err := getFloatEnv("TRANSFER_AMOUNT", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSFER_AMOUNT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "wastewhirl"),
			Password: getEnv("DB_PASSWORD", "wastewhirl_dev_password"),
			Name:     getEnv("DB_NAME", "wastewhirl"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
			ExpiryHours: jwtExpiry,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		MQTT: MQTTConfig{
			URL:         getEnv("MQTT_URL", "tcp://localhost:1883"),
			StatusTopic: getEnv("MQTT_STATUS_TOPIC", "waste/bins/+/status"),
			RFIDTopic:   getEnv("MQTT_RFID_TOPIC", "waste/bins/+/rfid"),
			TelemTopic:  getEnv("MQTT_TELEM_TOPIC", "waste/bins/+/telemetry"),
			MetricsAddr: getEnv("METRICS_ADDR", ":8081"),
		},
		Influx: InfluxConfig{
			URL:    getEnv("INFLUX_URL", ""),
			Token:  getEnv("INFLUX_TOKEN", ""),
			Org:    getEnv("INFLUX_ORG", "wastewhirl"),
			Bucket: getEnv("INFLUX_BUCKET", "bin_telemetry"),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   chatID,
		},
		Identity: IdentityConfig{
			BaseURL:   getEnv("CLERK_API_URL", "https://api.clerk.com"),
			SecretKey: getEnv("CLERK_SECRET_KEY", ""),
		},
		Policy: PolicyConfig{
			PayoutAmount:         payout,
			TransferAmount:       transfer,
			EnforceCustomerFloor: getEnv("ENFORCE_CUSTOMER_FLOOR", "false") == "true",
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getInt64Env(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
