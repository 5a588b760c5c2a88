package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Clinic API
	APIBaseURL          string
	APIRequestTimeout   time.Duration
	APIRetryAttempts    int
	APIBreakerFailures  int
	APIBreakerOpenDelay time.Duration

	// Local storage
	StorageBackend string
	StoragePath    string
	StoragePrefix  string
	SeedFile       string

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers  []string
	KafkaGroupID  string
	ActivityTopic string

	// Activity feed
	ActivityStore bool
	SinkPort      string

	// Gateway specific
	RateLimitRPS   int
	RateLimitBurst int
	CORSOrigin     string
}

// Load reads configuration from the environment and, when CONSOLE_CONFIG names a
// file, from that file. Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("SERVER_HOST", "127.0.0.1")
	v.SetDefault("READ_TIMEOUT", 30*time.Second)
	v.SetDefault("WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("MAX_REQUEST_BODY_BYTES", 1024*1024)

	v.SetDefault("API_BASE_URL", "http://localhost:8080/api")
	v.SetDefault("API_REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("API_RETRY_ATTEMPTS", 1)
	v.SetDefault("API_BREAKER_FAILURES", 5)
	v.SetDefault("API_BREAKER_OPEN_DELAY", 30*time.Second)

	v.SetDefault("STORAGE_BACKEND", "file")
	v.SetDefault("STORAGE_PATH", "./data/console-storage.json")
	v.SetDefault("STORAGE_PREFIX", "eyecare:")
	v.SetDefault("SEED_FILE", "")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "eyecare")
	v.SetDefault("POSTGRES_PASSWORD", "eyecare")
	v.SetDefault("POSTGRES_DB", "eyecare_console")
	v.SetDefault("POSTGRES_SSLMODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_GROUP_ID", "eyecare-activity-sink")
	v.SetDefault("ACTIVITY_TOPIC", "eyecare.activity")
	v.SetDefault("ACTIVITY_STORE", false)
	v.SetDefault("SINK_PORT", "3001")

	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("CORS_ORIGIN", "*")

	if path := os.Getenv("CONSOLE_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		ServerPort:     v.GetString("SERVER_PORT"),
		ServerHost:     v.GetString("SERVER_HOST"),
		ReadTimeout:    v.GetDuration("READ_TIMEOUT"),
		WriteTimeout:   v.GetDuration("WRITE_TIMEOUT"),
		MaxRequestBody: v.GetInt64("MAX_REQUEST_BODY_BYTES"),

		APIBaseURL:          strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		APIRequestTimeout:   v.GetDuration("API_REQUEST_TIMEOUT"),
		APIRetryAttempts:    v.GetInt("API_RETRY_ATTEMPTS"),
		APIBreakerFailures:  v.GetInt("API_BREAKER_FAILURES"),
		APIBreakerOpenDelay: v.GetDuration("API_BREAKER_OPEN_DELAY"),

		StorageBackend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
		StoragePath:    v.GetString("STORAGE_PATH"),
		StoragePrefix:  v.GetString("STORAGE_PREFIX"),
		SeedFile:       v.GetString("SEED_FILE"),

		PostgresHost:     v.GetString("POSTGRES_HOST"),
		PostgresPort:     v.GetString("POSTGRES_PORT"),
		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresDB:       v.GetString("POSTGRES_DB"),
		PostgresSSLMode:  v.GetString("POSTGRES_SSLMODE"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		KafkaBrokers:  splitList(v.GetString("KAFKA_BROKERS")),
		KafkaGroupID:  v.GetString("KAFKA_GROUP_ID"),
		ActivityTopic: v.GetString("ACTIVITY_TOPIC"),
		ActivityStore: v.GetBool("ACTIVITY_STORE"),
		SinkPort:      v.GetString("SINK_PORT"),

		RateLimitRPS:   v.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		CORSOrigin:     v.GetString("CORS_ORIGIN"),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if cfg.APIRetryAttempts < 1 {
		cfg.APIRetryAttempts = 1
	}

	return cfg, nil
}

// PostgresDSN builds the DSN consumed by the gorm postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost,
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresDB,
		c.PostgresPort,
		c.PostgresSSLMode,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
