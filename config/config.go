package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Port        string
	Env         string
	ServiceName string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBSSLMode   string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieMaxAge time.Duration

	StripeSecretKey string
	PaymentCurrency string

	CORSOrigins []string

	MealPageSize         int
	PublishTransactional bool

	AWSRegion          string
	S3Bucket           string
	CloudFrontURL      string
	SESEmail           string
	RekognitionEnabled bool
	RekognitionMinConf float64
	SNSTopicARN        string
	AMQPURL            string
	AMQPExchange       string
	RedisURL           string
	StatsCacheTTL      time.Duration
	OTLPEndpoint       string
}

// IsProduction toggles cookie security attributes.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// DSN builds the postgres connection string. DATABASE_URL wins when set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVICE_NAME", "hostel-management-server")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "hostel")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("TOKEN_TTL", "5h")
	v.SetDefault("COOKIE_MAX_AGE", "1h")
	v.SetDefault("PAYMENT_CURRENCY", "usd")
	v.SetDefault("CORS_ORIGINS", "https://hostel-management-28-01-24.netlify.app,http://localhost:5173")
	v.SetDefault("MEAL_PAGE_SIZE", 2)
	v.SetDefault("PUBLISH_TRANSACTIONAL", true)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("REKOGNITION_ENABLED", false)
	v.SetDefault("REKOGNITION_MIN_CONFIDENCE", 75.0)
	v.SetDefault("AMQP_EXCHANGE", "hostel.events")
	v.SetDefault("STATS_CACHE_TTL", "30s")
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:                 v.GetString("PORT"),
		Env:                  v.GetString("APP_ENV"),
		ServiceName:          v.GetString("SERVICE_NAME"),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		DBHost:               v.GetString("DB_HOST"),
		DBUser:               v.GetString("DB_USER"),
		DBPassword:           v.GetString("DB_PASSWORD"),
		DBName:               v.GetString("DB_NAME"),
		DBPort:               v.GetString("DB_PORT"),
		DBSSLMode:            v.GetString("DB_SSLMODE"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		TokenTTL:             v.GetDuration("TOKEN_TTL"),
		CookieMaxAge:         v.GetDuration("COOKIE_MAX_AGE"),
		StripeSecretKey:      v.GetString("STRIPE_SECRET_KEY"),
		PaymentCurrency:      v.GetString("PAYMENT_CURRENCY"),
		CORSOrigins:          splitList(v.GetString("CORS_ORIGINS")),
		MealPageSize:         v.GetInt("MEAL_PAGE_SIZE"),
		PublishTransactional: v.GetBool("PUBLISH_TRANSACTIONAL"),
		AWSRegion:            v.GetString("AWS_REGION"),
		S3Bucket:             v.GetString("S3_BUCKET"),
		CloudFrontURL:        strings.TrimRight(v.GetString("CLOUDFRONT_URL"), "/"),
		SESEmail:             v.GetString("SES_EMAIL"),
		RekognitionEnabled:   v.GetBool("REKOGNITION_ENABLED"),
		RekognitionMinConf:   v.GetFloat64("REKOGNITION_MIN_CONFIDENCE"),
		SNSTopicARN:          v.GetString("SNS_TOPIC_ARN"),
		AMQPURL:              v.GetString("AMQP_URL"),
		AMQPExchange:         v.GetString("AMQP_EXCHANGE"),
		RedisURL:             v.GetString("REDIS_URL"),
		StatsCacheTTL:        v.GetDuration("STATS_CACHE_TTL"),
		OTLPEndpoint:         v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET not set")
	}
	if c.MealPageSize < 1 {
		return fmt.Errorf("MEAL_PAGE_SIZE must be a positive integer, got %d", c.MealPageSize)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
