package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envFile is read if present; variables already set in the process win.
var envFile = ".env"

// parseEnv overlays values from the environment. PORT becomes ":<PORT>".
func parseEnv(cfg *Config) {
	if values, err := godotenv.Read(envFile); err == nil {
		for k, v := range values {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, v)
			}
		}
	}

	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		cfg.EndpointAddrHTTP = ":" + port
	}

	setString(&cfg.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&cfg.EndpointAddrGRPC, "GRPC_ADDR")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.SecretKey, "JWT_SECRET")
	setDuration(&cfg.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	setDuration(&cfg.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
	setString(&cfg.S3RootUser, "S3_ROOT_USER")
	setString(&cfg.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&cfg.S3Bucket, "S3_BUCKET")
	setString(&cfg.S3Region, "S3_REGION")
	setString(&cfg.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&cfg.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.AdminName, "ADMIN_NAME")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setInt(&cfg.RedisDB, "REDIS_DB")
	setInt(&cfg.LoginMaxAttempts, "LOGIN_MAX_ATTEMPTS")
	setDuration(&cfg.LoginLockout, "LOGIN_LOCKOUT")
	setString(&cfg.KafkaTopic, "KAFKA_TOPIC")
	setString(&cfg.TraceEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if brokers, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.KafkaBrokers = splitList(brokers)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
