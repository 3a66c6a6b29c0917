package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-yaml/yaml"

	"github.com/dmitrijs2005/bioguard/internal/flagx"
	"github.com/dmitrijs2005/bioguard/internal/timex"
)

// FileConfig is the on-disk shape of the config file. Durations accept both
// "15m" style strings and integer nanoseconds. Only fields present in the
// file are applied.
type FileConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	MaxPhotoBytes                int64          `json:"max_photo_bytes" yaml:"max_photo_bytes"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	AdminEmail                   string         `json:"admin_email" yaml:"admin_email"`
	AdminPassword                string         `json:"admin_password" yaml:"admin_password"`
	AdminName                    string         `json:"admin_name" yaml:"admin_name"`
	RedisAddr                    string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword                string         `json:"redis_password" yaml:"redis_password"`
	RedisDB                      int            `json:"redis_db" yaml:"redis_db"`
	LoginMaxAttempts             int            `json:"login_max_attempts" yaml:"login_max_attempts"`
	LoginLockout                 timex.Duration `json:"login_lockout" yaml:"login_lockout"`
	KafkaBrokers                 []string       `json:"kafka_brokers" yaml:"kafka_brokers"`
	KafkaTopic                   string         `json:"kafka_topic" yaml:"kafka_topic"`
	TraceEndpoint                string         `json:"trace_endpoint" yaml:"trace_endpoint"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config. Files ending in .yaml or .yml
// are decoded as YAML, anything else as JSON. An unreadable or malformed
// file panics: the server must not start half-configured.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	str(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	str(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	str(&c.DatabaseDSN, fc.DatabaseDSN)
	str(&c.SecretKey, fc.SecretKey)
	str(&c.S3RootUser, fc.S3RootUser)
	str(&c.S3RootPassword, fc.S3RootPassword)
	str(&c.S3Bucket, fc.S3Bucket)
	str(&c.S3Region, fc.S3Region)
	str(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	str(&c.AdminEmail, fc.AdminEmail)
	str(&c.AdminPassword, fc.AdminPassword)
	str(&c.AdminName, fc.AdminName)
	str(&c.RedisAddr, fc.RedisAddr)
	str(&c.RedisPassword, fc.RedisPassword)
	str(&c.KafkaTopic, fc.KafkaTopic)
	str(&c.TraceEndpoint, fc.TraceEndpoint)
	str(&c.LogLevel, fc.LogLevel)

	if fc.AccessTokenValidityDuration.Duration > 0 {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.RefreshTokenValidityDuration.Duration > 0 {
		c.RefreshTokenValidityDuration = fc.RefreshTokenValidityDuration.Duration
	}
	if fc.LoginLockout.Duration > 0 {
		c.LoginLockout = fc.LoginLockout.Duration
	}
	if fc.BcryptCost > 0 {
		c.BcryptCost = fc.BcryptCost
	}
	if fc.MaxPhotoBytes > 0 {
		c.MaxPhotoBytes = fc.MaxPhotoBytes
	}
	if fc.RedisDB > 0 {
		c.RedisDB = fc.RedisDB
	}
	if fc.LoginMaxAttempts > 0 {
		c.LoginMaxAttempts = fc.LoginMaxAttempts
	}
	if len(fc.KafkaBrokers) > 0 {
		c.KafkaBrokers = fc.KafkaBrokers
	}
}
