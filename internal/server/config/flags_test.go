package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:3001", "-h", "", "-d", "db", "-s", "secret",
				"-t", "1", "-r", "3", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-k", "k1:9092,k2:9092", "-l", "debug",
			},
			expected: &Config{
				EndpointAddrHTTP:             "127.0.0.1:3001",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				AccessTokenValidityDuration:  1 * time.Minute,
				RefreshTokenValidityDuration: 3 * time.Minute,
				S3RootUser:                   "user",
				S3RootPassword:               "password",
				S3Bucket:                     "bucket",
				S3Region:                     "us-west-1",
				S3BaseEndpoint:               "http://endpoint",
				KafkaBrokers:                 []string{"k1:9092", "k2:9092"},
				LogLevel:                     "debug",
			},
		},
		{
			name:        "non-numeric duration",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}

func TestParseFlags_IgnoresForeignFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-c", "cfg.yaml", "-x", "-s", "k"}

	c := &Config{}
	c.LoadDefaults()
	require.NotPanics(t, func() { parseFlags(c) })

	assert.Equal(t, "k", c.SecretKey)
	assert.Equal(t, ":3000", c.EndpointAddrHTTP)
}

func TestParseFlags_KeepsDurationsWhenUnset(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-r", "2"}

	c := &Config{AccessTokenValidityDuration: 30 * time.Second, RefreshTokenValidityDuration: 90 * time.Second}
	require.NotPanics(t, func() { parseFlags(c) })

	assert.Equal(t, 30*time.Second, c.AccessTokenValidityDuration)
	assert.Equal(t, 2*time.Minute, c.RefreshTokenValidityDuration)
}
