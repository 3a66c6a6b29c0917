// Package config loads runtime configuration for the BioGuard admin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the BioGuard REST API
//	-t int      request timeout (seconds)
//
// # JSON schema
//
// The timeout uses timex.Duration, so it can be a string like "10s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "token_dir": ".bioguard",
//	  "request_timeout": "10s"
//	}
package config
