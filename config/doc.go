// Package config provides configuration loading and validation for the
// test harness.
//
// It uses Viper to merge built-in defaults, an optional config file
// (YAML, JSON or TOML), an optional .env file and HTTPTESTKIT_-prefixed
// environment variables, in that order of increasing precedence.
//
// # Usage
//
//	cfg, err := config.Load()
//	client, err := testclient.New(handler, testclient.WithConfig(cfg))
//
// Nested keys map to underscores: HTTPTESTKIT_TRACE=true enables the bind
// notice, HTTPTESTKIT_LOGGING_LEVEL=debug shows per-request logs.
package config
