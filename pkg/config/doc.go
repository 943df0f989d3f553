// Package config loads typed configuration from environment variables.
//
// Load reads an optional .env file with github.com/joho/godotenv and then
// parses the target struct with github.com/caarlos0/env/v11, so any struct with
// env tags can be loaded:
//
//	var cfg app.Config
//	config.MustLoad(&cfg)
//
// Options select explicit .env files, a variable prefix, or a fixed map of
// variables (handy in tests). Errors wrap ErrParsingConfig or
// ErrLoadingEnvFile for errors.Is checks.
package config
