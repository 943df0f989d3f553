// Package environment defines the deployment stages of the service
// (development, staging, production).
//
// Parse (and Environment.UnmarshalText, used by env-tag parsers) turns the
// APP_ENV or SHIP_VENDOR_ENVIRONMENT value into an Environment. Components use
// it to pick environment-specific defaults such as the shipping vendor base URL
// or the logger preset.
package environment
