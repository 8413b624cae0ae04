// Package config loads application configuration for the review engine.
//
// Values come from built-in defaults, an optional YAML file and environment
// variables prefixed with SCRY_, in increasing order of precedence. Nested
// keys map to environment variables by replacing dots with underscores, so
// engine.srs.min_ease is read from SCRY_ENGINE_SRS_MIN_EASE.
package config
