// Package config loads and validates service configuration from a YAML file,
// a .env file, and environment variables, in that order of precedence (later
// layers win).
//
// Environment variables map onto nested keys by their first underscore:
// AUTH_USERNAME -> auth.username, OPENAI_API_KEY -> openai.api_key.
package config
