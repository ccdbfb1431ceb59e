// Package config provides centralized configuration management for the
// gridsight service. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern GRIDSIGHT_* for namespacing:
//
//	GRIDSIGHT_SERVER_PORT=8080
//	GRIDSIGHT_LOGGING_LEVEL=info
//	GRIDSIGHT_ANALYSIS_MAX_ROWS=100000
//	GRIDSIGHT_NARRATIVE_API_KEY=sk-...
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- URLs are properly formatted
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
