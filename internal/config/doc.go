// Package config provides centralized configuration management for the
// allocation merger service. It handles loading configuration from multiple
// sources, validation, and a type-safe API for the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. config.yaml in the working directory
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ALLOC_* for namespacing:
//
//	ALLOC_SERVER_PORT=8080
//	ALLOC_LOGGING_LEVEL=info
//	ALLOC_UPLOAD_MAX_FILES=25
//	ALLOC_SECURITY_RATE_LIMIT_ENABLED=true
package config
