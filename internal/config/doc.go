// Package config provides centralized configuration management for the
// trip dashboard server. It handles loading configuration from multiple
// sources, validation, and path resolution relative to the executable.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of
// precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TAXI_* for namespacing:
//
//	TAXI_SERVER_PORT=8080
//	TAXI_DATASET_MONTH=2024-01
//	TAXI_DATASET_SAMPLE_SIZE=10000
//	TAXI_LOGGING_LEVEL=info
//
// # Path Management
//
// Directory paths resolve relative to the executable location, never the
// current working directory, so a deployed binary finds its data/, logs/
// and web/ directories regardless of how it was launched.
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
