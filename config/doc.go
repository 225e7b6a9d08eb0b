// Package config loads authkit's declarative configuration.
//
// Files are read with Viper (YAML, JSON or TOML). A .env file found next to
// the config is loaded with godotenv before environment overrides are
// applied. Overrides use the AUTHKIT_ prefix and underscore-separated paths:
//
//	AUTHKIT_AUTH_DEFAULT_SCHEME=staff
//	AUTHKIT_LOGGING_LEVEL=debug
//
// # Usage
//
//	var cfg MyConfig
//	err := config.LoadConfig("authkit", &cfg, config.WithConfigFile(path))
package config
