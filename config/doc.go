// Package config loads graphkit configuration from config.yml, .env files
// and the environment.
//
// Files are looked up in ./cmd/<service>/, ./config/ and the working
// directory unless given explicitly. Environment variables with the
// GRAPHKIT_ prefix override file values, so GRAPHKIT_LOADER_BATCH_SIZE
// sets loader.batch_size.
//
//	var cfg config.Config
//	if err := config.LoadConfig("graphkit", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
package config
