package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
)

// DefaultEnvPrefix selects the environment variables that override config.
const DefaultEnvPrefix = "GRAPHKIT"

// FileSystem abstracts the file lookups of the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem is the FileSystem backed by the operating system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSFileSystem) LoadEnv(path string) error { return godotenv.Load(path) }

// ResolvedFiles are the files a load reads.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolveFiles returns the explicit paths when set, otherwise the first
// existing candidate of each kind.
func (r *Resolver) ResolveFiles(serviceName, configFile, envFile string) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: configFile, EnvFile: envFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(serviceName))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(serviceName))
	}
	return files
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(serviceName string) []string {
	return []string{
		"./cmd/" + serviceName + "/config.yml",
		"./cmd/" + serviceName + "/config.yaml",
		"./config/config.yml",
		"./config.yml",
	}
}

func envCandidates(serviceName string) []string {
	return []string{
		"./cmd/" + serviceName + "/.env",
		"./config/.env",
		"./.env." + serviceName,
		"./.env",
	}
}

type loadOptions struct {
	fs         FileSystem
	configFile string
	envFile    string
	envPrefix  string
	defaults   map[string]any
	log        *logger.Logger
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*loadOptions)

// WithFileSystem replaces the file system used for lookups.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(o *loadOptions) { o.fs = fs }
}

// WithConfigFile reads path instead of searching for config.yml.
func WithConfigFile(path string) LoaderOption {
	return func(o *loadOptions) { o.configFile = path }
}

// WithEnvFile loads path instead of searching for a .env file.
func WithEnvFile(path string) LoaderOption {
	return func(o *loadOptions) { o.envFile = path }
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(o *loadOptions) { o.envPrefix = prefix }
}

// WithDefaults registers default values by dotted key.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(o *loadOptions) { o.defaults = defaults }
}

// WithLogger reports skipped files on l.
func WithLogger(l *logger.Logger) LoaderOption {
	return func(o *loadOptions) { o.log = l }
}

// LoadConfig unmarshals configuration for serviceName into cfg. Precedence,
// lowest first: defaults, config file, .env file, environment.
// A missing file is not an error; an unreadable one is INVALID_FORMAT.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	o := loadOptions{
		fs:        OSFileSystem{},
		envPrefix: DefaultEnvPrefix,
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.WithComponent("config")

	files := (&Resolver{FileSystem: o.fs}).ResolveFiles(serviceName, o.configFile, o.envFile)

	v := viper.New()
	for k, val := range o.defaults {
		v.SetDefault(k, val)
	}

	if files.ConfigFile != "" {
		if !o.fs.Exists(files.ConfigFile) {
			log.Warn("config file not found", logger.Fields("path", files.ConfigFile))
		} else {
			v.SetConfigFile(files.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return errors.InvalidFormat(files.ConfigFile, "YAML").WithCause(err)
			}
			log.Debug("config file loaded", logger.Fields("path", files.ConfigFile))
		}
	}

	if files.EnvFile != "" && o.fs.Exists(files.EnvFile) {
		if err := o.fs.LoadEnv(files.EnvFile); err != nil {
			return errors.InvalidFormat(files.EnvFile, "KEY=value lines").WithCause(err)
		}
		log.Debug("env file loaded", logger.Fields("path", files.EnvFile))
	}

	bindEnv(v, o.envPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return errors.InvalidFormat("config for "+serviceName, "values matching the config struct").WithCause(err)
	}
	return nil
}

// bindEnv copies every PREFIX_* variable into v under each dotted key it
// may stand for.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	p := strings.ToUpper(prefix) + "_"
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, p) || len(key) == len(p) {
			continue
		}
		for _, variant := range envKeyVariants(key[len(p):]) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants lists the dotted keys an underscore separated variable
// name may stand for. Underscores are ambiguous since they both separate
// sections and appear inside keys:
//
//	LOADER_BATCH_SIZE -> [loader_batch_size loader.batch.size loader.batch_size loader_batch.size]
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(lower)
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], "_") + "." + strings.Join(parts[i:], "."))
	}
	return out
}
