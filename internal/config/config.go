package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

type Config struct {
	App        AppConfig        `koanf:"app"`
	Log        LogConfig        `koanf:"log"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	JWT        JWTConfig        `koanf:"jwt"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Roadmap    RoadmapConfig    `koanf:"roadmap"`
	Classifier ClassifierConfig `koanf:"classifier"`
}

type AppConfig struct {
	AppName     string `koanf:"name"`
	Environment string `koanf:"env"`
	HTTPPort    string `koanf:"http_port"`
	// Warmup builds the predictor and compositor before serving traffic.
	Warmup bool `koanf:"warmup"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type DatabaseConfig struct {
	Enabled    bool   `koanf:"enabled"`
	DBHost     string `koanf:"host"`
	DBPort     string `koanf:"port"`
	DBName     string `koanf:"name"`
	DBUser     string `koanf:"user"`
	DBPassword string `koanf:"password"`
	DBSSLMode  string `koanf:"ssl_mode"`

	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	PoolMaxConns    int32         `koanf:"max_conns"`
	PoolMinConns    int32         `koanf:"min_conns"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`
}

type RedisConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

type JWTConfig struct {
	AccessSecret    string        `koanf:"access_secret"`
	AccessExpiresIn time.Duration `koanf:"access_expires_in"`
}

type CatalogConfig struct {
	Source string `koanf:"source"`
	Path   string `koanf:"path"`
	Sheet  string `koanf:"sheet"`
}

type RoadmapConfig struct {
	Source string `koanf:"source"`
	Path   string `koanf:"path"`
}

type ClassifierConfig struct {
	Seed            int64   `koanf:"seed"`
	Trees           int     `koanf:"trees"`
	MaxDepth        int     `koanf:"max_depth"`
	MinSamplesSplit int     `koanf:"min_samples_split"`
	TestFraction    float64 `koanf:"test_fraction"`
}

var (
	errMissingRequiredConfig = errors.New("missing required configuration")
	errInvalidConfig         = errors.New("invalid configuration")
)

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			AppName:     "learning-buddy",
			Environment: "development",
			HTTPPort:    "8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			DBHost:         "localhost",
			DBPort:         "5432",
			DBSSLMode:      "disable",
			ConnectTimeout: 5 * time.Second,
			PoolMaxConns:   10,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  600 * time.Second,
		},
		JWT: JWTConfig{
			AccessExpiresIn: 15 * time.Minute,
		},
		Catalog: CatalogConfig{
			Source: SourceFile,
			Path:   "data/learning_path_skills.xlsx",
		},
		Roadmap: RoadmapConfig{
			Source: SourceFile,
			Path:   "data/roadmap_course.xlsx",
		},
		Classifier: ClassifierConfig{
			Seed:            42,
			Trees:           120,
			MaxDepth:        7,
			MinSamplesSplit: 4,
			TestFraction:    0.2,
		},
	}
}

// Load layers struct defaults, an optional YAML file and environment
// variables, in that order of precedence.
func Load() (Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit YAML path; an empty path skips the file.
func LoadFrom(path string) (Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing or invalid key at once.
func (c Config) Validate() error {
	var missing, invalid []string
	req := func(key, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
	}

	req("app.name", c.App.AppName)
	req("app.http_port", c.App.HTTPPort)

	if c.Database.Enabled {
		req("database.host", c.Database.DBHost)
		req("database.port", c.Database.DBPort)
		req("database.name", c.Database.DBName)
		req("database.user", c.Database.DBUser)
	}

	for key, src := range map[string]string{"catalog.source": c.Catalog.Source, "roadmap.source": c.Roadmap.Source} {
		switch src {
		case SourceFile, SourcePostgres:
		default:
			invalid = append(invalid, fmt.Sprintf("%s=%q", key, src))
		}
	}
	if c.Catalog.Source == SourceFile {
		req("catalog.path", c.Catalog.Path)
	}
	if c.Roadmap.Source == SourceFile {
		req("roadmap.path", c.Roadmap.Path)
	}
	if (c.Catalog.Source == SourcePostgres || c.Roadmap.Source == SourcePostgres) && !c.Database.Enabled {
		invalid = append(invalid, "postgres source requires database.enabled")
	}

	if c.Classifier.Trees <= 0 {
		invalid = append(invalid, "classifier.trees must be positive")
	}
	if c.Classifier.MaxDepth <= 0 {
		invalid = append(invalid, "classifier.max_depth must be positive")
	}
	if c.Classifier.TestFraction < 0 || c.Classifier.TestFraction >= 1 {
		invalid = append(invalid, "classifier.test_fraction must be in [0,1)")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, fmt.Sprintf("log.level=%q", c.Log.Level))
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", errMissingRequiredConfig, strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		errs = append(errs, fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(invalid, "; ")))
	}
	return errors.Join(errs...)
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		strings.TrimSpace(c.DBHost),
		strings.TrimSpace(c.DBPort),
		strings.TrimSpace(c.DBUser),
		c.DBPassword,
		strings.TrimSpace(c.DBName),
		strings.TrimSpace(c.DBSSLMode),
	)
}

func findConfigFile() string {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"app_name":   "app.name",
	"app_env":    "app.env",
	"http_port":  "app.http_port",
	"app_warmup": "app.warmup",

	"log_level":  "log.level",
	"log_format": "log.format",

	"db_enabled":            "database.enabled",
	"db_host":               "database.host",
	"db_port":               "database.port",
	"db_name":               "database.name",
	"db_user":               "database.user",
	"db_password":           "database.password",
	"db_ssl_mode":           "database.ssl_mode",
	"db_connect_timeout":    "database.connect_timeout",
	"db_max_conns":          "database.max_conns",
	"db_min_conns":          "database.min_conns",
	"db_max_conn_lifetime":  "database.max_conn_lifetime",
	"db_max_conn_idle_time": "database.max_conn_idle_time",

	"redis_enabled":  "redis.enabled",
	"redis_addr":     "redis.addr",
	"redis_password": "redis.password",
	"redis_db":       "redis.db",
	"redis_ttl":      "redis.ttl",

	"jwt_access_secret":     "jwt.access_secret",
	"jwt_access_expires_in": "jwt.access_expires_in",

	"catalog_source": "catalog.source",
	"catalog_path":   "catalog.path",
	"catalog_sheet":  "catalog.sheet",

	"roadmap_source": "roadmap.source",
	"roadmap_path":   "roadmap.path",

	"classifier_seed":              "classifier.seed",
	"classifier_trees":             "classifier.trees",
	"classifier_max_depth":         "classifier.max_depth",
	"classifier_min_samples_split": "classifier.min_samples_split",
	"classifier_test_fraction":     "classifier.test_fraction",
}

// envTransformFunc maps known variables to config keys; anything else is
// dropped so unrelated environment does not leak into the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
