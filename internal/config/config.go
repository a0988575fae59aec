package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/honghai9112k/tool-java2ts/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. J2TS_BATCH_SIZE.
const EnvPrefix = "J2TS"

// Batch modes.
const (
	ModeAll    = "all"
	ModeSimple = "simple"
	ModeSmart  = "smart"
	ModeFull   = "full"
)

// Config holds all application configuration.
type Config struct {
	InputDir      string         `mapstructure:"input_dir"`
	OutputDir     string         `mapstructure:"output_dir"`
	LocationsFile string         `mapstructure:"locations_file"`
	Incremental   bool           `mapstructure:"incremental"`
	Batch         BatchConfig    `mapstructure:"batch"`
	Server        ServerConfig   `mapstructure:"server"`
	Log           LogConfig      `mapstructure:"log"`
	Tracing       TracingConfig  `mapstructure:"tracing"`
	Graph         GraphConfig    `mapstructure:"graph"`
	Vector        VectorConfig   `mapstructure:"vector"`
	Temporal      TemporalConfig `mapstructure:"temporal"`
}

type BatchConfig struct {
	Mode string `mapstructure:"mode"`
	// Size and MinSize override the mode defaults when positive.
	Size        int    `mapstructure:"size"`
	MinSize     int    `mapstructure:"min_size"`
	Concurrency int    `mapstructure:"concurrency"`
	SkipPattern string `mapstructure:"skip_pattern"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

type GraphConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type VectorConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	Dimensions int    `mapstructure:"dimensions"`
}

type TemporalConfig struct {
	Host      string `mapstructure:"host"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	switch c.Batch.Mode {
	case "", ModeAll, ModeSimple, ModeSmart, ModeFull:
	default:
		warnings = append(warnings, fmt.Sprintf("batch mode '%s' is unknown; expected all, simple, smart or full", c.Batch.Mode))
	}

	if c.Batch.Size < 0 {
		warnings = append(warnings, fmt.Sprintf("batch size %d is negative; the mode default is used", c.Batch.Size))
	}

	if c.Batch.Concurrency < 0 {
		warnings = append(warnings, fmt.Sprintf("batch concurrency %d is negative", c.Batch.Concurrency))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		warnings = append(warnings, fmt.Sprintf("tracing sample_rate %.2f is outside [0.0, 1.0]", c.Tracing.SampleRate))
	}

	if c.InputDir != "" && c.InputDir == c.OutputDir {
		warnings = append(warnings, "input_dir and output_dir are the same directory")
	}

	return warnings
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "./java-input")
	v.SetDefault("output_dir", "./ts-output")
	v.SetDefault("batch.mode", ModeAll)
	v.SetDefault("batch.concurrency", 0)
	v.SetDefault("batch.skip_pattern", "test")
	v.SetDefault("server.addr", ":3001")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("graph.uri", "bolt://localhost:7687")
	v.SetDefault("graph.username", "neo4j")
	v.SetDefault("vector.host", "localhost")
	v.SetDefault("vector.port", 6334)
	v.SetDefault("vector.collection", "j2ts_declarations")
	v.SetDefault("vector.dimensions", 256)
	v.SetDefault("temporal.host", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "j2ts")
}

// Load reads configuration from file and environment. A missing file is not
// an error: defaults and environment overrides apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !os.IsNotExist(err) && !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
		logging.Named("config").Warnw("config file not found, using defaults", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}

	for _, warning := range cfg.Validate() {
		logging.Named("config").Warnw(warning)
	}

	return &cfg, nil
}
