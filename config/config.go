// Package config loads the CLI configuration from file and environment;
// command flags override loaded values per command.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Bench holds the run defaults consumed by the bench and check commands.
type Bench struct {
	N              int   `mapstructure:"n"`
	Inc            int   `mapstructure:"inc"`
	Iters          int   `mapstructure:"iters"`
	Perf           bool  `mapstructure:"perf"`
	NormCheck      bool  `mapstructure:"norm_check"`
	MemQuery       bool  `mapstructure:"mem_query"`
	Profile        int   `mapstructure:"profile"`
	ProfileKernels bool  `mapstructure:"profile_kernels"`
	Seed           int64 `mapstructure:"seed"`
}

// Config is the full CLI configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Precision string `mapstructure:"precision"`
	Format    string `mapstructure:"format"`
	Bench     Bench  `mapstructure:"bench"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
		Precision: "d",
		Format:    "table",
		Bench: Bench{
			N:     1024,
			Inc:   1,
			Iters: 10,
			Seed:  1,
		},
	}
}

// RegisterFlags declares the persistent flags shared by every command.
func RegisterFlags(fs *pflag.FlagSet, def Config) {
	fs.String("log-level", def.LogLevel, "Log level: debug|info|warn|error")
	fs.String("log-format", def.LogFormat, "Log format: console|json")
}

// Load reads the configuration. cfgFile may be empty, in which case a
// kerncheck.yaml in the working directory is used when present.
// KERNCHECK_* environment variables override file values.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("precision", def.Precision)
	v.SetDefault("format", def.Format)
	v.SetDefault("bench.n", def.Bench.N)
	v.SetDefault("bench.inc", def.Bench.Inc)
	v.SetDefault("bench.iters", def.Bench.Iters)
	v.SetDefault("bench.perf", def.Bench.Perf)
	v.SetDefault("bench.norm_check", def.Bench.NormCheck)
	v.SetDefault("bench.mem_query", def.Bench.MemQuery)
	v.SetDefault("bench.profile", def.Bench.Profile)
	v.SetDefault("bench.profile_kernels", def.Bench.ProfileKernels)
	v.SetDefault("bench.seed", def.Bench.Seed)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("kerncheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("KERNCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %q: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
