package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Generation defaults
	DefaultRows        int      `mapstructure:"default_rows" yaml:"default_rows"`
	DefaultNumeric     int      `mapstructure:"default_numeric" yaml:"default_numeric"`
	DefaultCategorical int      `mapstructure:"default_categorical" yaml:"default_categorical"`
	DefaultFields      []string `mapstructure:"default_fields" yaml:"default_fields"`
	DefaultMissingRate float64  `mapstructure:"default_missing_rate" yaml:"default_missing_rate"`
	DefaultCorrelation float64  `mapstructure:"default_correlation" yaml:"default_correlation"`
	Correlate          bool     `mapstructure:"correlate" yaml:"correlate"`
	Seed               uint64   `mapstructure:"seed" yaml:"seed"`

	// Storage locations
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir"`
	ExportDir string `mapstructure:"export_dir" yaml:"export_dir"`

	// Object storage (S3 or compatible)
	S3Region    string `mapstructure:"s3_region" yaml:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint" yaml:"s3_endpoint"`
	S3PathStyle bool   `mapstructure:"s3_path_style" yaml:"s3_path_style"`

	// SQL export
	SQLBatchSize int `mapstructure:"sql_batch_size" yaml:"sql_batch_size"`
}

// Keys lists every configuration key accepted by `config set`.
var Keys = []string{
	"default_rows", "default_numeric", "default_categorical", "default_fields",
	"default_missing_rate", "default_correlation", "correlate", "seed",
	"data_dir", "export_dir", "s3_region", "s3_endpoint", "s3_path_style", "sql_batch_size",
}

// Dir returns ~/.synthtab.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".synthtab"), nil
}

// Path returns cfgFile, or ~/.synthtab/config.yaml when cfgFile is empty.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.synthtab/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads .env then .env.local from the working directory when present.
// Variables already set in the environment win.
func LoadDotEnv() {
	for _, f := range []string{".env", ".env.local"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SYNTHTAB")
	v.AutomaticEnv()

	v.SetDefault("default_rows", 1000)
	v.SetDefault("default_numeric", 3)
	v.SetDefault("default_categorical", 2)
	v.SetDefault("default_fields", []string{"name", "email"})
	v.SetDefault("default_missing_rate", 0.05)
	v.SetDefault("default_correlation", 0.7)
	v.SetDefault("correlate", true)
	v.SetDefault("seed", 0)
	v.SetDefault("data_dir", "")
	v.SetDefault("export_dir", ".")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_path_style", false)
	v.SetDefault("sql_batch_size", 500)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.DefaultFields = splitList(c.DefaultFields)
	if c.DataDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.DataDir = filepath.Join(dir, "data")
	}
	return &c, nil
}

// splitList accepts both YAML lists and a single comma-separated env value.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
