package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/faceval/internal/constants"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	Embedding  EmbeddingConfig
	Database   DatabaseConfig
	Output     OutputConfig
	LogLevel   string
	Thresholds ThresholdsConfig
}

type EmbeddingConfig struct {
	URL   string // defaults to http://localhost:8000
	Model string // defaults to R100_Glint360K
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL, the gallery stays in memory when empty
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type OutputConfig struct {
	Dir string // directory for rendered comparisons (default temp)
}

type ThresholdsConfig struct {
	Metrics   map[string]float64 `yaml:"metrics"`
	Mode      string             `yaml:"mode"`
	Detection DetectionDefaults  `yaml:"detection"`
}

type DetectionDefaults struct {
	IoUThreshold float64 `yaml:"iou_threshold"`
	Format       string  `yaml:"format"`
	NumClasses   int     `yaml:"num_classes"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable, falling back to defaultVal when unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// DefaultThresholds returns the embedded per-metric defaults.
func DefaultThresholds() ThresholdsConfig {
	var t ThresholdsConfig
	if err := yaml.Unmarshal(thresholdsYAML, &t); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}
	return t
}

func Load() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			URL:   os.Getenv("EMBEDDING_URL"),
			Model: os.Getenv("EMBEDDING_MODEL"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Output: OutputConfig{
			Dir: envString("FACEVAL_OUTPUT_DIR", constants.DefaultOutputDir),
		},
		LogLevel:   envString("FACEVAL_LOG_LEVEL", "info"),
		Thresholds: DefaultThresholds(),
	}
}

// Threshold returns the default match threshold for a distance metric.
func (c *Config) Threshold(metric string) (float64, bool) {
	v, ok := c.Thresholds.Metrics[metric]
	return v, ok
}
