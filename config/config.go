// Package config loads the engine settings shared by the session and the
// experiment runner.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"mado/gamemaster"
	"mado/searcher"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Radius         int           `yaml:"radius"`
	Goroutines     int           `yaml:"goroutines"`
	Episodes       int           `yaml:"episodes"`
	Duration       time.Duration `yaml:"duration"`
	Exploration    float64       `yaml:"exploration"`
	Playouts       int           `yaml:"playouts"`
	Seed           uint64        `yaml:"seed"` // 0 draws a random base seed
	MaxNodes       int           `yaml:"max_nodes"`
	MemoryFraction float64       `yaml:"memory_fraction"`
	LogLevel       string        `yaml:"log_level"`
	OutputDir      string        `yaml:"output_dir"`
}

func Default() Config {
	return Config{
		Radius:         4,
		Goroutines:     runtime.NumCPU(),
		Duration:       time.Second,
		Exploration:    searcher.Exploration,
		Playouts:       1,
		MemoryFraction: searcher.DefaultMemoryFraction,
		LogLevel:       "info",
		OutputDir:      "experiments",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch {
	case c.Radius < gamemaster.MinRadius || c.Radius > gamemaster.MaxRadius:
		return fmt.Errorf("%w: radius %d not in [%d, %d]", ErrInvalidConfig, c.Radius, gamemaster.MinRadius, gamemaster.MaxRadius)
	case c.Goroutines < 1:
		return fmt.Errorf("%w: goroutines must be positive", ErrInvalidConfig)
	case c.Episodes <= 0 && c.Duration <= 0:
		return fmt.Errorf("%w: episodes or duration must be set", ErrInvalidConfig)
	case c.Episodes < 0 || c.Duration < 0:
		return fmt.Errorf("%w: negative search budget", ErrInvalidConfig)
	case c.Exploration <= 0:
		return fmt.Errorf("%w: exploration must be positive", ErrInvalidConfig)
	case c.Playouts < 1:
		return fmt.Errorf("%w: playouts must be positive", ErrInvalidConfig)
	case c.MaxNodes < 0:
		return fmt.Errorf("%w: max_nodes must not be negative", ErrInvalidConfig)
	case c.MemoryFraction <= 0 || c.MemoryFraction > 1:
		return fmt.Errorf("%w: memory_fraction %v not in (0, 1]", ErrInvalidConfig, c.MemoryFraction)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return level, nil
}

// SearchOptions maps the config onto searcher options.
func (c Config) SearchOptions() []searcher.Option {
	return []searcher.Option{
		searcher.WithEpisodes(c.Episodes),
		searcher.WithDuration(c.Duration),
		searcher.WithExploration(c.Exploration),
		searcher.WithPlayouts(c.Playouts),
		searcher.WithSeed(c.Seed),
		searcher.WithMaxNodes(c.MaxNodes),
		searcher.WithMemoryFraction(c.MemoryFraction),
	}
}
