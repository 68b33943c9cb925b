package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Build     BuildConfig     `yaml:"build"`
	Server    ServerConfig    `yaml:"server"`
	Assets    AssetsConfig    `yaml:"assets"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WorldConfig содержит размеры мира и генерация рельефа
type WorldConfig struct {
	Width    int   `yaml:"width"`
	Height   int   `yaml:"height"`
	TileSize int   `yaml:"tile_size"`
	Seed     int64 `yaml:"seed"`
	Generate bool  `yaml:"generate"`
}

// BuildConfig задаёт темп очереди строительства и частота кадров
type BuildConfig struct {
	DrainInterval time.Duration `yaml:"drain_interval"`
	FrameInterval time.Duration `yaml:"frame_interval"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

// AssetsConfig содержит путь к YAML манифесту тайлсета.
// Пустой путь означает встроенный тайлсет
type AssetsConfig struct {
	Manifest string `yaml:"manifest"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Width:    40,
			Height:   25,
			TileSize: 32,
			Seed:     1,
			Generate: true,
		},
		Build: BuildConfig{
			DrainInterval: 50 * time.Millisecond,
			FrameInterval: 16 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4318",
			ServiceName: "base-builder",
		},
	}
}

// Validate проверяет значения, которые нельзя исправить по умолчанию
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.World.TileSize <= 0 {
		return fmt.Errorf("tile_size must be positive, got %d", c.World.TileSize)
	}
	if c.Build.DrainInterval < 0 || c.Build.FrameInterval <= 0 {
		return fmt.Errorf("invalid build intervals: drain=%s frame=%s", c.Build.DrainInterval, c.Build.FrameInterval)
	}
	return nil
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "BUILDER_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "BUILDER_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV BUILDER_CONFIG;
// если и он не задан, возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("BUILDER_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
