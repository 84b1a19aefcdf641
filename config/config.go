package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/joripage/limitbook/pkg/tradefeed"
)

type TradeFeedConfig struct {
	Enabled               bool `yaml:"enabled"`
	tradefeed.KafkaConfig `yaml:",inline"`
}

type AppConfig struct {
	ServiceName string           `yaml:"service_name"`
	LogLevel    string           `yaml:"log_level"`
	BookDepth   int              `yaml:"book_depth"`
	TradeFeed   *TradeFeedConfig `yaml:"trade_feed"`
}

// Default returns the config used when no file is given.
func Default() *AppConfig {
	return &AppConfig{
		ServiceName: "limitbook",
		LogLevel:    "info",
		BookDepth:   5,
	}
}

// Load reads config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}
	if len(filePath) == 0 {
		return Default(), nil
	}

	sugar := zap.S().With("func", "config.Load", "filePath", filePath)
	sugar.Debug("Load config...")

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := Default()
	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
