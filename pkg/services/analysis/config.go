package analysis

import (
	"fmt"

	"github.com/spf13/viper"
)

// FileConfig is the YAML profile consumed by the CLI's --profile flag.
type FileConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

func LoadConfig(profilePath string) (*FileConfig, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse analysis config: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("analysis config %s is missing api_key", profilePath)
	}
	return &cfg, nil
}
