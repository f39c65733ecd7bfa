package main

import (
	"fmt"
	"strings"

	"lenabot/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	Telegram TelegramConfig `yaml:"telegram"`
	LLM      LLMConfig      `yaml:"llm"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type TelegramConfig struct {
	Token               string  `yaml:"token"`
	AdminID             int64   `yaml:"adminId"`
	UnlimitedChatIDs    []int64 `yaml:"unlimitedChatIds"`
	StartupDelaySeconds int     `yaml:"startupDelaySeconds"`
	CardNumber          string  `yaml:"cardNumber"`
	ContactLink         string  `yaml:"contactLink"`
	UnlimitedChatLink   string  `yaml:"unlimitedChatLink"`
	PersonaPath         string  `yaml:"personaPath"`
}

type LLMConfig struct {
	BaseURL        string  `yaml:"baseUrl"`
	APIKey         string  `yaml:"apiKey"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int64   `yaml:"maxTokens"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	return &cfg, nil
}
