package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port      int64
		Host      string
		JwtSecret string
	}

	Redis struct {
		Host     string
		Port     string
		User     string
		Password string
		DB       int
	}

	Database struct {
		DSN string
	}

	Kafka struct {
		Broker string
		Topic  string
	}

	BlockStorage struct {
		Host      string
		Region    string
		AccessKey string
		SecretKey string
		Bucket    string
	}

	Custody struct {
		MaxOwnedWallets int
		Admin           string
		EthRpc          string
		ChainID         int64
		OperatorKey     string
	}
}

// ReadConfig reads the named config file from the working directory,
// with environment variables taking precedence.
func ReadConfig(name string) (Config, error) {
	viper.SetConfigName(name)
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("fail to read config file, err: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("fail to unmarshal config, err: %w", err)
	}
	if cfg.Custody.MaxOwnedWallets == 0 {
		cfg.Custody.MaxOwnedWallets = 10
	}
	return cfg, nil
}
