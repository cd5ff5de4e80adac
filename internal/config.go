package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/prappser/csvdrop/internal/storage"
	"github.com/spf13/viper"
)

const DefaultConfigPath = "files/config.yaml"

type Config struct {
	Server  ServerConfig          `mapstructure:"server"`
	Log     LogConfig             `mapstructure:"log"`
	Storage storage.BackendConfig `mapstructure:"storage"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	MaxUploadSize  int      `mapstructure:"maxUploadSize"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LoadConfig reads defaults, then the YAML file at path (a missing file is not
// an error), then CSVDROP_* environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("csvdrop")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.maxUploadSize", 50*1024*1024)
	v.SetDefault("server.allowedOrigins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("storage.type", string(storage.BackendTypeLocal))
	v.SetDefault("storage.localPath", "uploads")
	v.SetDefault("storage.s3Endpoint", "")
	v.SetDefault("storage.s3Bucket", "csvdrop")
	v.SetDefault("storage.s3AccessKey", "")
	v.SetDefault("storage.s3SecretKey", "")
	v.SetDefault("storage.s3Region", "us-east-1")
	v.SetDefault("storage.s3UseSSL", true)
}
