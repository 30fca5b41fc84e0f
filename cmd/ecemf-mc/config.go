package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	iiasa "github.com/Renato-Rodrigues/ecemf-mc"
	"github.com/Renato-Rodrigues/ecemf-mc/internal/logger"
)

const (
	// DefaultConfigFileName is the name of the config file, without extension.
	DefaultConfigFileName = "ecemf-mc"
	envPrefix             = "ECEMF"
)

// Config holds the configuration of the command line tool.
// Priority: CLI flags > env vars > config file > defaults
type Config struct {
	// AuthURL is the IIASA authentication service.
	AuthURL string `mapstructure:"auth_url"`
	// Username and Password override the keyring when both are set.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	Log logger.Config `mapstructure:"log"`
}

// LoadConfig reads the configuration from cfgFile, or from the standard
// locations when cfgFile is empty. A missing config file is not an error.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, DefaultConfigFileName))
		}
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigFileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("auth_url", iiasa.DefaultAuthURL)
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)
}

// ClientConfig builds the client configuration. Credentials come from the
// config when both username and password are set, otherwise from the keyring;
// without either the connection is anonymous.
func (c *Config) ClientConfig(loadCredentials func() (*iiasa.Credentials, error)) (*iiasa.Config, error) {
	config := &iiasa.Config{AuthURL: c.AuthURL}
	if c.Username != "" && c.Password != "" {
		config.Credentials = &iiasa.Credentials{Username: c.Username, Password: c.Password}
		return config, nil
	}

	creds, err := loadCredentials()
	switch {
	case errors.Is(err, iiasa.ErrNoCredentials):
		return config, nil
	case err != nil:
		return nil, err
	}
	config.Credentials = creds
	return config, nil
}
