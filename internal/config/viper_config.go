package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/peerberrygo/peerberry/endpoints"
)

type viperConfig struct {
	v *viper.Viper
}

var _ Config = viperConfig{}

func newViperConfig() viperConfig {
	v := viper.New()
	v.SetEnvPrefix("PEERBERRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", endpoints.BaseURL)
	v.SetDefault("app_name", "peerberry")
	v.SetDefault("log_level", "info")

	v.SetConfigName("peerberry")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	// The config file is optional; the environment alone is enough.
	_ = v.ReadInConfig()

	return viperConfig{v: v}
}

func (c viperConfig) GetEmail() string {
	return c.v.GetString("email")
}

func (c viperConfig) GetPassword() string {
	return c.v.GetString("password")
}

func (c viperConfig) GetTFASecret() string {
	return c.v.GetString("tfa_secret")
}

func (c viperConfig) GetAccessToken() string {
	return c.v.GetString("access_token")
}

func (c viperConfig) GetBaseURL() string {
	return c.v.GetString("base_url")
}

func (c viperConfig) GetAppName() string {
	return c.v.GetString("app_name")
}

func (c viperConfig) GetLogLevel() string {
	return c.v.GetString("log_level")
}
