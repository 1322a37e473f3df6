package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DEVRADAR"

const defaultHTTPMinInterval = 200 * time.Millisecond

// Settings are process-level options read from the environment and an optional .env file.
type Settings struct {
	APIURL          string `mapstructure:"api_url"`
	ConfigPath      string `mapstructure:"config_path"`
	HTTPMinInterval int    `mapstructure:"http_min_interval_ms"`
	IPLocatorURL    string `mapstructure:"ip_locator_url"`
	GeocoderURL     string `mapstructure:"geocoder_url"`
	Debug           bool   `mapstructure:"debug"`
}

// RequestMinInterval returns the minimum gap between search requests.
func (s Settings) RequestMinInterval() time.Duration {
	if s.HTTPMinInterval < 0 {
		return defaultHTTPMinInterval
	}
	return time.Duration(s.HTTPMinInterval) * time.Millisecond
}

// LoadSettings reads DEVRADAR_* variables. Values in .env files fill in
// variables that are not already set.
func LoadSettings(envFiles ...string) (Settings, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", "")
	v.SetDefault("config_path", "")
	v.SetDefault("http_min_interval_ms", int(defaultHTTPMinInterval/time.Millisecond))
	v.SetDefault("ip_locator_url", "")
	v.SetDefault("geocoder_url", "")
	v.SetDefault("debug", false)

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, err
	}
	settings.APIURL = strings.TrimSpace(settings.APIURL)
	settings.ConfigPath = strings.TrimSpace(settings.ConfigPath)
	return settings, nil
}
