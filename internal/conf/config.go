// Package conf handles loading and accessing application settings.
package conf

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// ServerSettings holds connection settings for the remote project API.
type ServerSettings struct {
	BaseURL     string // Base URL of the project API, e.g. https://api.example.com
	AccessToken string // Bearer token for authenticated requests
	ProjectID   string // Default project to operate on
	TimeoutSec  int    // Request timeout in seconds
	RateLimitMS int    // Minimum interval between requests in milliseconds
}

// CacheSettings holds settings for the local persistent cache.
type CacheSettings struct {
	Path string // Path to the sqlite cache database
}

// StreamSettings holds settings for the realtime event stream.
type StreamSettings struct {
	Enabled     bool
	Broker      string // MQTT broker URL, e.g. tcp://broker:1883
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string // Topic prefix, project id is appended
}

// LogSettings holds file logging settings shared by service loggers.
type LogSettings struct {
	Path       string // Directory for service log files
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Settings is the root configuration structure.
type Settings struct {
	Debug  bool
	Server ServerSettings
	Cache  CacheSettings
	Stream StreamSettings
	Log    LogSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configuration from file and environment and stores the result
// as the global settings instance. Missing config files are not an error;
// defaults and environment variables still apply.
func Load() (*Settings, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/slateboard")
	viper.SetEnvPrefix("SLATEBOARD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings := &Settings{
		Debug: viper.GetBool("debug"),
		Server: ServerSettings{
			BaseURL:     viper.GetString("server.baseurl"),
			AccessToken: viper.GetString("server.accesstoken"),
			ProjectID:   viper.GetString("server.projectid"),
			TimeoutSec:  viper.GetInt("server.timeoutsec"),
			RateLimitMS: viper.GetInt("server.ratelimitms"),
		},
		Cache: CacheSettings{
			Path: viper.GetString("cache.path"),
		},
		Stream: StreamSettings{
			Enabled:     viper.GetBool("stream.enabled"),
			Broker:      viper.GetString("stream.broker"),
			ClientID:    viper.GetString("stream.clientid"),
			Username:    viper.GetString("stream.username"),
			Password:    viper.GetString("stream.password"),
			TopicPrefix: viper.GetString("stream.topicprefix"),
		},
		Log: LogSettings{
			Path:       viper.GetString("log.path"),
			MaxSizeMB:  viper.GetInt("log.maxsizemb"),
			MaxBackups: viper.GetInt("log.maxbackups"),
			MaxAgeDays: viper.GetInt("log.maxagedays"),
		},
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

// Setting returns the global settings instance, or nil if Load has not run.
func Setting() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SetForTest replaces the global settings instance. Intended for tests only.
func SetForTest(s *Settings) {
	settingsMutex.Lock()
	settingsInstance = s
	settingsMutex.Unlock()
}
