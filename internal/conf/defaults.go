package conf

import "github.com/spf13/viper"

// setDefaults registers default values for all known settings keys.
func setDefaults() {
	viper.SetDefault("debug", false)

	viper.SetDefault("server.baseurl", "https://api.slateboard.app/v1")
	viper.SetDefault("server.accesstoken", "")
	viper.SetDefault("server.projectid", "")
	viper.SetDefault("server.timeoutsec", 30)
	viper.SetDefault("server.ratelimitms", 100)

	viper.SetDefault("cache.path", "slateboard-cache.db")

	viper.SetDefault("stream.enabled", false)
	viper.SetDefault("stream.broker", "")
	viper.SetDefault("stream.clientid", "slateboard")
	viper.SetDefault("stream.username", "")
	viper.SetDefault("stream.password", "")
	viper.SetDefault("stream.topicprefix", "slateboard")

	viper.SetDefault("log.path", "logs")
	viper.SetDefault("log.maxsizemb", 100)
	viper.SetDefault("log.maxbackups", 3)
	viper.SetDefault("log.maxagedays", 28)
}
