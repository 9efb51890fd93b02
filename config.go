package wholefile

import (
	"github.com/spf13/viper"
)

func loadConfig() {
	viper.SetConfigName("wholefilerc")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.wholefile")

	setupDefaults()

	viper.ReadInConfig()

	viper.SetEnvPrefix("wholefile")
	viper.AutomaticEnv()
}

func setupDefaults() {
	defaultSettings := map[string]interface{}{
		"stage_name":       PluginName,
		"verbose":          false,
		"progress":         true,
		"bin_size":         512 * 1024 * 1024, // Default read bin size is 512Mb
		"max_concurrency":  100,               // Maximum number of concurrent readers
		"working_location": ".",
		"output_format":    OutputFormatJSON,
		"minio_use_ssl":    true,
	}
	for key, value := range defaultSettings {
		viper.SetDefault(key, value)
	}

	aliases := map[string]string{
		"verbose":          "v",
		"working_location": "o",
	}
	for key, alias := range aliases {
		viper.RegisterAlias(alias, key)
	}
}
