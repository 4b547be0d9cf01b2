package loginit

import (
	"github.com/lumenvox/go-loginit/config"
	"github.com/lumenvox/go-loginit/logging"
)

// InitLogging configures the process-wide logging backend from the file at
// configPath, or with the built-in defaults when configPath is empty. Only
// the first call has an effect; later calls log a warning and return.
func InitLogging(configPath string, opts ...logging.Option) error {

	return logging.InitLogging(configPath, opts...)
}

// InitLoggingFromSettings configures logging from the file named by the
// settings object. A nil settings object selects the built-in defaults.
func InitLoggingFromSettings(settings logging.SettingsProvider, opts ...logging.Option) error {

	return logging.InitLoggingFromSettings(settings, opts...)
}

// LoadSettings reads the application settings file, applying environment
// overrides. An empty path loads only defaults and environment values.
func LoadSettings(iniFilepath string) (settings *config.ConfigValues, err error) {

	return config.GetConfigValues(iniFilepath)
}
