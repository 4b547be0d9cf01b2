package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/ini.v1"

	"github.com/lumenvox/go-loginit/logging/logfields"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "LUMENVOX_GO_LOGINIT__"

// ConfigValues holds the application settings consulted when logging is
// initialized.
type ConfigValues struct {
	AppName          string `ini:"app_name"`
	AppVersion       string `ini:"app_version"`
	LogConfiguration string `ini:"log_configuration"`
	LogDebug         bool   `ini:"log_debug"`
	loadedFile       string
}

var configEnvVarNames = []string{"APP_NAME", "APP_VERSION", "LOG_CONFIGURATION", "LOG_DEBUG"}

// GetConfigValues initializes a new Config instance with default values.
func GetConfigValues(iniFilepath string) (cfg *ConfigValues, err error) {

	cfg = &ConfigValues{
		// Assign default values...
		AppName:          "Go Application",
		AppVersion:       "1.0.0",
		LogConfiguration: "",
		LogDebug:         false,
	}

	err = cfg.Load(iniFilepath)

	return cfg, err
}

// Load initializes the configuration with an optional settings file.
// If `file` is an empty string, no file is loaded. Environment variables may
// be used to override any file-based or default values.
func (configValues *ConfigValues) Load(iniFilepath string) (err error) {

	if iniFilepath != "" {
		// Attempt to load the ini file
		configFromFile, err := ini.Load(iniFilepath)
		if err != nil {
			logger.Warn("failed to load settings from file",
				logfields.Path, iniFilepath,
				logfields.Error, err)
		} else {
			configValues.loadedFile = iniFilepath

			// Override defaults with ini file values
			for _, section := range configFromFile.Sections() {
				for key, value := range section.KeysHash() {
					configValues.setField(key, value)
				}
			}
		}
	}

	// Override from environment variables (these have LUMENVOX_GO_LOGINIT__ prefixes)
	for _, key := range configEnvVarNames {
		if envValue := os.Getenv(EnvPrefix + key); envValue != "" {
			configValues.setField(key, envValue)
		}
	}

	err = configValues.Validate()
	return err
}

// setField assigns value to the field named by an upper or lowercase
// snake_case key.
func (configValues *ConfigValues) setField(key string, value string) {

	// Correctly convert snake_case to TitleCase
	titleCaseKey := ""
	for _, part := range strings.Split(key, "_") {
		titleCaseKey += cases.Title(language.English).String(strings.ToLower(part))
	}

	field := reflect.ValueOf(configValues).Elem().FieldByName(titleCaseKey)
	if !field.IsValid() || !field.CanSet() {
		logger.Warn("configuration key not found in settings, ignoring", logfields.Key, key)
		return
	}

	if field.Kind() == reflect.Bool {
		field.SetBool(strings.ToLower(strings.TrimSpace(value)) == "true")
	} else {
		field.SetString(strings.TrimSpace(value))
	}
}

// GetLogConfiguration returns the path of the logging configuration file, or
// an empty string when logging should use its built-in defaults. It is safe
// to call on a nil value.
func (configValues *ConfigValues) GetLogConfiguration() string {

	if configValues == nil {
		return ""
	}
	return configValues.LogConfiguration
}

// LoadedFile returns the settings file that was applied, if any.
func (configValues *ConfigValues) LoadedFile() string {

	return configValues.loadedFile
}

// Validate checks that the configured values are usable and returns an
// error describing the first one that is not.
func (configValues *ConfigValues) Validate() (err error) {

	if configValues.LogConfiguration != "" {
		info, err := os.Stat(configValues.LogConfiguration)
		if err != nil {
			return fmt.Errorf("log_configuration: %w", err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("log_configuration: %s is not a regular file", configValues.LogConfiguration)
		}
	}

	return nil
}
