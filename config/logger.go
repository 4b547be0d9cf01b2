package config

import (
	"github.com/lumenvox/go-loginit/logging"
)

// logger instance used by this package. It follows the logging backend, so
// settings loaded before InitLogging still get logged.
var logger = logging.Named("config")
