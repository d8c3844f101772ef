// SPDX-License-Identifier: GPL-3.0-only

package commons

import (
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

const (
	ServiceName = "usercred"
	LogHeader   = "${time_rfc3339} ${level} ${short_file}:${line} -"
)

var Logger = newLogger()

func newLogger() *log.Logger {
	logger := log.New(ServiceName)
	logger.SetLevel(ParseLogLevel(os.Getenv("LOG_LEVEL")))
	logger.SetHeader(LogHeader)
	return logger
}

// InitLogger re-reads LOG_LEVEL after the env file has been loaded.
func InitLogger() {
	Logger.SetLevel(ParseLogLevel(GetEnv("LOG_LEVEL")))
}

func ParseLogLevel(level string) log.Lvl {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return log.DEBUG
	case "INFO":
		return log.INFO
	case "WARN":
		return log.WARN
	case "ERROR":
		return log.ERROR
	case "OFF":
		return log.OFF
	default:
		return log.INFO
	}
}
