package logging

import (
	"strings"

	"github.com/labstack/gommon/log"
)

// Header is the line prefix used by every logger created through New.
const Header = "${time_rfc3339} ${level} ${short_file}:${line} -"

// New builds a gommon logger with the given prefix and level name.
// Unknown level names fall back to INFO.
func New(prefix, level string) *log.Logger {
	logger := log.New(prefix)
	logger.SetLevel(ParseLevel(level))
	logger.SetHeader(Header)
	return logger
}

// ParseLevel maps DEBUG, INFO, WARN, ERROR and OFF onto gommon levels.
func ParseLevel(level string) log.Lvl {
	switch strings.ToUpper(strings.TrimSpace(level)) {
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

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	logger := log.New("discard")
	logger.SetLevel(log.OFF)
	return logger
}
