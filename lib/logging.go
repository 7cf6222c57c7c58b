package lib

import (
	"io"
	"strings"

	"github.com/friendsofgo/errors"
	"github.com/sirupsen/logrus"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

func NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.WarnLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger
}

// ConfigureLogger applies the --log-level and --log-format flags
func ConfigureLogger(logger *logrus.Logger, level, format string) error {
	if level != "" {
		parsedLevel, err := logrus.ParseLevel(level)
		if err != nil {
			return errors.Wrap(err, "invalid log level")
		}
		logger.SetLevel(parsedLevel)
	}

	switch strings.ToLower(format) {
	case "", LogFormatText:
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case LogFormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("invalid log format %q: must be %q or %q", format, LogFormatText, LogFormatJSON)
	}

	return nil
}
