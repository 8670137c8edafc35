package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Fields contains key-value pairs of structured logging data.
type Fields = logrus.Fields

// configure configures the logger to write to out with the given format and level. An empty or
// unknown format results in the text formatter, an unparsable level results in the info level.
func configure(logger *logrus.Logger, out io.Writer, format, level string) {
	logger.Out = out

	switch format {
	case FormatJSON:
		logger.Formatter = UTCJsonFormatter()
	default:
		logger.Formatter = UTCTextFormatter()
	}

	logrusLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrusLevel = logrus.InfoLevel
	}
	logger.SetLevel(logrusLevel)
}
