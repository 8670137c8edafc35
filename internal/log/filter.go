package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	"gitlab.com/gitlab-org/sobfilter/internal/helper/perm"
)

// FilterLogName is the name of the log file written into the configured log directory.
const FilterLogName = "sobfilter.log"

// Config configures the logger of a filter invocation.
type Config struct {
	// Dir is the directory the log file is written to. Logs are discarded if it is empty.
	Dir string
	// Format is one of SupportedFormats.
	Format string
	// Level is a logrus level name.
	Level string
}

// NewFilterLogger creates a file logger, since both stdout and stderr are consumed by git while a
// message filter runs. The returned closer must be closed once the filter is done. If the log file
// cannot be opened, a discarding logger is returned alongside the error.
func NewFilterLogger(ctx context.Context, cfg Config) (*logrus.Entry, io.Closer, error) {
	logger := logrus.New() //nolint:forbidigo

	if cfg.Dir == "" {
		logger.SetOutput(io.Discard)
		return logrus.NewEntry(logger), io.NopCloser(nil), nil
	}

	logFile, err := os.OpenFile(filepath.Join(cfg.Dir, FilterLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, perm.SharedFile)
	if err != nil {
		logger.SetOutput(io.Discard)
		return logrus.NewEntry(logger), io.NopCloser(nil), fmt.Errorf("opening log file: %w", err)
	}

	configure(logger, logFile, cfg.Format, cfg.Level)

	return logger.WithFields(logFieldsFromContext(ctx)), logFile, nil
}

func logFieldsFromContext(ctx context.Context) Fields {
	return Fields{
		correlation.FieldName: correlation.ExtractFromContext(ctx),
		"pid":                 os.Getpid(),
	}
}
