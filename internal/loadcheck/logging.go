package loadcheck

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/bioage/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging initialises the global logger, mirroring output to logFile
// when it is set.
func SetupLogging(logFile string) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}
