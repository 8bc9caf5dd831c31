package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	log "github.com/sirupsen/logrus"
)

// Options selects the log level and an optional rotating log file.
type Options struct {
	Level string
	File  string
}

// Setup configures the standard logrus logger.
// An empty File keeps logging on stdout.
func Setup(opts Options) error {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("logging setup: parse level %q: %w", opts.Level, err)
	}

	if opts.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 7,
			MaxAge:     7, // days
			Compress:   true,
		})
	} else {
		log.SetOutput(os.Stdout)
	}

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	log.SetLevel(level)

	return nil
}
