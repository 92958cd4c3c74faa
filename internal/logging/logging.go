// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects level, formatter and an optional rotating log file.
type Options struct {
	Level  string
	Format string
	File   string
}

// Setup applies opts to the standard logrus logger. The returned closer
// flushes the log file, if any.
func Setup(opts Options) (io.Closer, error) {
	return configure(log.StandardLogger(), os.Stderr, opts)
}

func configure(l *log.Logger, console io.Writer, opts Options) (io.Closer, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}
	l.SetLevel(level)

	switch opts.Format {
	case "", "text":
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: opts.File != ""})
	case "json":
		l.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	if opts.File == "" {
		l.SetOutput(console)
		return io.NopCloser(nil), nil
	}
	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	l.SetOutput(io.MultiWriter(console, file))
	return file, nil
}
