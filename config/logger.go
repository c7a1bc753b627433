package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Pretty output uses the console writer.
func NewLogger(cfg LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: out != os.Stderr && out != os.Stdout}).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Logger()
}

// OpenLogFile opens <DataDir>/deepfocus.log for appending. The TUI logs there so log
// lines never draw over the interface.
func OpenLogFile() (*os.File, error) {
	dir := DataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "deepfocus.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
