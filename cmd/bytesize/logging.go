package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger builds the logger described by cfg. Logs go to stderr unless a
// log file is configured; the returned function closes that file.
func InitLogger(cfg *Config, stderr io.Writer) (*logrus.Logger, func() error, error) {
	w := stderr
	closer := func() error { return nil }

	if cfg.LogFilePath != "" {
		f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.LogFilePath, err)
		}
		w, closer = f, f.Close
	}

	logLvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	return &logrus.Logger{
		Out: w,
		Formatter: &logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			DisableSorting:  true,
		},
		Hooks: make(logrus.LevelHooks),
		Level: logLvl,
	}, closer, nil
}
