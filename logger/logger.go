package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 10
	defaultMaxAgeDays = 30
)

type LoggerConfig struct {
	LogLevel      hclog.Level
	JSONLogFormat bool
	AppendFile    bool
	LogFilePath   string
	Name          string

	// RotatingLogsEnabled writes to LogFilePath through lumberjack
	RotatingLogsEnabled bool
	RotatingLogerConfig RotatingLoggerConfig
}

type RotatingLoggerConfig struct {
	MaxSizeInMB  int
	MaxBackups   int
	MaxAgeInDays int
	Compress     bool
}

func NewLogger(config LoggerConfig) (hclog.Logger, error) {
	var output io.Writer = os.Stderr

	if config.RotatingLogsEnabled {
		if strings.TrimSpace(config.LogFilePath) == "" {
			return nil, errors.New("log file path is required for rotating logs")
		}

		output = getRotatingFileWriter(config)
	} else {
		f, err := getLogFileWriter(config)
		if err != nil {
			return nil, err
		}

		if f != nil {
			output = f
		}
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       config.Name,
		Level:      config.LogLevel,
		Output:     output,
		JSONFormat: config.JSONLogFormat,
	}), nil
}

func getRotatingFileWriter(config LoggerConfig) *lumberjack.Logger {
	rotating := config.RotatingLogerConfig
	if rotating.MaxSizeInMB == 0 {
		rotating.MaxSizeInMB = defaultMaxSizeMB
	}

	if rotating.MaxBackups == 0 {
		rotating.MaxBackups = defaultMaxBackups
	}

	if rotating.MaxAgeInDays == 0 {
		rotating.MaxAgeInDays = defaultMaxAgeDays
	}

	return &lumberjack.Logger{
		Filename:   config.LogFilePath,
		MaxSize:    rotating.MaxSizeInMB,
		MaxBackups: rotating.MaxBackups,
		MaxAge:     rotating.MaxAgeInDays,
		Compress:   rotating.Compress,
	}
}

// getLogFileWriter opens log file for appending. When AppendFile is false a new file
// with current timestamp inserted before the extension is created.
func getLogFileWriter(config LoggerConfig) (*os.File, error) {
	logFilePath := strings.TrimSpace(config.LogFilePath)
	if logFilePath == "" {
		return nil, nil
	}

	if dir := filepath.Dir(logFilePath); dir != "" {
		if err := os.MkdirAll(dir, 0770); err != nil {
			return nil, fmt.Errorf("could not create log directory, %w", err)
		}
	}

	if !config.AppendFile {
		ext := filepath.Ext(logFilePath)
		timestamp := strings.NewReplacer(":", "_", "-", "_").Replace(time.Now().UTC().Format(time.RFC3339))
		logFilePath = strings.TrimSuffix(logFilePath, ext) + "_" + timestamp + ext
	}

	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("could not create or open log file, %w", err)
	}

	return f, nil
}
