package logger

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// ILoggerContainer hands out one logger per component (provider, service, journal...)
type ILoggerContainer interface {
	GetLogger(component string) (hclog.Logger, error)
}

type LoggerContainerImpl struct {
	lock sync.Mutex

	loggers map[string]hclog.Logger
	config  LoggerConfig
	root    hclog.Logger
}

var _ ILoggerContainer = (*LoggerContainerImpl)(nil)

// NewLoggerContainer creates container. When config.LogFilePath is set it is treated as a directory
// and every component logs into its own <component>.log file, otherwise all components share
// one stderr logger.
func NewLoggerContainer(config LoggerConfig) *LoggerContainerImpl {
	return &LoggerContainerImpl{
		loggers: map[string]hclog.Logger{},
		config:  config,
	}
}

func (l *LoggerContainerImpl) GetLogger(component string) (hclog.Logger, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if logger, exists := l.loggers[component]; exists {
		return logger, nil
	}

	var (
		newLogger hclog.Logger
		err       error
	)

	if l.config.LogFilePath != "" {
		nc := l.config
		nc.LogFilePath = filepath.Join(nc.LogFilePath, component+".log")
		nc.Name = component

		newLogger, err = NewLogger(nc)
		if err != nil {
			return nil, err
		}
	} else {
		if l.root == nil {
			l.root, err = NewLogger(l.config)
			if err != nil {
				return nil, err
			}
		}

		newLogger = l.root.Named(component)
	}

	l.loggers[component] = newLogger

	return newLogger, nil
}

type NullLoggerContainer struct{}

func NewNullLoggerContainer() *NullLoggerContainer {
	return &NullLoggerContainer{}
}

func (l *NullLoggerContainer) GetLogger(string) (hclog.Logger, error) {
	return hclog.NewNullLogger(), nil
}
