package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/Ethernal-Tech/icon-infrastructure/common"
	"github.com/Ethernal-Tech/icon-infrastructure/logger"
	"github.com/Ethernal-Tech/icon-infrastructure/secrets"
	"github.com/Ethernal-Tech/icon-infrastructure/secrets/helper"
	"github.com/Ethernal-Tech/icon-infrastructure/service"
	"github.com/Ethernal-Tech/icon-infrastructure/transport"
	"github.com/Ethernal-Tech/icon-infrastructure/txstore"
	"github.com/Ethernal-Tech/icon-infrastructure/txstore/db"
	"github.com/Ethernal-Tech/icon-infrastructure/wallet"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds lazily created dependencies shared by the commands of one invocation
type app struct {
	viper   *viper.Viper
	config  *Config
	loggers logger.ILoggerContainer
	out     io.Writer

	registry       *prometheus.Registry
	secretsManager secrets.SecretsManager
	journal        txstore.Store
	service        *service.IconService
}

func newApp() *app {
	return &app{
		viper: viper.New(),
	}
}

func (a *app) init(cmd *cobra.Command) error {
	config, err := loadConfig(a.viper, cmd.Flags())
	if err != nil {
		return err
	}

	a.config = config
	a.out = cmd.OutOrStdout()
	a.loggers = logger.NewLoggerContainer(logger.LoggerConfig{
		LogLevel:            config.logLevel(),
		JSONLogFormat:       config.Log.JSON,
		AppendFile:          true,
		LogFilePath:         config.Log.Dir,
		Name:                "icon",
		RotatingLogsEnabled: config.Log.Rotate,
	})

	return nil
}

// runE wraps command handler so resources are released even if the handler fails
func (a *app) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, a.close())
		}()

		return fn(cmd, args)
	}
}

func (a *app) close() error {
	var errs []error

	if a.journal != nil {
		errs = append(errs, a.journal.Close())
		a.journal = nil
	}

	if a.registry != nil && a.config.MetricsFile != "" {
		errs = append(errs, prometheus.WriteToTextfile(a.config.MetricsFile, a.registry))
	}

	return errors.Join(errs...)
}

func (a *app) logger(component string) hclog.Logger {
	l, err := a.loggers.GetLogger(component)
	if err != nil {
		return hclog.NewNullLogger()
	}

	return l
}

func (a *app) getSecretsManager() (secrets.SecretsManager, error) {
	if a.secretsManager != nil {
		return a.secretsManager, nil
	}

	var (
		sm  secrets.SecretsManager
		err error
	)

	if a.config.SecretsConfig == "" {
		sm, err = helper.SetupLocalSecretsManager(a.config.DataDir, a.logger("secrets"))
	} else {
		var secretsConfig *secrets.SecretsManagerConfig

		secretsConfig, err = secrets.ReadConfig(a.config.SecretsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to read secrets config: %w", err)
		}

		sm, err = helper.InitSecretsManager(secretsConfig, a.logger("secrets"))
	}

	if err != nil {
		return nil, err
	}

	a.secretsManager = sm

	return sm, nil
}

func (a *app) getJournal() (txstore.Store, error) {
	if a.journal != nil {
		return a.journal, nil
	}

	if err := common.CreateDirSafe(filepath.Dir(a.config.Journal.Path), 0770); err != nil {
		return nil, err
	}

	journal, err := db.NewDatabase(a.config.Journal.Type, a.config.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	a.journal = journal

	return journal, nil
}

func (a *app) getService() (*service.IconService, error) {
	if a.service != nil {
		return a.service, nil
	}

	journal, err := a.getJournal()
	if err != nil {
		return nil, err
	}

	providerLogger := a.logger("provider")
	options := []transport.ProviderOption{
		transport.WithLogger(providerLogger),
		transport.WithHTTPClient(&http.Client{Timeout: a.config.Provider.Timeout}),
	}

	if a.config.Provider.RetryCount > 0 {
		options = append(options, transport.WithRetry(
			common.WithRetryCount(a.config.Provider.RetryCount),
			common.WithRetryWaitTime(a.config.Provider.RetryWait),
			common.WithBackoff(a.config.Provider.RetryBackoff, a.config.Provider.RetryMaxWait),
		))
	}

	if a.config.Provider.RateLimit > 0 {
		options = append(options, transport.WithRateLimit(a.config.Provider.RateLimit, a.config.Provider.RateBurst))
	}

	if a.config.MetricsFile != "" {
		a.registry = prometheus.NewRegistry()
		options = append(options, transport.WithMetrics(a.registry))
	}

	a.service = service.NewIconService(
		transport.NewHttpProvider(a.config.URL, options...),
		service.WithLogger(a.logger("service")),
		service.WithJournal(journal),
	)

	return a.service, nil
}

func (a *app) loadWallet(name string) (*wallet.Wallet, error) {
	sm, err := a.getSecretsManager()
	if err != nil {
		return nil, err
	}

	return wallet.LoadFromSecretsManager(sm, name, a.config.Password)
}

func (a *app) requirePassword() error {
	if a.config.Password == "" {
		return fmt.Errorf("password is required, use --password or %s_PASSWORD", envPrefix)
	}

	return nil
}

func (a *app) print(value any) error {
	bytes, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(a.out, string(bytes))

	return err
}
