package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Ethernal-Tech/icon-infrastructure/common"
	"github.com/Ethernal-Tech/icon-infrastructure/secrets"
	"github.com/hashicorp/go-hclog"
)

// LocalSecretsManager is a SecretsManager that
// stores secrets locally on disk
type LocalSecretsManager struct {
	// Path to the base working directory
	path string

	logger hclog.Logger

	// Map of known secret prefixes and their directories
	secretPathMap map[string]string

	// Mux for the secretPathMap
	secretPathMapLock sync.RWMutex
}

// SecretsManagerFactory implements the factory method.
// Base directory is taken from config.Path or, when config is nil, from params.Extra[secrets.Path].
func SecretsManagerFactory(
	config *secrets.SecretsManagerConfig, params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	path := ""

	if config != nil {
		path = config.Path
	} else if params != nil {
		path, _ = params.Extra[secrets.Path].(string)
	}

	if path == "" {
		return nil, errors.New("no path specified for local secrets manager")
	}

	logger := hclog.NewNullLogger()
	if params != nil && params.Logger != nil {
		logger = params.Logger
	}

	// Set up the base object
	localManager := &LocalSecretsManager{
		secretPathMap: make(map[string]string),
		path:          path,
		logger:        logger.Named(string(secrets.Local)),
	}

	// Run the initial setup
	if err := localManager.Setup(); err != nil {
		return nil, err
	}

	return localManager, nil
}

// Setup sets up the local SecretsManager
func (l *LocalSecretsManager) Setup() error {
	l.secretPathMapLock.Lock()
	defer l.secretPathMapLock.Unlock()

	subDirectories := []string{secrets.WalletFolderLocal, secrets.OtherFolderLocal}

	// Set up the local directories
	if err := common.SetupDataDir(l.path, subDirectories, 0750); err != nil {
		return err
	}

	// baseDir/wallets/
	l.secretPathMap[secrets.WalletKeyPrefix] = filepath.Join(l.path, secrets.WalletFolderLocal)

	// baseDir/other/
	l.secretPathMap[secrets.OtherKeyPrefix] = filepath.Join(l.path, secrets.OtherFolderLocal)

	return nil
}

// GetSecret gets the local SecretsManager's secret from disk
func (l *LocalSecretsManager) GetSecret(name string) ([]byte, error) {
	secretPath, err := l.resolvePath(name)
	if err != nil {
		return nil, err
	}

	// Read the secret from disk
	secret, err := os.ReadFile(secretPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return nil, fmt.Errorf(
			"unable to read secret from disk (%s), %w",
			secretPath,
			err,
		)
	}

	return secret, nil
}

// SetSecret saves the local SecretsManager's secret to disk
func (l *LocalSecretsManager) SetSecret(name string, value []byte) error {
	secretPath, err := l.resolvePath(name)
	if err != nil {
		return err
	}

	// Checks for existing secret
	if common.FileExists(secretPath) {
		return fmt.Errorf("%w: %s", secrets.ErrSecretAlreadyExists, secretPath)
	}

	// Write the secret to disk
	if err := common.SaveFileSafe(secretPath, value, 0440); err != nil {
		return fmt.Errorf(
			"unable to write secret to disk (%s), %w",
			secretPath,
			err,
		)
	}

	l.logger.Debug("secret stored", "name", name)

	return nil
}

// HasSecret checks if the secret is present on disk
func (l *LocalSecretsManager) HasSecret(name string) bool {
	_, err := l.GetSecret(name)

	return err == nil
}

// RemoveSecret removes the local SecretsManager's secret from disk
func (l *LocalSecretsManager) RemoveSecret(name string) error {
	secretPath, err := l.resolvePath(name)
	if err != nil {
		return err
	}

	if removeErr := os.Remove(secretPath); removeErr != nil {
		if os.IsNotExist(removeErr) {
			return fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return fmt.Errorf("unable to remove secret, %w", removeErr)
	}

	l.logger.Debug("secret removed", "name", name)

	return nil
}

// resolvePath maps wallet_<name> to baseDir/wallets/<name>.json and other_<name> to baseDir/other/<name>
func (l *LocalSecretsManager) resolvePath(name string) (string, error) {
	var prefix, fileName string

	switch {
	case strings.HasPrefix(name, secrets.WalletKeyPrefix):
		prefix = secrets.WalletKeyPrefix
		fileName = strings.TrimPrefix(name, secrets.WalletKeyPrefix) + secrets.WalletFileExtLocal
	case strings.HasPrefix(name, secrets.OtherKeyPrefix):
		prefix = secrets.OtherKeyPrefix
		fileName = strings.TrimPrefix(name, secrets.OtherKeyPrefix)
	default:
		return "", fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	if fileName == "" || fileName == secrets.WalletFileExtLocal ||
		strings.ContainsAny(fileName, `/\`) || strings.Contains(fileName, "..") {
		return "", fmt.Errorf("invalid secret name: %s", name)
	}

	l.secretPathMapLock.RLock()
	dir, ok := l.secretPathMap[prefix]
	l.secretPathMapLock.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	return filepath.Join(dir, fileName), nil
}
