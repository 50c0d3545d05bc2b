package local

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Ethernal-Tech/icon-infrastructure/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSecretsManagerFactory(t *testing.T) {
	workingDirectory := t.TempDir()

	testTable := []struct {
		name          string
		config        *secrets.SecretsManagerConfig
		params        *secrets.SecretsManagerParams
		shouldSucceed bool
	}{
		{
			"Valid configuration with path info",
			&secrets.SecretsManagerConfig{
				Path: filepath.Join(workingDirectory, "config"),
			},
			nil,
			true,
		},
		{
			"Valid params with path info",
			nil,
			&secrets.SecretsManagerParams{
				Extra: map[string]interface{}{
					secrets.Path: filepath.Join(workingDirectory, "params"),
				},
			},
			true,
		},
		{
			"Invalid configuration without path info",
			&secrets.SecretsManagerConfig{
				Path: "",
			},
			nil,
			false,
		},
		{
			"Neither configuration nor params",
			nil,
			nil,
			false,
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			localSecretsManager, factoryErr := SecretsManagerFactory(testCase.config, testCase.params)
			if testCase.shouldSucceed {
				assert.NotNil(t, localSecretsManager)
				assert.NoError(t, factoryErr)
			} else {
				assert.Nil(t, localSecretsManager)
				assert.Error(t, factoryErr)
			}
		})
	}
}

// getLocalSecretsManager is a helper method for creating an instance of the
// local secrets manager
func getLocalSecretsManager(t *testing.T) (secrets.SecretsManager, string) {
	t.Helper()

	workingDirectory := t.TempDir()

	manager, err := SecretsManagerFactory(&secrets.SecretsManagerConfig{
		Path: workingDirectory,
	}, nil)
	require.NoError(t, err)

	return manager, workingDirectory
}

func TestLocalSecretsManager_GetSetRemoveSecret(t *testing.T) {
	testTable := []struct {
		name          string
		secretName    string
		secretValue   []byte
		filePath      string
		shouldSucceed bool
	}{
		{
			"Wallet keystore storage",
			secrets.WalletSecretName("alice"),
			[]byte(`{"version":3}`),
			filepath.Join(secrets.WalletFolderLocal, "alice.json"),
			true,
		},
		{
			"Other secret storage",
			secrets.OtherKeyPrefix + "rpc_token",
			[]byte("kostolomac"),
			filepath.Join(secrets.OtherFolderLocal, "rpc_token"),
			true,
		},
		{
			"Unsupported secret storage",
			"dummySecret",
			[]byte{1},
			"",
			false,
		},
		{
			"Path traversal",
			secrets.WalletSecretName("../alice"),
			[]byte{1},
			"",
			false,
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			manager, dir := getLocalSecretsManager(t)

			require.False(t, manager.HasSecret(testCase.secretName))

			err := manager.SetSecret(testCase.secretName, testCase.secretValue)
			if testCase.shouldSucceed {
				require.NoError(t, err)
				require.True(t, manager.HasSecret(testCase.secretName))
				require.FileExists(t, filepath.Join(dir, testCase.filePath))

				val, err := manager.GetSecret(testCase.secretName)

				require.NoError(t, err)
				require.Equal(t, testCase.secretValue, val)

				require.ErrorIs(t, manager.SetSecret(testCase.secretName, []byte{2}), secrets.ErrSecretAlreadyExists)

				err = manager.RemoveSecret(testCase.secretName)
				require.NoError(t, err)

				_, err = manager.GetSecret(testCase.secretName)
				require.ErrorIs(t, err, secrets.ErrSecretNotFound)
			} else {
				require.Error(t, err)

				err = manager.RemoveSecret(testCase.secretName)
				require.Error(t, err)
			}
		})
	}
}

func TestLocalSecretsManager_RemoveMissing(t *testing.T) {
	manager, dir := getLocalSecretsManager(t)

	require.ErrorIs(t, manager.RemoveSecret(secrets.WalletSecretName("bob")), secrets.ErrSecretNotFound)

	_, err := os.Stat(filepath.Join(dir, secrets.WalletFolderLocal))
	require.NoError(t, err)
}
