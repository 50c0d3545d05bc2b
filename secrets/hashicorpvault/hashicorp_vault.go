package hashicorpvault

import (
	"errors"
	"fmt"

	"github.com/Ethernal-Tech/icon-infrastructure/secrets"
	"github.com/hashicorp/go-hclog"
	vault "github.com/hashicorp/vault/api"
)

// VaultSecretsManager is a SecretsManager that
// stores secrets on a Hashicorp Vault instance
type VaultSecretsManager struct {
	// Logger object
	logger hclog.Logger

	// Token used for Vault instance authentication
	token string

	// The Server URL of the Vault instance
	serverURL string

	// The name of the current node, used for prefixing names of secrets
	name string

	// The base path to store the secrets in the KV-2 Vault storage
	basePath string

	// The HTTP client used for interacting with the Vault server
	client *vault.Client

	// The namespace under which the secrets are stored
	namespace string
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	config *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	// Check if the token is present
	if config.Token == "" {
		return nil, errors.New("no token specified for Vault secrets manager")
	}

	// Check if the server URL is present
	if config.ServerURL == "" {
		return nil, errors.New("no server URL specified for Vault secrets manager")
	}

	// Check if the node name is present
	if config.Name == "" {
		return nil, errors.New("no node name specified for Vault secrets manager")
	}

	logger := hclog.NewNullLogger()
	if params != nil && params.Logger != nil {
		logger = params.Logger
	}

	vaultManager := &VaultSecretsManager{
		logger:    logger.Named(string(secrets.HashicorpVault)),
		token:     config.Token,
		serverURL: config.ServerURL,
		name:      config.Name,
		namespace: config.Namespace,
		basePath:  fmt.Sprintf("secret/data/%s", config.Name),
	}

	// Run the initial setup
	if err := vaultManager.Setup(); err != nil {
		return nil, err
	}

	return vaultManager, nil
}

// Setup sets up the Hashicorp Vault secrets manager
func (v *VaultSecretsManager) Setup() error {
	config := vault.DefaultConfig()

	// Set the server URL
	config.Address = v.serverURL

	client, err := vault.NewClient(config)
	if err != nil {
		return fmt.Errorf("unable to initialize vault client: %w", err)
	}

	// Set the access token
	client.SetToken(v.token)

	// Set the namespace
	client.SetNamespace(v.namespace)

	v.client = client

	return nil
}

// constructSecretPath is a helper method for constructing a path to the secret
func (v *VaultSecretsManager) constructSecretPath(name string) string {
	return fmt.Sprintf("%s/%s", v.basePath, name)
}

// GetSecret fetches a secret from the Hashicorp Vault server
func (v *VaultSecretsManager) GetSecret(name string) ([]byte, error) {
	secret, err := v.client.Logical().Read(v.constructSecretPath(name))
	if err != nil {
		return nil, fmt.Errorf("unable to read secret from Vault, %w", err)
	}

	if secret == nil {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	// KV-2 (versioned key-value storage) in Vault stores data in the following format:
	// {
	// "data": {
	// 		key: value
	// 	}
	// }
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf(
			"unable to assert type for secret from Vault, %T %v",
			secret.Data["data"],
			secret.Data["data"],
		)
	}

	// Check if the data is empty
	if data == nil {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	value, ok := data[name].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	return []byte(value), nil
}

// SetSecret saves a secret to the Hashicorp Vault server
// Secrets saved in Vault need to be in a key-value format, so the secret is saved
// under its own name
func (v *VaultSecretsManager) SetSecret(name string, value []byte) error {
	data := map[string]interface{}{
		"data": map[string]string{
			name: string(value),
		},
	}

	if _, err := v.client.Logical().Write(v.constructSecretPath(name), data); err != nil {
		return fmt.Errorf("unable to store secret (%s), %w", name, err)
	}

	v.logger.Debug("secret stored", "name", name)

	return nil
}

// HasSecret checks if the secret is present on the Hashicorp Vault server
func (v *VaultSecretsManager) HasSecret(name string) bool {
	_, err := v.GetSecret(name)

	return err == nil
}

// RemoveSecret removes a secret from the Hashicorp Vault server
func (v *VaultSecretsManager) RemoveSecret(name string) error {
	if _, err := v.client.Logical().Delete(v.constructSecretPath(name)); err != nil {
		return fmt.Errorf("unable to delete secret (%s), %w", name, err)
	}

	v.logger.Debug("secret removed", "name", name)

	return nil
}
