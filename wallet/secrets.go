package wallet

import (
	"fmt"

	"github.com/Ethernal-Tech/icon-infrastructure/secrets"
)

// SaveToSecretsManager stores wallet keystore under secrets.WalletSecretName(name)
func (w *Wallet) SaveToSecretsManager(
	secretsManager secrets.SecretsManager, name string, password string, opts ...StoreOption,
) error {
	keystoreBytes, err := w.Store(password, opts...)
	if err != nil {
		return err
	}

	if err := secretsManager.SetSecret(secrets.WalletSecretName(name), keystoreBytes); err != nil {
		return fmt.Errorf("failed to store wallet %s: %w", name, err)
	}

	return nil
}

// LoadFromSecretsManager loads and decrypts keystore stored by SaveToSecretsManager
func LoadFromSecretsManager(secretsManager secrets.SecretsManager, name string, password string) (*Wallet, error) {
	keystoreBytes, err := secretsManager.GetSecret(secrets.WalletSecretName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet %s: %w", name, err)
	}

	return LoadKeystore(keystoreBytes, password, false)
}
