package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Ethernal-Tech/icon-infrastructure/validator"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/google/uuid"
)

const (
	KeystoreVersion  = 3
	KeystoreCoinType = "icx"
)

var ErrInvalidKeystore = errors.New("invalid keystore")

var (
	keystoreKeys = []string{"version", "id", "address", "crypto", "coinType"}
	cryptoKeys   = []string{"cipher", "ciphertext", "cipherparams", "kdf", "kdfparams", "mac"}
)

// Keystore is the V3 keystore file with ICON specific address and coinType fields
type Keystore struct {
	Version  int                 `json:"version"`
	ID       string              `json:"id"`
	Address  string              `json:"address"`
	Crypto   keystore.CryptoJSON `json:"crypto"`
	CoinType string              `json:"coinType"`
}

type storeConfig struct {
	scryptN int
	scryptP int
}

type StoreOption func(*storeConfig)

// WithScrypt sets scrypt cost parameters. Defaults are keystore.StandardScryptN and keystore.StandardScryptP.
func WithScrypt(n, p int) StoreOption {
	return func(c *storeConfig) {
		c.scryptN = n
		c.scryptP = p
	}
}

// WithLightScrypt uses keystore.LightScryptN and keystore.LightScryptP
func WithLightScrypt() StoreOption {
	return WithScrypt(keystore.LightScryptN, keystore.LightScryptP)
}

// Store encrypts private key with password and returns keystore JSON
func (w *Wallet) Store(password string, opts ...StoreOption) ([]byte, error) {
	if w.privateKey == nil {
		return nil, ErrWatchOnlyWallet
	}

	config := storeConfig{
		scryptN: keystore.StandardScryptN,
		scryptP: keystore.StandardScryptP,
	}

	for _, opt := range opts {
		opt(&config)
	}

	cryptoJSON, err := keystore.EncryptDataV3(w.PrivateKey(), []byte(password), config.scryptN, config.scryptP)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}

	return json.Marshal(Keystore{
		Version:  KeystoreVersion,
		ID:       uuid.NewString(),
		Address:  w.address,
		Crypto:   cryptoJSON,
		CoinType: KeystoreCoinType,
	})
}

// LoadKeystore decrypts keystore JSON. Keys are matched exactly unless nonStrict is set,
// in which case keys of any case (for example "Crypto") are accepted.
func LoadKeystore(data []byte, password string, nonStrict bool) (*Wallet, error) {
	ks, err := parseKeystore(data, nonStrict)
	if err != nil {
		return nil, err
	}

	privateKey, err := keystore.DecryptDataV3(ks.Crypto, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeystore, err)
	}

	w, err := LoadPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeystore, err)
	}

	if w.address != ks.Address {
		return nil, fmt.Errorf("%w: address mismatch %s != %s", ErrInvalidKeystore, ks.Address, w.address)
	}

	return w, nil
}

func parseKeystore(data []byte, nonStrict bool) (*Keystore, error) {
	var fields map[string]json.RawMessage

	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeystore, err)
	}

	if !nonStrict {
		if err := checkKeys(fields, keystoreKeys); err != nil {
			return nil, err
		}

		var cryptoFields map[string]json.RawMessage

		if err := json.Unmarshal(fields["crypto"], &cryptoFields); err != nil {
			return nil, fmt.Errorf("%w: crypto: %w", ErrInvalidKeystore, err)
		}

		if err := checkKeys(cryptoFields, cryptoKeys); err != nil {
			return nil, fmt.Errorf("crypto: %w", err)
		}
	}

	// encoding/json matches keys case-insensitively
	var ks Keystore

	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeystore, err)
	}

	if ks.Version != KeystoreVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidKeystore, ks.Version)
	}

	if !strings.EqualFold(ks.CoinType, KeystoreCoinType) {
		return nil, fmt.Errorf("%w: unsupported coin type %s", ErrInvalidKeystore, ks.CoinType)
	}

	if !validator.IsEoaAddress(ks.Address) {
		return nil, fmt.Errorf("%w: invalid address %s", ErrInvalidKeystore, ks.Address)
	}

	return &ks, nil
}

func checkKeys(fields map[string]json.RawMessage, keys []string) error {
	var errs []error

	for _, key := range keys {
		if _, exists := fields[key]; !exists {
			errs = append(errs, fmt.Errorf("%w: missing %s", ErrInvalidKeystore, key))
		}
	}

	return errors.Join(errs...)
}
