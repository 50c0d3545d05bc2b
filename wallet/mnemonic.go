package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
)

const (
	// IconCoinType is the SLIP-44 coin type of ICON
	IconCoinType = 74

	DefaultMnemonicEntropyBits = 128
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// NewMnemonic generates BIP-39 mnemonic. bitSize must be a multiple of 32 within [128, 256].
func NewMnemonic(bitSize int) (string, error) {
	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", err
	}

	return bip39.NewMnemonic(entropy)
}

// NewWalletFromMnemonic derives wallet at BIP-44 path m/44'/74'/0'/0/index
func NewWalletFromMnemonic(mnemonic, passphrase string, index uint32) (*Wallet, error) {
	if index >= hdkeychain.HardenedKeyStart {
		return nil, fmt.Errorf("invalid account index: %d", index)
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}

	for _, childIndex := range derivationPath(index) {
		key, err = key.Derive(childIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", childIndex, err)
		}
	}

	privateKey, err := key.ECPrivKey()
	if err != nil {
		return nil, err
	}

	return LoadPrivateKey(privateKey.Serialize())
}

func derivationPath(index uint32) []uint32 {
	return []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + IconCoinType,
		hdkeychain.HardenedKeyStart + 0,
		0,
		index,
	}
}
