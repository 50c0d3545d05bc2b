package wallet

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Ethernal-Tech/icon-infrastructure/converter"
	"github.com/Ethernal-Tech/icon-infrastructure/transaction"
	"github.com/Ethernal-Tech/icon-infrastructure/validator"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

const (
	PrivateKeySize = 32
	DigestSize     = 32
	// SignatureSize is R (32) || S (32) || recovery id (1)
	SignatureSize = 65

	eoaAddressPrefix   = "hx"
	addressSize        = 20
	compactMagicOffset = 27
)

var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrWatchOnlyWallet   = errors.New("wallet has no private key")
)

var _ transaction.Signer = (*Wallet)(nil)

// Wallet is an ICON EOA key pair. Wallet created from a public key only can not sign.
type Wallet struct {
	privateKey *secp256k1.PrivateKey
	publicKey  *secp256k1.PublicKey
	address    string
}

// Create generates a new random wallet
func Create() (*Wallet, error) {
	privateKey, err := secp256k1.GeneratePrivateKeyFromRand(rand.Reader)
	if err != nil {
		return nil, err
	}

	return newWallet(privateKey), nil
}

// LoadPrivateKey imports wallet from 32 byte private key
func LoadPrivateKey(privateKey []byte) (*Wallet, error) {
	if !validator.IsPrivateKey(privateKey) {
		return nil, ErrInvalidPrivateKey
	}

	return newWallet(secp256k1.PrivKeyFromBytes(privateKey)), nil
}

// LoadPrivateKeyHex imports wallet from hex (optionally 0x-prefixed) private key
func LoadPrivateKeyHex(privateKey string) (*Wallet, error) {
	bytes, err := converter.HexToBytes(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}

	return LoadPrivateKey(bytes)
}

// LoadPublicKey creates watch-only wallet from compressed or uncompressed public key
func LoadPublicKey(publicKey []byte) (*Wallet, error) {
	if !validator.IsPublicKey(publicKey) {
		return nil, ErrInvalidPublicKey
	}

	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		publicKey: pub,
		address:   addressFromPublicKey(pub),
	}, nil
}

func newWallet(privateKey *secp256k1.PrivateKey) *Wallet {
	publicKey := privateKey.PubKey()

	return &Wallet{
		privateKey: privateKey,
		publicKey:  publicKey,
		address:    addressFromPublicKey(publicKey),
	}
}

// Sign signs 32 byte digest and returns base64 encoded recoverable signature
func (w *Wallet) Sign(digest []byte) (string, error) {
	signature, err := w.SignRaw(digest)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}

// SignRaw returns 65 byte recoverable signature R || S || recovery id. Signing is deterministic (RFC 6979).
func (w *Wallet) SignRaw(digest []byte) ([]byte, error) {
	if w.privateKey == nil {
		return nil, ErrWatchOnlyWallet
	}

	if len(digest) != DigestSize {
		return nil, fmt.Errorf("invalid digest size: %d", len(digest))
	}

	// compact signature is [27 + recovery id] || R || S
	compact := ecdsa.SignCompact(w.privateKey, digest, false)

	signature := make([]byte, SignatureSize)
	copy(signature, compact[1:])
	signature[SignatureSize-1] = compact[0] - compactMagicOffset

	return signature, nil
}

// PrivateKey returns 32 byte private key, nil for watch-only wallet
func (w *Wallet) PrivateKey() []byte {
	if w.privateKey == nil {
		return nil
	}

	return w.privateKey.Serialize()
}

// PrivateKeyHex returns hex private key without 0x prefix
func (w *Wallet) PrivateKeyHex() string {
	return hex.EncodeToString(w.PrivateKey())
}

// PublicKey returns 64 byte uncompressed public key without the 0x04 prefix
func (w *Wallet) PublicKey() []byte {
	return w.publicKey.SerializeUncompressed()[1:]
}

func (w *Wallet) PublicKeyCompressed() []byte {
	return w.publicKey.SerializeCompressed()
}

// Address returns hx-prefixed EOA address
func (w *Wallet) Address() string {
	return w.address
}

// AddressFromPublicKey derives EOA address from compressed, uncompressed or 64 byte public key
func AddressFromPublicKey(publicKey []byte) (string, error) {
	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return "", err
	}

	return addressFromPublicKey(pub), nil
}

// addressFromPublicKey is hx + last 20 bytes of sha3-256 of uncompressed public key without prefix
func addressFromPublicKey(publicKey *secp256k1.PublicKey) string {
	hash := sha3.Sum256(publicKey.SerializeUncompressed()[1:])

	return eoaAddressPrefix + hex.EncodeToString(hash[len(hash)-addressSize:])
}

func parsePublicKey(publicKey []byte) (*secp256k1.PublicKey, error) {
	if len(publicKey) == 64 {
		publicKey = append([]byte{0x04}, publicKey...)
	}

	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}

	return pub, nil
}
