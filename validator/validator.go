package validator

import (
	"regexp"

	"github.com/Ethernal-Tech/icon-infrastructure/converter"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	EoaAddressPrefix   = "hx"
	ScoreAddressPrefix = "cx"
)

var (
	eoaAddressRegex   = regexp.MustCompile(`^hx[0-9a-f]{40}$`)
	scoreAddressRegex = regexp.MustCompile(`^cx[0-9a-f]{40}$`)
)

// AddressValidator checks address shapes
type AddressValidator interface {
	IsEoaAddress(address string) bool
	IsScoreAddress(address string) bool
	IsAddress(address string) bool
}

type defaultValidator struct{}

// Default validates addresses by their lowercase hx/cx shape
var Default AddressValidator = defaultValidator{}

func (defaultValidator) IsEoaAddress(address string) bool {
	return IsEoaAddress(address)
}

func (defaultValidator) IsScoreAddress(address string) bool {
	return IsScoreAddress(address)
}

func (defaultValidator) IsAddress(address string) bool {
	return IsAddress(address)
}

// IsEoaAddress returns true if address is an externally owned account address (hx + 20 bytes hex)
func IsEoaAddress(address string) bool {
	return eoaAddressRegex.MatchString(address)
}

// IsScoreAddress returns true if address is a SCORE (contract) address (cx + 20 bytes hex)
func IsScoreAddress(address string) bool {
	return scoreAddressRegex.MatchString(address)
}

func IsAddress(address string) bool {
	return IsEoaAddress(address) || IsScoreAddress(address)
}

// IsPrivateKey returns true if key is a 32 bytes secp256k1 scalar in range [1, N-1]
func IsPrivateKey(key []byte) bool {
	if len(key) != secp256k1.PrivKeyBytesLen {
		return false
	}

	var scalar secp256k1.ModNScalar

	overflow := scalar.SetByteSlice(key)

	return !overflow && !scalar.IsZero()
}

// IsPrivateKeyHex is IsPrivateKey for (optionally 0x-prefixed) hex strings
func IsPrivateKeyHex(key string) bool {
	bytes, err := converter.HexToBytes(key)

	return err == nil && IsPrivateKey(bytes)
}

// IsPublicKey returns true if key is a valid compressed or uncompressed secp256k1 public key.
// Uncompressed keys are also accepted without the leading 0x04 byte.
func IsPublicKey(key []byte) bool {
	if len(key) == 64 {
		key = append([]byte{0x04}, key...)
	}

	_, err := secp256k1.ParsePubKey(key)

	return err == nil
}

func IsPublicKeyHex(key string) bool {
	bytes, err := converter.HexToBytes(key)

	return err == nil && IsPublicKey(bytes)
}
