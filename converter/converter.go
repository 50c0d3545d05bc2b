package converter

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	hexPrefix = "0x"

	// MaxNumericDigits bounds the number of decimal digits of accepted values, well above uint256
	MaxNumericDigits = 256
)

var (
	ErrInvalidNumericValue = errors.New("invalid numeric value")
	ErrInvalidHexString    = errors.New("invalid hex string")
)

// LoopValue is implemented by amounts that can express themselves in the atomic unit
type LoopValue interface {
	ToLoop() *big.Int
}

// ToBigNumber converts decimal strings, 0x-prefixed hex strings, integers, big integers
// and decimals into an arbitrary precision decimal.
// Floating point numbers are rejected because they may have already lost precision.
func ToBigNumber(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, checkMagnitude(v)
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, fmt.Errorf("%w: nil decimal", ErrInvalidNumericValue)
		}

		return *v, checkMagnitude(*v)
	case *big.Int:
		if v == nil {
			return decimal.Zero, fmt.Errorf("%w: nil big integer", ErrInvalidNumericValue)
		}

		return decimal.NewFromBigInt(v, 0), nil
	case LoopValue:
		return decimal.NewFromBigInt(v.ToLoop(), 0), nil
	case string:
		return parseNumericString(v)
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return fromUint64(uint64(v)), nil
	case uint8:
		return fromUint64(uint64(v)), nil
	case uint16:
		return fromUint64(uint64(v)), nil
	case uint32:
		return fromUint64(uint64(v)), nil
	case uint64:
		return fromUint64(v), nil
	}

	return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidNumericValue, value)
}

// ToBigInt converts value into a big integer. Values with a fractional part are rejected.
func ToBigInt(value any) (*big.Int, error) {
	d, err := ToBigNumber(value)
	if err != nil {
		return nil, err
	}

	if err := checkMagnitude(d); err != nil {
		return nil, err
	}

	if !d.IsInteger() {
		return nil, fmt.Errorf("%w: %s is not an integer", ErrInvalidNumericValue, d.String())
	}

	return d.BigInt(), nil
}

// ToNumber converts value into int64
func ToNumber(value any) (int64, error) {
	b, err := ToBigInt(value)
	if err != nil {
		return 0, err
	}

	if !b.IsInt64() {
		return 0, fmt.Errorf("%w: %s overflows int64", ErrInvalidNumericValue, b.String())
	}

	return b.Int64(), nil
}

// ToHexNumber converts value into a 0x-prefixed, lowercase hex string without leading zeros.
// Only non-negative integer quantities are accepted.
func ToHexNumber(value any) (string, error) {
	b, err := ToBigInt(value)
	if err != nil {
		return "", err
	}

	if b.Sign() < 0 {
		return "", fmt.Errorf("%w: negative value %s", ErrInvalidNumericValue, b.String())
	}

	return hexPrefix + b.Text(16), nil
}

// ToSignedHexNumber is ToHexNumber for signed quantities, negative values are encoded as -0x...
func ToSignedHexNumber(value any) (string, error) {
	b, err := ToBigInt(value)
	if err != nil {
		return "", err
	}

	if b.Sign() < 0 {
		return "-" + hexPrefix + new(big.Int).Neg(b).Text(16), nil
	}

	return hexPrefix + b.Text(16), nil
}

// ToHex converts value to hex string. Strings that are already hex and byte slices are kept
// byte for byte (only lowercased), everything else is converted as a number.
func ToHex(value any) (string, error) {
	switch v := value.(type) {
	case []byte:
		return hexPrefix + hex.EncodeToString(v), nil
	case string:
		if IsHex(v) {
			return strings.ToLower(v), nil
		}
	}

	return ToHexNumber(value)
}

// IsHex returns true if s is 0x-prefixed and contains at least one hex digit
func IsHex(s string) bool {
	if len(s) <= len(hexPrefix) || !has0xPrefix(s) {
		return false
	}

	for _, c := range s[len(hexPrefix):] {
		if !isHexDigit(c) {
			return false
		}
	}

	return true
}

// HexToBytes decodes 0x-prefixed (or bare) even length hex string
func HexToBytes(s string) ([]byte, error) {
	bytes, err := hex.DecodeString(Remove0xPrefix(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHexString, err)
	}

	return bytes, nil
}

// FromUtf8 converts UTF-8 text to 0x-prefixed hex string
func FromUtf8(value string) string {
	return hexPrefix + hex.EncodeToString([]byte(value))
}

// ToUtf8 converts hex string back to UTF-8 text
func ToUtf8(value string) (string, error) {
	bytes, err := HexToBytes(value)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func Add0xPrefix(s string) string {
	if has0xPrefix(s) {
		return s
	}

	return hexPrefix + s
}

func Remove0xPrefix(s string) string {
	if has0xPrefix(s) {
		return s[len(hexPrefix):]
	}

	return s
}

func parseNumericString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty string", ErrInvalidNumericValue)
	}

	negative := false
	digits := s

	if digits[0] == '-' || digits[0] == '+' {
		negative = digits[0] == '-'
		digits = digits[1:]
	}

	if has0xPrefix(digits) {
		b, ok := new(big.Int).SetString(digits[len(hexPrefix):], 16)
		if !ok || !IsHex(digits) {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumericValue, s)
		}

		if negative {
			b.Neg(b)
		}

		return decimal.NewFromBigInt(b, 0), nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumericValue, s)
	}

	if err := checkMagnitude(d); err != nil {
		return decimal.Zero, err
	}

	return d, nil
}

// checkMagnitude rejects exponents which would expand into more than MaxNumericDigits digits
func checkMagnitude(d decimal.Decimal) error {
	exp := int64(d.Exponent())

	if exp > 0 && int64(d.NumDigits())+exp > MaxNumericDigits {
		return fmt.Errorf("%w: more than %d integer digits", ErrInvalidNumericValue, MaxNumericDigits)
	}

	if exp < -MaxNumericDigits {
		return fmt.Errorf("%w: more than %d fractional digits", ErrInvalidNumericValue, MaxNumericDigits)
	}

	return nil
}

func fromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isHexDigit(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
