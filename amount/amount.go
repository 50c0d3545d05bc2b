package amount

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Ethernal-Tech/icon-infrastructure/converter"
	"github.com/shopspring/decimal"
)

// Unit digits
const (
	Loop  uint32 = 0
	Gloop uint32 = 9
	ICX   uint32 = 18
)

var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a decimal quantity expressed in the unit defined by digit (value * 10^digit loop)
type Amount struct {
	value decimal.Decimal
	digit uint32
}

// Of creates Amount. value can be a decimal string, an integer or a big number;
// digit must be a non-negative integer.
func Of(value any, digit any) (Amount, error) {
	d, err := converter.ToBigNumber(value)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: value: %w", ErrInvalidAmount, err)
	}

	dg, err := converter.ToNumber(digit)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: digit: %w", ErrInvalidAmount, err)
	}

	if dg < 0 || dg > int64(^uint32(0)>>1) {
		return Amount{}, fmt.Errorf("%w: digit out of range: %d", ErrInvalidAmount, dg)
	}

	return New(d, uint32(dg)), nil
}

// MustOf is like Of but panics on invalid input. Intended for constants.
func MustOf(value any, digit any) Amount {
	a, err := Of(value, digit)
	if err != nil {
		panic(err)
	}

	return a
}

func New(value decimal.Decimal, digit uint32) Amount {
	return Amount{
		value: value,
		digit: digit,
	}
}

func (a Amount) Value() decimal.Decimal {
	return a.value
}

func (a Amount) Digit() uint32 {
	return a.digit
}

// ToLoop returns the quantity in loop. Fractions of a loop are truncated toward zero.
func (a Amount) ToLoop() *big.Int {
	return a.value.Shift(int32(a.digit)).Truncate(0).BigInt()
}

// ConvertUnit expresses the same quantity in another unit. The conversion is exact.
func (a Amount) ConvertUnit(digit any) (Amount, error) {
	target, err := Of(0, digit)
	if err != nil {
		return Amount{}, err
	}

	return New(a.value.Shift(int32(a.digit)-int32(target.digit)), target.digit), nil
}

// Cmp compares underlying quantities regardless of units
func (a Amount) Cmp(b Amount) int {
	return a.value.Shift(int32(a.digit)).Cmp(b.value.Shift(int32(b.digit)))
}

// String returns the value in its own unit in normalized form: trailing fractional zeros and a trailing
// decimal point are dropped, so "1.50" and "1.5" print the same. Exponent notation is never used.
func (a Amount) String() string {
	return a.value.String()
}
