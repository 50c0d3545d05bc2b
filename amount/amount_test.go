package amount

import (
	"math/big"
	"testing"

	"github.com/Ethernal-Tech/icon-infrastructure/converter"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		a, err := Of("1.25", ICX)
		require.NoError(t, err)
		require.Equal(t, "1.25", a.String())
		require.Equal(t, ICX, a.Digit())

		a, err = Of(big.NewInt(7), "9")
		require.NoError(t, err)
		require.Equal(t, "7", a.String())
		require.Equal(t, Gloop, a.Digit())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := Of("1,5", ICX)
		require.ErrorIs(t, err, ErrInvalidAmount)

		_, err = Of("1", -1)
		require.ErrorIs(t, err, ErrInvalidAmount)

		_, err = Of("1", "1.5")
		require.ErrorIs(t, err, ErrInvalidAmount)

		_, err = Of(0.1, ICX)
		require.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("must", func(t *testing.T) {
		require.Panics(t, func() {
			MustOf("x", ICX)
		})
		require.Equal(t, "3", MustOf(3, Loop).String())
	})
}

func TestToLoop(t *testing.T) {
	require.Equal(t, "1000000000000000000", MustOf("1", ICX).ToLoop().String())
	require.Equal(t, "1500000000000000000", MustOf("1.5", ICX).ToLoop().String())
	require.Equal(t, "123456789012345678901", MustOf("123.456789012345678901", ICX).ToLoop().String())
	require.Equal(t, "2000000000", MustOf("2", Gloop).ToLoop().String())
	require.Equal(t, "1", MustOf("1.9", Loop).ToLoop().String())
}

func TestConvertUnit(t *testing.T) {
	values := []string{"0", "1", "0.000000000000000001", "12345.6789", "99999999999999999999.5"}
	digits := []uint32{Loop, Gloop, ICX, 3}

	for _, v := range values {
		for _, d1 := range digits {
			original := MustOf(v, d1)

			same, err := original.ConvertUnit(d1)
			require.NoError(t, err)
			require.Equal(t, v, same.String())

			for _, d2 := range digits {
				converted, err := original.ConvertUnit(d2)
				require.NoError(t, err)
				require.Equal(t, d2, converted.Digit())
				require.Equal(t, 0, original.Cmp(converted))

				back, err := converted.ConvertUnit(d1)
				require.NoError(t, err)
				require.Equal(t, v, back.String())
			}
		}
	}

	icx, err := MustOf("1000000000000000000", Loop).ConvertUnit(ICX)
	require.NoError(t, err)
	require.Equal(t, "1", icx.String())

	_, err = MustOf(1, ICX).ConvertUnit(-3)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestString(t *testing.T) {
	cases := []struct {
		value    string
		digit    uint32
		expected string
	}{
		{"1.50", ICX, "1.5"},
		{"1.000", Gloop, "1"},
		{"0.0", Loop, "0"},
		{"1e3", ICX, "1000"},
		{"-2.500", 3, "-2.5"},
	}

	for _, c := range cases {
		t.Run(c.value, func(t *testing.T) {
			a, err := Of(c.value, c.digit)
			require.NoError(t, err)
			require.Equal(t, c.expected, a.String())

			same, err := a.ConvertUnit(c.digit)
			require.NoError(t, err)
			require.Equal(t, c.expected, same.String())
			require.Equal(t, 0, a.Cmp(same))
		})
	}

	_, err := Of("1e200000000", ICX)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAmountAsNumericValue(t *testing.T) {
	hexValue, err := converter.ToHexNumber(MustOf("1", ICX))
	require.NoError(t, err)
	require.Equal(t, "0xde0b6b3a7640000", hexValue)
}
