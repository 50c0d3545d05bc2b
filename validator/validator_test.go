package validator

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

func TestAddresses(t *testing.T) {
	cases := []struct {
		name    string
		address string
		isEoa   bool
		isScore bool
	}{
		{"eoa", "hx" + strings.Repeat("a1", 20), true, false},
		{"score", "cx" + strings.Repeat("0", 40), false, true},
		{"uppercase", "hx" + strings.Repeat("A1", 20), false, false},
		{"short", "hx" + strings.Repeat("a", 39), false, false},
		{"long", "cx" + strings.Repeat("a", 41), false, false},
		{"wrong prefix", "0x" + strings.Repeat("a", 40), false, false},
		{"empty", "", false, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.isEoa, IsEoaAddress(c.address))
			require.Equal(t, c.isScore, IsScoreAddress(c.address))
			require.Equal(t, c.isEoa || c.isScore, IsAddress(c.address))
			require.Equal(t, c.isEoa || c.isScore, Default.IsAddress(c.address))
		})
	}
}

func TestKeys(t *testing.T) {
	privateKey, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	privateKeyBytes := privateKey.Serialize()

	require.True(t, IsPrivateKey(privateKeyBytes))
	require.True(t, IsPrivateKeyHex("0x"+hex.EncodeToString(privateKeyBytes)))
	require.False(t, IsPrivateKey(make([]byte, 32)))
	require.False(t, IsPrivateKey(privateKeyBytes[:31]))
	require.False(t, IsPrivateKeyHex("zz"))

	uncompressed := privateKey.PubKey().SerializeUncompressed()

	require.True(t, IsPublicKey(uncompressed))
	require.True(t, IsPublicKey(uncompressed[1:]))
	require.True(t, IsPublicKey(privateKey.PubKey().SerializeCompressed()))
	require.True(t, IsPublicKeyHex(hex.EncodeToString(uncompressed)))
	require.False(t, IsPublicKey(make([]byte, 65)))
}
