package address_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/stretchr/testify/require"

	"github.com/valence-tools/lpdeployer/deployer/address"
	"github.com/valence-tools/lpdeployer/deployer/types"
)

var neutron = address.NewCodec(types.DefaultBech32Prefix)

func mustEncode(t *testing.T, prefix string, bz []byte) string {
	t.Helper()
	addr, err := bech32.ConvertAndEncode(prefix, bz)
	require.NoError(t, err)
	return addr
}

func TestCanonicalizeHumanizeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 20, 32, 64, 255} {
		bz := bytes.Repeat([]byte{byte(n)}, n)

		addr, err := neutron.Humanize(bz)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(addr, "neutron1"))

		back, err := neutron.Canonicalize(addr)
		require.NoError(t, err)
		require.Equal(t, bz, back)

		again, err := neutron.Humanize(back)
		require.NoError(t, err)
		require.Equal(t, addr, again)
	}
}

func TestCanonicalizeAcceptsUpperCase(t *testing.T) {
	t.Parallel()

	bz := bytes.Repeat([]byte{0xab}, 20)
	addr := mustEncode(t, "neutron", bz)

	got, err := neutron.Canonicalize(strings.ToUpper(addr))
	require.NoError(t, err)
	require.Equal(t, bz, got)

	back, err := neutron.Humanize(got)
	require.NoError(t, err)
	require.Equal(t, addr, back)
}

func TestCanonicalizeWrongNetwork(t *testing.T) {
	t.Parallel()

	addr := mustEncode(t, "cosmos", bytes.Repeat([]byte{0x01}, 20))

	_, err := neutron.Canonicalize(addr)
	require.ErrorIs(t, err, types.ErrWrongNetwork)
}

func TestCanonicalizeInvalidEncoding(t *testing.T) {
	t.Parallel()

	valid := mustEncode(t, "neutron", bytes.Repeat([]byte{0x02}, 20))

	// Replace the last checksum character with a different bech32 character.
	last := valid[len(valid)-1]
	replacement := byte('q')
	if last == 'q' {
		replacement = 'p'
	}
	corrupted := valid[:len(valid)-1] + string(replacement)

	for name, in := range map[string]string{
		"bad checksum": corrupted,
		"no separator": "neutronqqqqqq",
		"empty":        "",
		"mixed case":   "Neutron" + valid[len("neutron"):],
	} {
		in := in
		t.Run(name, func(t *testing.T) {
			_, err := neutron.Canonicalize(in)
			require.ErrorIs(t, err, types.ErrInvalidEncoding)
		})
	}
}

func TestCanonicalizeInvalidLength(t *testing.T) {
	t.Parallel()

	for name, bz := range map[string][]byte{
		"empty":    nil,
		"too long": bytes.Repeat([]byte{0x03}, 256),
	} {
		_, err := neutron.Canonicalize(mustEncode(t, "neutron", bz))
		require.ErrorIs(t, err, types.ErrInvalidLength, name)
	}
}

func TestHumanizeInvalidLength(t *testing.T) {
	t.Parallel()

	_, err := neutron.Humanize(nil)
	require.ErrorIs(t, err, types.ErrInvalidLength)

	_, err = neutron.Humanize(bytes.Repeat([]byte{0x04}, 256))
	require.ErrorIs(t, err, types.ErrInvalidLength)
}

func TestHumanizeMalformedPrefix(t *testing.T) {
	t.Parallel()

	bz := bytes.Repeat([]byte{0x05}, 20)
	for _, prefix := range []string{"", "Neutron", "neu tron", strings.Repeat("n", 84)} {
		_, err := address.NewCodec(prefix).Humanize(bz)
		require.ErrorIs(t, err, types.ErrEncoding, "prefix %q", prefix)
	}
}
