// Package address converts between bech32 addresses and canonical address bytes, and
// predicts the addresses instantiate2 assigns to contracts that do not exist yet.
package address

import (
	"strings"

	"github.com/cosmos/cosmos-sdk/types/bech32"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/valence-tools/lpdeployer/deployer/types"
)

const (
	minCanonicalLength = 1
	maxCanonicalLength = 255

	// bech32 human readable parts are 1 to 83 printable US-ASCII characters.
	maxPrefixLength = 83
)

// Codec converts addresses of a single bech32 network.
type Codec struct {
	prefix string
}

// NewCodec returns a codec bound to the given bech32 prefix.
func NewCodec(prefix string) Codec {
	return Codec{prefix: prefix}
}

// Prefix returns the bech32 prefix the codec is bound to.
func (c Codec) Prefix() string {
	return c.prefix
}

// Canonicalize decodes a bech32 address of the codec's network into its canonical bytes.
// All upper case addresses are accepted; Humanize always returns the lower case form, so
// they round trip to their lower case spelling.
func (c Codec) Canonicalize(addr string) ([]byte, error) {
	hrp, bz, err := bech32.DecodeAndConvert(addr)
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrInvalidEncoding, "%q: %v", addr, err)
	}

	if !strings.EqualFold(hrp, c.prefix) {
		return nil, sdkerrors.Wrapf(types.ErrWrongNetwork, "%q has prefix %q, expected %q", addr, hrp, c.prefix)
	}

	if err := validateLength(bz); err != nil {
		return nil, err
	}

	return bz, nil
}

// Humanize encodes canonical address bytes as a bech32 address of the codec's network.
func (c Codec) Humanize(bz []byte) (string, error) {
	if err := validateLength(bz); err != nil {
		return "", err
	}

	if err := validatePrefix(c.prefix); err != nil {
		return "", err
	}

	addr, err := bech32.ConvertAndEncode(c.prefix, bz)
	if err != nil {
		return "", sdkerrors.Wrapf(types.ErrEncoding, "prefix %q: %v", c.prefix, err)
	}
	return addr, nil
}

// Validate reports whether addr is a well formed address of the codec's network.
func (c Codec) Validate(addr string) error {
	_, err := c.Canonicalize(addr)
	return err
}

func validateLength(bz []byte) error {
	if n := len(bz); n < minCanonicalLength || n > maxCanonicalLength {
		return sdkerrors.Wrapf(types.ErrInvalidLength, "got %d bytes, expected %d to %d",
			n, minCanonicalLength, maxCanonicalLength)
	}
	return nil
}

func validatePrefix(prefix string) error {
	if prefix == "" || len(prefix) > maxPrefixLength {
		return sdkerrors.Wrapf(types.ErrEncoding, "prefix %q has invalid length", prefix)
	}
	if prefix != strings.ToLower(prefix) {
		return sdkerrors.Wrapf(types.ErrEncoding, "prefix %q is not lower case", prefix)
	}
	for _, r := range prefix {
		if r < 33 || r > 126 {
			return sdkerrors.Wrapf(types.ErrEncoding, "prefix %q contains invalid characters", prefix)
		}
	}
	return nil
}
