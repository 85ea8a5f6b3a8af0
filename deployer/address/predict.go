package address

import (
	"encoding/hex"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkaddress "github.com/cosmos/cosmos-sdk/types/address"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/valence-tools/lpdeployer/deployer/types"
)

const (
	// wasmModuleName is the module name wasmd derives contract addresses under.
	wasmModuleName = "wasm"

	// ChecksumLength is the length of a wasm code checksum (sha256).
	ChecksumLength = 32
	// ContractAddressLength is the length of an instantiate2 contract address.
	ContractAddressLength = 32

	MinSaltLength = 1
	MaxSaltLength = 64
)

// Predict returns the address instantiate2 will assign to a contract created by deployer
// from the code with the given checksum and salt. Salt and checksum are hex encoded.
//
// The same salt must be passed to the instantiate2 transaction for the prediction to hold.
func (c Codec) Predict(deployer, saltHex, checksumHex string) (string, error) {
	creator, err := c.Canonicalize(deployer)
	if err != nil {
		return "", err
	}

	salt, err := decodeHex("salt", saltHex)
	if err != nil {
		return "", err
	}
	checksum, err := decodeHex("code hash", checksumHex)
	if err != nil {
		return "", err
	}

	addr, err := BuildContractAddressPredictable(checksum, creator, salt, nil)
	if err != nil {
		return "", err
	}
	return c.Humanize(addr)
}

// BuildContractAddressPredictable derives the canonical instantiate2 address:
//
//	module("wasm", len(checksum)|checksum|len(creator)|creator|len(salt)|salt|len(initMsg)|initMsg)[:32]
//
// with every length an 8 byte big endian prefix. initMsg is empty unless the contract
// was instantiated with fix_msg set.
func BuildContractAddressPredictable(checksum, creator, salt, initMsg []byte) ([]byte, error) {
	if len(checksum) != ChecksumLength {
		return nil, sdkerrors.Wrapf(types.ErrInvalidEncoding, "code hash must be %d bytes, got %d", ChecksumLength, len(checksum))
	}
	if err := validateLength(creator); err != nil {
		return nil, err
	}
	if n := len(salt); n < MinSaltLength || n > MaxSaltLength {
		return nil, sdkerrors.Wrapf(types.ErrInvalidEncoding, "salt must be %d to %d bytes, got %d", MinSaltLength, MaxSaltLength, n)
	}

	key := make([]byte, 0, 4*8+len(checksum)+len(creator)+len(salt)+len(initMsg))
	key = append(key, lengthPrefix(checksum)...)
	key = append(key, lengthPrefix(creator)...)
	key = append(key, lengthPrefix(salt)...)
	key = append(key, lengthPrefix(initMsg)...)

	return sdkaddress.Module(wasmModuleName, key)[:ContractAddressLength], nil
}

func lengthPrefix(bz []byte) []byte {
	return append(sdk.Uint64ToBigEndian(uint64(len(bz))), bz...)
}

func decodeHex(what, s string) ([]byte, error) {
	bz, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrInvalidEncoding, "%s %q is not hex: %v", what, s, err)
	}
	return bz, nil
}
