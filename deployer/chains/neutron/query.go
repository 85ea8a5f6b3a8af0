package neutron

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/valence-tools/lpdeployer/deployer/types"
)

const checksumLength = 32

// QuerySmart runs a smart query and returns the node's JSON output, {"data": ...}.
func (np *NeutronProvider) QuerySmart(ctx context.Context, contract string, query []byte) ([]byte, error) {
	args := append([]string{"query", "wasm", "contract-state", "smart", contract, string(query)}, np.queryFlags()...)
	out, err := np.run(ctx, args...)
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrUpstreamFailure, "querying %s: %v", contract, err)
	}
	return out, nil
}

type codeInfoResponse struct {
	Checksum string `json:"checksum"`
	// DataHash is the field name used by wasmd before v0.40.
	DataHash string `json:"data_hash"`
}

// CodeHash returns the lower case hex checksum of the code stored under codeID.
func (np *NeutronProvider) CodeHash(ctx context.Context, codeID uint64) (string, error) {
	args := append([]string{"query", "wasm", "code-info", strconv.FormatUint(codeID, 10)}, np.queryFlags()...)
	out, err := np.run(ctx, args...)
	if err != nil {
		return "", sdkerrors.Wrapf(types.ErrUpstreamFailure, "querying code %d: %v", codeID, err)
	}

	var info codeInfoResponse
	if err := json.Unmarshal(out, &info); err != nil {
		return "", sdkerrors.Wrapf(types.ErrUpstreamFailure, "unexpected code-info output %q: %v", out, err)
	}

	checksum := info.Checksum
	if checksum == "" {
		checksum = info.DataHash
	}
	return normalizeChecksum(checksum)
}

// normalizeChecksum accepts the hex (any case) or base64 checksum encodings nodes emit.
func normalizeChecksum(s string) (string, error) {
	if bz, err := hex.DecodeString(s); err == nil && len(bz) == checksumLength {
		return strings.ToLower(s), nil
	}
	if bz, err := base64.StdEncoding.DecodeString(s); err == nil && len(bz) == checksumLength {
		return hex.EncodeToString(bz), nil
	}
	return "", sdkerrors.Wrapf(types.ErrInvalidEncoding, "code checksum %q is not a %d byte hash", s, checksumLength)
}
