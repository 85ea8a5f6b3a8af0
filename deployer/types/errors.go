package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

var (
	// ErrInvalidEncoding is returned for malformed bech32, checksum or hex input.
	ErrInvalidEncoding = sdkerrors.Register(Codespace, 2, "invalid encoding")
	// ErrWrongNetwork is returned when an address decodes with a foreign bech32 prefix.
	ErrWrongNetwork = sdkerrors.Register(Codespace, 3, "wrong bech32 prefix")
	// ErrInvalidLength is returned when a canonical address is not 1 to 255 bytes long.
	ErrInvalidLength = sdkerrors.Register(Codespace, 4, "invalid canonical address length")
	// ErrAddressNotFound is returned when a confirmed instantiation carries no contract address attribute.
	ErrAddressNotFound = sdkerrors.Register(Codespace, 5, "contract address not found in transaction events")
	// ErrUpstreamFailure is returned when the node or its RPC reports a failure.
	ErrUpstreamFailure = sdkerrors.Register(Codespace, 6, "upstream failure")
	// ErrMalformedAuthorizationData is returned when published authorizations cannot be parsed at all.
	ErrMalformedAuthorizationData = sdkerrors.Register(Codespace, 7, "malformed authorization data")
	// ErrEncoding is returned when the configured bech32 prefix cannot be used for encoding.
	ErrEncoding = sdkerrors.Register(Codespace, 8, "bech32 encoding error")
	// ErrInvalidPool is returned for a pool description that cannot be parsed.
	ErrInvalidPool = sdkerrors.Register(Codespace, 9, "invalid pool description")
	// ErrPredictionMismatch is returned when instantiate2 lands on an address other than the predicted one.
	ErrPredictionMismatch = sdkerrors.Register(Codespace, 10, "predicted address mismatch")
)
