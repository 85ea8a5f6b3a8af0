package types

import (
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// LPTokenKind tells how a pool accounts for its liquidity shares.
type LPTokenKind string

const (
	LPTokenNative LPTokenKind = "native"
	LPTokenCw20   LPTokenKind = "cw20"
)

// Well known pair types. Any other pair name is passed to the pool as a custom pair.
const (
	PairXyk          = "xyk"
	PairStable       = "stable"
	PairConcentrated = "concentrated"
)

const maxUint128Bits = 128

// PoolType identifies the liquidity share accounting and the pricing curve of a pool.
type PoolType struct {
	LPToken LPTokenKind `yaml:"lp-token" json:"lp-token"`
	Pair    string      `yaml:"pair" json:"pair"`
}

// DefaultPoolType is used for pool descriptions that do not carry a pool type tag.
var DefaultPoolType = PoolType{LPToken: LPTokenCw20, Pair: PairXyk}

func (pt PoolType) String() string {
	return fmt.Sprintf("%s:%s", pt.LPToken, pt.Pair)
}

// ParsePoolType parses a "<lp-token>:<pair>" tag such as "native:xyk" or "cw20:concentrated".
func ParsePoolType(s string) (PoolType, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return PoolType{}, sdkerrors.Wrapf(ErrInvalidPool, "pool type %q, expected <native|cw20>:<pair>", s)
	}

	kind := LPTokenKind(strings.ToLower(parts[0]))
	switch kind {
	case LPTokenNative, LPTokenCw20:
	default:
		return PoolType{}, sdkerrors.Wrapf(ErrInvalidPool, "unknown lp token kind %q", parts[0])
	}

	return PoolType{LPToken: kind, Pair: parts[1]}, nil
}

// PoolInfo describes one liquidity venue a program provides liquidity to.
type PoolInfo struct {
	Address  string   `yaml:"address" json:"address"`
	AmountA  sdk.Int  `yaml:"amount-a" json:"amount-a"`
	AmountB  sdk.Int  `yaml:"amount-b" json:"amount-b"`
	DenomA   string   `yaml:"denom-a" json:"denom-a"`
	DenomB   string   `yaml:"denom-b" json:"denom-b"`
	PoolType PoolType `yaml:"pool-type" json:"pool-type"`
}

// ParsePool parses a pool given as "address,amount_a,amount_b,denom_a,denom_b[,pool_type]".
// The pool type tag is optional; pools without one use DefaultPoolType.
func ParsePool(s string) (PoolInfo, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 5 && len(parts) != 6 {
		return PoolInfo{}, sdkerrors.Wrapf(ErrInvalidPool,
			"%q, expected address,amount_a,amount_b,denom_a,denom_b[,pool_type]", s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	amountA, err := parseUint128(parts[1])
	if err != nil {
		return PoolInfo{}, sdkerrors.Wrapf(ErrInvalidPool, "amount_a: %v", err)
	}
	amountB, err := parseUint128(parts[2])
	if err != nil {
		return PoolInfo{}, sdkerrors.Wrapf(ErrInvalidPool, "amount_b: %v", err)
	}

	pool := PoolInfo{
		Address:  parts[0],
		AmountA:  amountA,
		AmountB:  amountB,
		DenomA:   parts[3],
		DenomB:   parts[4],
		PoolType: DefaultPoolType,
	}
	if pool.Address == "" || pool.DenomA == "" || pool.DenomB == "" {
		return PoolInfo{}, sdkerrors.Wrapf(ErrInvalidPool, "%q has empty fields", s)
	}

	if len(parts) == 6 {
		if pool.PoolType, err = ParsePoolType(parts[5]); err != nil {
			return PoolInfo{}, err
		}
	}

	return pool, nil
}

// ParsePools parses every pool description, failing on the first invalid one.
func ParsePools(specs []string) ([]PoolInfo, error) {
	pools := make([]PoolInfo, 0, len(specs))
	for _, s := range specs {
		p, err := ParsePool(s)
		if err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, nil
}

func parseUint128(s string) (sdk.Int, error) {
	if s == "" {
		return sdk.Int{}, fmt.Errorf("empty amount")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return sdk.Int{}, fmt.Errorf("invalid amount %q", s)
		}
	}

	amount, ok := sdk.NewIntFromString(s)
	if !ok {
		return sdk.Int{}, fmt.Errorf("invalid amount %q", s)
	}
	if amount.BigInt().BitLen() > maxUint128Bits {
		return sdk.Int{}, fmt.Errorf("amount %q overflows uint128", s)
	}
	return amount, nil
}
