package valence

import (
	"encoding/json"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/valence-tools/lpdeployer/deployer/types"
)

// LibraryInstantiateMsg creates a library owned by owner that only processor may trigger.
type LibraryInstantiateMsg struct {
	Owner     string      `json:"owner"`
	Processor string      `json:"processor"`
	Config    interface{} `json:"config"`
}

// UncheckedDenom is a denomination that is validated by the library at instantiation.
type UncheckedDenom struct {
	Native string `json:"native,omitempty"`
	Cw20   string `json:"cw20,omitempty"`
}

// NativeDenom references a bank denomination.
func NativeDenom(denom string) UncheckedDenom {
	return UncheckedDenom{Native: denom}
}

// SplitterConfig is the library config of the splitter.
type SplitterConfig struct {
	InputAddr LibraryAccountType `json:"input_addr"`
	Splits    []SplitConfig      `json:"splits"`
}

type SplitConfig struct {
	Denom   UncheckedDenom     `json:"denom"`
	Account LibraryAccountType `json:"account"`
	Amount  SplitAmount        `json:"amount"`
}

type SplitAmount struct {
	FixedAmount *sdk.Int `json:"fixed_amount,omitempty"`
}

// NewSplitterConfig sends, for every pool, amount_a of denom_a and amount_b of denom_b
// from input to that pool's output account. outputs must be in pool order.
func NewSplitterConfig(input string, pools []types.PoolInfo, outputs []string) SplitterConfig {
	splits := make([]SplitConfig, 0, 2*len(pools))
	for i, pool := range pools {
		amountA, amountB := pool.AmountA, pool.AmountB
		splits = append(splits,
			SplitConfig{
				Denom:   NativeDenom(pool.DenomA),
				Account: AccountAddr(outputs[i]),
				Amount:  SplitAmount{FixedAmount: &amountA},
			},
			SplitConfig{
				Denom:   NativeDenom(pool.DenomB),
				Account: AccountAddr(outputs[i]),
				Amount:  SplitAmount{FixedAmount: &amountB},
			},
		)
	}

	return SplitterConfig{
		InputAddr: AccountAddr(input),
		Splits:    splits,
	}
}

// AssetData names the two assets of a pool.
type AssetData struct {
	Asset1 string `json:"asset1"`
	Asset2 string `json:"asset2"`
}

// AstroportPoolType serialises a pool type the way the Astroport libraries expect it,
// e.g. {"cw20_lp_token":{"xyk":{}}} or {"native_lp_token":{"custom":"concentrated"}}.
type AstroportPoolType types.PoolType

func (pt AstroportPoolType) MarshalJSON() ([]byte, error) {
	var pair interface{}
	switch pt.Pair {
	case types.PairXyk, types.PairStable:
		pair = map[string]struct{}{pt.Pair: {}}
	default:
		pair = map[string]string{"custom": pt.Pair}
	}

	key := "cw20_lp_token"
	if pt.LPToken == types.LPTokenNative {
		key = "native_lp_token"
	}
	return json.Marshal(map[string]interface{}{key: pair})
}

// LiquidityProviderConfig tells the LPer which pool shape it provides liquidity to.
type LiquidityProviderConfig struct {
	PoolType  AstroportPoolType `json:"pool_type"`
	AssetData AssetData         `json:"asset_data"`
	MaxSpread *string           `json:"max_spread"`
}

// AstroportLPerConfig is the library config of the Astroport liquidity provider.
type AstroportLPerConfig struct {
	InputAddr  LibraryAccountType      `json:"input_addr"`
	OutputAddr LibraryAccountType      `json:"output_addr"`
	PoolAddr   string                  `json:"pool_addr"`
	LPConfig   LiquidityProviderConfig `json:"lp_config"`
}

// NewAstroportLPerConfig provides liquidity to pool from input and sends the shares to output.
func NewAstroportLPerConfig(pool types.PoolInfo, input, output string) AstroportLPerConfig {
	return AstroportLPerConfig{
		InputAddr:  AccountAddr(input),
		OutputAddr: AccountAddr(output),
		PoolAddr:   pool.Address,
		LPConfig: LiquidityProviderConfig{
			PoolType:  AstroportPoolType(pool.PoolType),
			AssetData: AssetData{Asset1: pool.DenomA, Asset2: pool.DenomB},
		},
	}
}

type LiquidityWithdrawerConfig struct {
	PoolType  AstroportPoolType `json:"pool_type"`
	AssetData AssetData         `json:"asset_data"`
}

// AstroportWithdrawerConfig is the library config of the Astroport liquidity withdrawer.
type AstroportWithdrawerConfig struct {
	InputAddr        LibraryAccountType        `json:"input_addr"`
	OutputAddr       LibraryAccountType        `json:"output_addr"`
	PoolAddr         string                    `json:"pool_addr"`
	WithdrawerConfig LiquidityWithdrawerConfig `json:"withdrawer_config"`
}

// NewAstroportWithdrawerConfig withdraws the shares held by input from pool and sends the
// assets to output.
func NewAstroportWithdrawerConfig(pool types.PoolInfo, input, output string) AstroportWithdrawerConfig {
	return AstroportWithdrawerConfig{
		InputAddr:  AccountAddr(input),
		OutputAddr: AccountAddr(output),
		PoolAddr:   pool.Address,
		WithdrawerConfig: LiquidityWithdrawerConfig{
			PoolType:  AstroportPoolType(pool.PoolType),
			AssetData: AssetData{Asset1: pool.DenomA, Asset2: pool.DenomB},
		},
	}
}
