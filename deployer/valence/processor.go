package valence

// ProcessorInstantiateMsg creates a processor that only accepts messages from the
// authorization contract at AuthorizationContract.
type ProcessorInstantiateMsg struct {
	AuthorizationContract string `json:"authorization_contract"`
}

// ProcessorExecuteMsg is the execute message of the processor.
type ProcessorExecuteMsg struct {
	PermissionlessAction *ProcessorPermissionlessAction `json:"permissionless_action,omitempty"`
}

type ProcessorPermissionlessAction struct {
	Tick *struct{} `json:"tick,omitempty"`
}

// NewTickMsg makes the processor execute the next queued batch.
func NewTickMsg() ProcessorExecuteMsg {
	return ProcessorExecuteMsg{
		PermissionlessAction: &ProcessorPermissionlessAction{Tick: &struct{}{}},
	}
}

// FunctionMsg is the message the processor sends to a library, wrapped in process_function.
type FunctionMsg struct {
	ProcessFunction LibraryFunction `json:"process_function"`
}

// LibraryFunction holds exactly one library operation.
type LibraryFunction struct {
	Split                       *struct{}         `json:"split,omitempty"`
	ProvideDoubleSidedLiquidity *PoolRatioOptions `json:"provide_double_sided_liquidity,omitempty"`
	WithdrawLiquidity           *PoolRatioOptions `json:"withdraw_liquidity,omitempty"`
}

// PoolRatioOptions bounds the pool ratio an LP operation accepts. A nil range means any ratio.
type PoolRatioOptions struct {
	ExpectedPoolRatioRange *DecimalRange `json:"expected_pool_ratio_range"`
}

type DecimalRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// NewSplitMsg triggers the splitter.
func NewSplitMsg() FunctionMsg {
	return FunctionMsg{ProcessFunction: LibraryFunction{Split: &struct{}{}}}
}

// NewProvideDoubleSidedLiquidityMsg triggers an LPer with no pool ratio constraint.
func NewProvideDoubleSidedLiquidityMsg() FunctionMsg {
	return FunctionMsg{ProcessFunction: LibraryFunction{ProvideDoubleSidedLiquidity: &PoolRatioOptions{}}}
}

// NewWithdrawLiquidityMsg triggers a withdrawer with no pool ratio constraint.
func NewWithdrawLiquidityMsg() FunctionMsg {
	return FunctionMsg{ProcessFunction: LibraryFunction{WithdrawLiquidity: &PoolRatioOptions{}}}
}
