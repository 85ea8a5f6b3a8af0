// Package authorization builds the subroutines a program publishes on its authorization
// contract and rebuilds executable messages from the ones it finds there.
package authorization

import (
	"github.com/valence-tools/lpdeployer/deployer/valence"
)

const (
	// DispatchName is the execute message name every library call goes through.
	DispatchName = "process_function"

	// DomainMain is the domain of contracts living on the same chain as the authorization contract.
	DomainMain = "main"
	// MessageTypeExecute marks a function as a CosmWasm execute message.
	MessageTypeExecute = "cosmwasm_execute_msg"
)

// FunctionID is an operation of the closed library vocabulary.
type FunctionID string

const (
	FunctionSplit                       FunctionID = "split"
	FunctionProvideDoubleSidedLiquidity FunctionID = "provide_double_sided_liquidity"
	FunctionWithdrawLiquidity           FunctionID = "withdraw_liquidity"
)

// Subroutine is the ordered set of calls one authorization allows. Only atomic
// subroutines are built; all functions apply together or not at all.
type Subroutine struct {
	Atomic *AtomicSubroutine `json:"atomic,omitempty"`
}

type AtomicSubroutine struct {
	Functions      []AtomicFunction `json:"functions"`
	RetryLogic     *struct{}        `json:"retry_logic"`
	ExpirationTime *uint64          `json:"expiration_time"`
}

// AtomicFunction is a single gated call to a library.
type AtomicFunction struct {
	Domain          string                     `json:"domain"`
	MessageDetails  MessageDetails             `json:"message_details"`
	ContractAddress valence.LibraryAccountType `json:"contract_address"`
}

type MessageDetails struct {
	MessageType string  `json:"message_type"`
	Message     Message `json:"message"`
}

type Message struct {
	Name               string             `json:"name"`
	ParamsRestrictions []ParamRestriction `json:"params_restrictions"`
}

// ParamRestriction constrains the keys a message must carry.
type ParamRestriction struct {
	MustBeIncluded []string `json:"must_be_included"`
}

// Functions returns the functions of the subroutine in call order.
func (s Subroutine) Functions() []AtomicFunction {
	if s.Atomic == nil {
		return nil
	}
	return s.Atomic.Functions
}

// NewAtomicFunction gates a process_function call carrying fn on contract.
func NewAtomicFunction(contract string, fn FunctionID) AtomicFunction {
	return AtomicFunction{
		Domain: DomainMain,
		MessageDetails: MessageDetails{
			MessageType: MessageTypeExecute,
			Message: Message{
				Name: DispatchName,
				ParamsRestrictions: []ParamRestriction{
					{MustBeIncluded: []string{DispatchName, string(fn)}},
				},
			},
		},
		ContractAddress: valence.AccountAddr(contract),
	}
}

// Builder accumulates the functions of an atomic subroutine in call order.
// It does not validate what it is given.
type Builder struct {
	functions []AtomicFunction
}

func NewBuilder() *Builder {
	return &Builder{functions: make([]AtomicFunction, 0, 4)}
}

// AddFunction appends a call of fn on contract.
func (b *Builder) AddFunction(contract string, fn FunctionID) *Builder {
	b.functions = append(b.functions, NewAtomicFunction(contract, fn))
	return b
}

// Len returns the number of functions added so far.
func (b *Builder) Len() int {
	return len(b.functions)
}

// Build returns the subroutine. Later calls to AddFunction do not affect it.
func (b *Builder) Build() Subroutine {
	functions := make([]AtomicFunction, len(b.functions))
	copy(functions, b.functions)
	return Subroutine{Atomic: &AtomicSubroutine{Functions: functions}}
}

// DeploySubroutine splits the input funds and then provides liquidity through every LPer,
// in the order given.
func DeploySubroutine(splitter string, lpers []string) Subroutine {
	b := NewBuilder().AddFunction(splitter, FunctionSplit)
	for _, lper := range lpers {
		b.AddFunction(lper, FunctionProvideDoubleSidedLiquidity)
	}
	return b.Build()
}

// WithdrawSubroutine withdraws liquidity through every withdrawer, in the order given.
func WithdrawSubroutine(withdrawers []string) Subroutine {
	b := NewBuilder()
	for _, w := range withdrawers {
		b.AddFunction(w, FunctionWithdrawLiquidity)
	}
	return b.Build()
}
