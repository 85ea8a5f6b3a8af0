package provider

import (
	"context"

	"go.uber.org/zap/zapcore"
)

// ChainProvider submits and queries CosmWasm contracts on a single chain.
// Every state changing call returns once the transaction is included in a block.
type ChainProvider interface {
	ChainID() string
	// Address returns the bech32 address transactions are signed with.
	Address() string

	// ExecuteContract executes msg on contract.
	ExecuteContract(ctx context.Context, contract string, msg []byte) (*TxResponse, error)
	// InstantiateContract creates a contract from codeID and returns its address.
	InstantiateContract(ctx context.Context, codeID uint64, label string, msg []byte) (string, error)
	// InstantiateContract2 creates a contract from codeID at the address determined by saltHex.
	InstantiateContract2(ctx context.Context, codeID uint64, label string, msg []byte, saltHex string) (string, error)

	// QuerySmart runs a smart query against contract and returns the raw response.
	QuerySmart(ctx context.Context, contract string, query []byte) ([]byte, error)
	// CodeHash returns the hex encoded sha256 checksum of the wasm code stored under codeID.
	CodeHash(ctx context.Context, codeID uint64) (string, error)
}

// TxResponse is the confirmed result of a transaction.
type TxResponse struct {
	Height    int64   `json:"height"`
	TxHash    string  `json:"tx_hash"`
	Codespace string  `json:"codespace,omitempty"`
	Code      uint32  `json:"code"`
	GasUsed   int64   `json:"gas_used"`
	Events    []Event `json:"events,omitempty"`
}

func (r TxResponse) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("height", r.Height)
	enc.AddString("tx_hash", r.TxHash)
	enc.AddString("codespace", r.Codespace)
	enc.AddUint32("code", r.Code)
	enc.AddInt64("gas_used", r.GasUsed)
	return nil
}

// Event is a transaction event with its attributes.
type Event struct {
	EventType  string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// ContractAddress returns the first contract address attribute found in events,
// scanning events in order.
func (r TxResponse) ContractAddress(attributeKey string) (string, bool) {
	for _, e := range r.Events {
		if addr, ok := e.Attributes[attributeKey]; ok && addr != "" {
			return addr, true
		}
	}
	return "", false
}
