package neutron

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/avast/retry-go/v4"
	abci "github.com/cometbft/cometbft/abci/types"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/valence-tools/lpdeployer/deployer/provider"
	"github.com/valence-tools/lpdeployer/deployer/types"
)

var rtyErr = retry.LastErrorOnly(true)

const errTxIndexingDisabled = "transaction indexing is disabled"

// broadcastResponse is the part of the node's sync broadcast output we rely on.
type broadcastResponse struct {
	TxHash    string `json:"txhash"`
	Codespace string `json:"codespace"`
	Code      uint32 `json:"code"`
	RawLog    string `json:"raw_log"`
}

// ExecuteContract executes msg on contract and waits for block inclusion.
func (np *NeutronProvider) ExecuteContract(ctx context.Context, contract string, msg []byte) (*provider.TxResponse, error) {
	args := append([]string{"tx", "wasm", "execute", contract, string(msg)}, np.txFlags()...)
	return np.sendTx(ctx, "execute", args)
}

// InstantiateContract instantiates codeID and returns the address the chain assigned.
func (np *NeutronProvider) InstantiateContract(ctx context.Context, codeID uint64, label string, msg []byte) (string, error) {
	args := []string{"tx", "wasm", "instantiate", strconv.FormatUint(codeID, 10), string(msg), "--label", label}
	args = append(args, np.adminFlags()...)
	args = append(args, np.txFlags()...)
	return np.instantiate(ctx, "instantiate", args)
}

// InstantiateContract2 instantiates codeID with a hex encoded salt so that the address is
// known in advance.
func (np *NeutronProvider) InstantiateContract2(ctx context.Context, codeID uint64, label string, msg []byte, saltHex string) (string, error) {
	args := []string{"tx", "wasm", "instantiate2", strconv.FormatUint(codeID, 10), string(msg), saltHex, "--hex", "--label", label}
	args = append(args, np.adminFlags()...)
	args = append(args, np.txFlags()...)
	return np.instantiate(ctx, "instantiate2", args)
}

func (np *NeutronProvider) instantiate(ctx context.Context, msgType string, args []string) (string, error) {
	res, err := np.sendTx(ctx, msgType, args)
	if err != nil {
		return "", err
	}
	addr, ok := res.ContractAddress(types.ContractAddressAttributeKey)
	if !ok {
		return "", sdkerrors.Wrapf(types.ErrAddressNotFound, "tx %s", res.TxHash)
	}
	return addr, nil
}

// sendTx broadcasts through the node binary and waits until the transaction is in a block.
func (np *NeutronProvider) sendTx(ctx context.Context, msgType string, args []string) (*provider.TxResponse, error) {
	out, err := np.run(ctx, args...)
	if err != nil {
		np.LogFailedTx(nil, err, msgType)
		return nil, sdkerrors.Wrapf(types.ErrUpstreamFailure, "broadcasting %s: %v", msgType, err)
	}

	var br broadcastResponse
	if err := json.Unmarshal(lastJSONLine(out), &br); err != nil {
		return nil, sdkerrors.Wrapf(types.ErrUpstreamFailure, "unexpected broadcast output %q: %v", out, err)
	}
	if br.Code != 0 {
		err := sdkerrors.Wrapf(types.ErrUpstreamFailure, "%s rejected with code %d (%s): %s", msgType, br.Code, br.Codespace, br.RawLog)
		np.LogFailedTx(nil, err, msgType)
		return nil, err
	}

	res, err := np.waitForTx(ctx, br.TxHash)
	if err != nil {
		np.LogFailedTx(nil, err, msgType)
		return nil, err
	}
	if res.Code != 0 {
		np.LogFailedTx(res, nil, msgType)
		return res, sdkerrors.Wrapf(types.ErrUpstreamFailure, "%s failed with code %d (%s)", msgType, res.Code, res.Codespace)
	}

	np.LogSuccessTx(res, msgType)
	return res, nil
}

// waitForTx polls the RPC node until the transaction is found or the inclusion timeout runs out.
func (np *NeutronProvider) waitForTx(ctx context.Context, txHash string) (*provider.TxResponse, error) {
	hash, err := hex.DecodeString(txHash)
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrUpstreamFailure, "invalid tx hash %q", txHash)
	}

	var res *coretypes.ResultTx
	if err := retry.Do(func() error {
		r, err := np.RPCClient.Tx(ctx, hash, false)
		if err != nil {
			if strings.Contains(err.Error(), errTxIndexingDisabled) {
				return retry.Unrecoverable(fmt.Errorf("cannot confirm tx because transaction indexing is disabled on %s", np.PCfg.RPCAddr))
			}
			return err
		}
		if r == nil {
			return errors.New("tx not found")
		}
		res = r
		return nil
	}, retry.Context(ctx), retry.Attempts(np.inclusionAttempts), retry.Delay(np.pollInterval),
		retry.DelayType(retry.FixedDelay), rtyErr, retry.OnRetry(func(n uint, err error) {
			np.log.Debug(
				"Waiting for block inclusion",
				zap.String("tx_hash", txHash),
				zap.Uint("attempt", n+1),
				zap.Uint("max_attempts", np.inclusionAttempts),
				zap.Error(err),
			)
		})); err != nil {
		return nil, sdkerrors.Wrapf(types.ErrUpstreamFailure, "tx %s was not included: %v", txHash, err)
	}

	return &provider.TxResponse{
		Height:    res.Height,
		TxHash:    strings.ToUpper(txHash),
		Codespace: res.TxResult.Codespace,
		Code:      res.TxResult.Code,
		GasUsed:   res.TxResult.GasUsed,
		Events:    parseEvents(res.TxResult.Events),
	}, nil
}

func parseEvents(events []abci.Event) []provider.Event {
	out := make([]provider.Event, 0, len(events))
	for _, e := range events {
		attributes := make(map[string]string, len(e.Attributes))
		for _, attr := range e.Attributes {
			// Keep the first value of keys that repeat within one event.
			if _, ok := attributes[attr.Key]; !ok {
				attributes[attr.Key] = attr.Value
			}
		}
		out = append(out, provider.Event{EventType: e.Type, Attributes: attributes})
	}
	return out
}

// lastJSONLine returns the last line of out that looks like a JSON object. The node binary
// prints gas estimates before the broadcast result.
func lastJSONLine(out []byte) []byte {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); strings.HasPrefix(l, "{") {
			return []byte(l)
		}
	}
	return out
}

func (np *NeutronProvider) LogFailedTx(res *provider.TxResponse, err error, msgType string) {
	fields := []zapcore.Field{zap.String("msg_type", msgType)}
	if err != nil {
		np.log.Error("Failed sending wasm transaction", append(fields, zap.Error(err))...)
		if res == nil {
			return
		}
	}
	if res.Code != 0 {
		np.log.Warn(
			"Sent transaction but received failure response",
			append(fields, zap.Object("response", res))...,
		)
	}
}

func (np *NeutronProvider) LogSuccessTx(res *provider.TxResponse, msgType string) {
	np.log.Info(
		"Successful transaction",
		zap.Int64("gas_used", res.GasUsed),
		zap.Int64("height", res.Height),
		zap.String("msg_type", msgType),
		zap.String("tx_hash", res.TxHash),
	)
}
