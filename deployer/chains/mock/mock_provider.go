package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"go.uber.org/zap"

	"github.com/valence-tools/lpdeployer/deployer/address"
	"github.com/valence-tools/lpdeployer/deployer/authorization"
	"github.com/valence-tools/lpdeployer/deployer/provider"
	"github.com/valence-tools/lpdeployer/deployer/types"
)

var _ provider.ChainProvider = &MockProvider{}

// CallKind names the provider method a Call went through.
type CallKind string

const (
	CallExecute      CallKind = "execute"
	CallInstantiate  CallKind = "instantiate"
	CallInstantiate2 CallKind = "instantiate2"
	CallQuery        CallKind = "query"
	CallCodeHash     CallKind = "code-hash"
)

// Call is one recorded provider call.
type Call struct {
	Kind     CallKind
	CodeID   uint64
	Label    string
	Contract string
	Msg      json.RawMessage
	Salt     string
}

// Contract is a contract created on the mock chain.
type Contract struct {
	Address string
	CodeID  uint64
	Label   string
	InitMsg json.RawMessage
}

// MockProvider is an in-memory chain. It assigns addresses the way wasmd does, keeps
// the authorizations created on every contract and answers authorizations queries from them.
type MockProvider struct {
	log *zap.Logger

	chainID  string
	operator string
	codec    address.Codec

	mu             sync.Mutex
	calls          []Call
	contracts      map[string]Contract
	authorizations map[string][]authorization.AuthorizationInfo
	instances      uint64
	height         int64

	// Fail, when set, is consulted before every call; a non nil error aborts the call.
	Fail func(Call) error
}

func NewMockProvider(log *zap.Logger, chainID, operator string) *MockProvider {
	return &MockProvider{
		log:            log.With(zap.String("sys", "mock"), zap.String("chain_id", chainID)),
		chainID:        chainID,
		operator:       operator,
		codec:          address.NewCodec(types.DefaultBech32Prefix),
		contracts:      make(map[string]Contract),
		authorizations: make(map[string][]authorization.AuthorizationInfo),
	}
}

func (mp *MockProvider) ChainID() string { return mp.chainID }
func (mp *MockProvider) Address() string { return mp.operator }

// Calls returns every call made so far, in order.
func (mp *MockProvider) Calls() []Call {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]Call(nil), mp.calls...)
}

// Contract returns the contract created at addr.
func (mp *MockProvider) Contract(addr string) (Contract, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	c, ok := mp.contracts[addr]
	return c, ok
}

// Authorizations returns the authorizations created on contract.
func (mp *MockProvider) Authorizations(contract string) []authorization.AuthorizationInfo {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]authorization.AuthorizationInfo(nil), mp.authorizations[contract]...)
}

// record appends c to the call log and returns the injected failure, if any.
func (mp *MockProvider) record(c Call) error {
	mp.mu.Lock()
	mp.calls = append(mp.calls, c)
	fail := mp.Fail
	mp.mu.Unlock()

	if fail != nil {
		if err := fail(c); err != nil {
			return sdkerrors.Wrap(types.ErrUpstreamFailure, err.Error())
		}
	}
	return nil
}

func (mp *MockProvider) ExecuteContract(ctx context.Context, contract string, msg []byte) (*provider.TxResponse, error) {
	if err := mp.record(Call{Kind: CallExecute, Contract: contract, Msg: msg}); err != nil {
		return nil, err
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, ok := mp.contracts[contract]; !ok {
		return nil, sdkerrors.Wrapf(types.ErrUpstreamFailure, "no contract at %s", contract)
	}

	var execMsg authorization.ExecuteMsg
	if err := json.Unmarshal(msg, &execMsg); err == nil &&
		execMsg.PermissionedAction != nil && execMsg.PermissionedAction.CreateAuthorizations != nil {
		mp.authorizations[contract] = append(mp.authorizations[contract],
			execMsg.PermissionedAction.CreateAuthorizations.Authorizations...)
	}

	return mp.txResponse(provider.Event{
		EventType:  "execute",
		Attributes: map[string]string{types.ContractAddressAttributeKey: contract},
	}), nil
}

func (mp *MockProvider) InstantiateContract(ctx context.Context, codeID uint64, label string, msg []byte) (string, error) {
	if err := mp.record(Call{Kind: CallInstantiate, CodeID: codeID, Label: label, Msg: msg}); err != nil {
		return "", err
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.instances++
	// wasmd classic addresses are module("wasm", code_id | instance_id).
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], codeID)
	binary.BigEndian.PutUint64(key[8:], mp.instances)
	sum := sha256.Sum256(append([]byte("wasm\x00"), key...))

	addr, err := mp.codec.Humanize(sum[:])
	if err != nil {
		return "", err
	}
	return mp.create(addr, codeID, label, msg)
}

func (mp *MockProvider) InstantiateContract2(ctx context.Context, codeID uint64, label string, msg []byte, saltHex string) (string, error) {
	if err := mp.record(Call{Kind: CallInstantiate2, CodeID: codeID, Label: label, Msg: msg, Salt: saltHex}); err != nil {
		return "", err
	}

	addr, err := mp.codec.Predict(mp.operator, saltHex, checksum(codeID))
	if err != nil {
		return "", err
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.create(addr, codeID, label, msg)
}

// create stores a new contract. mp.mu must be held.
func (mp *MockProvider) create(addr string, codeID uint64, label string, msg []byte) (string, error) {
	if _, ok := mp.contracts[addr]; ok {
		return "", sdkerrors.Wrapf(types.ErrUpstreamFailure, "contract %s already exists", addr)
	}
	mp.contracts[addr] = Contract{Address: addr, CodeID: codeID, Label: label, InitMsg: msg}
	mp.log.Debug("Instantiated contract", zap.Uint64("code_id", codeID), zap.String("label", label), zap.String("address", addr))
	return addr, nil
}

func (mp *MockProvider) QuerySmart(ctx context.Context, contract string, query []byte) ([]byte, error) {
	if err := mp.record(Call{Kind: CallQuery, Contract: contract, Msg: query}); err != nil {
		return nil, err
	}

	var q authorization.QueryMsg
	if err := json.Unmarshal(query, &q); err != nil || q.Authorizations == nil {
		return nil, sdkerrors.Wrapf(types.ErrUpstreamFailure, "unsupported query %s", query)
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, ok := mp.contracts[contract]; !ok {
		return nil, sdkerrors.Wrapf(types.ErrUpstreamFailure, "no contract at %s", contract)
	}

	auths := mp.authorizations[contract]
	start := 0
	if after := q.Authorizations.StartAfter; after != nil {
		for i, a := range auths {
			if a.Label == *after {
				start = i + 1
				break
			}
		}
	}
	end := len(auths)
	if limit := q.Authorizations.Limit; limit != nil && start+int(*limit) < end {
		end = start + int(*limit)
	}

	page := auths[start:end]
	if page == nil {
		page = []authorization.AuthorizationInfo{}
	}
	return json.Marshal(map[string]interface{}{"data": page})
}

func (mp *MockProvider) CodeHash(ctx context.Context, codeID uint64) (string, error) {
	if err := mp.record(Call{Kind: CallCodeHash, CodeID: codeID}); err != nil {
		return "", err
	}
	return checksum(codeID), nil
}

// txResponse builds a confirmed response at the next height. mp.mu must be held.
func (mp *MockProvider) txResponse(events ...provider.Event) *provider.TxResponse {
	mp.height++
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s/%d", mp.chainID, mp.height)))
	return &provider.TxResponse{
		Height: mp.height,
		TxHash: hex.EncodeToString(hash[:]),
		Events: events,
	}
}

// checksum is the fake code hash of codeID.
func checksum(codeID uint64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("code-%d", codeID)))
	return hex.EncodeToString(sum[:])
}
