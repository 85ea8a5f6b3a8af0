// Package deployer creates Valence liquidity programs and drives the ones already created.
package deployer

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"go.uber.org/zap"

	"github.com/valence-tools/lpdeployer/deployer/address"
	"github.com/valence-tools/lpdeployer/deployer/authorization"
	"github.com/valence-tools/lpdeployer/deployer/provider"
	"github.com/valence-tools/lpdeployer/deployer/types"
	"github.com/valence-tools/lpdeployer/deployer/valence"
)

// Contract roles, used in labels and metrics.
const (
	RoleProcessor           = "processor"
	RoleAuthorization       = "authorization"
	RoleInputAccount        = "input_account"
	RoleSplitAccount        = "split_account"
	RoleLiquidityAccount    = "liquidity_account"
	RoleWithdrawalAccount   = "withdrawal_account"
	RoleSplitter            = "splitter"
	RoleAstroportLPer       = "astroport_lper"
	RoleAstroportWithdrawer = "astroport_withdrawer"
)

// CodeIDs are the stored codes a program is instantiated from.
type CodeIDs struct {
	BaseAccount         uint64 `yaml:"base-account" json:"base-account"`
	Splitter            uint64 `yaml:"splitter" json:"splitter"`
	AstroportLPer       uint64 `yaml:"astroport-lper" json:"astroport-lper"`
	AstroportWithdrawer uint64 `yaml:"astroport-withdrawer" json:"astroport-withdrawer"`
	Authorization       uint64 `yaml:"authorization" json:"authorization"`
	Processor           uint64 `yaml:"processor" json:"processor"`
}

// Named returns the code ids keyed by contract role, in a fixed order.
func (c CodeIDs) Named() []NamedCodeID {
	return []NamedCodeID{
		{"base-account", c.BaseAccount},
		{"splitter", c.Splitter},
		{"astroport-lper", c.AstroportLPer},
		{"astroport-withdrawer", c.AstroportWithdrawer},
		{"authorization", c.Authorization},
		{"processor", c.Processor},
	}
}

type NamedCodeID struct {
	Name   string
	CodeID uint64
}

// Deployer runs every step of a program's lifecycle against one chain, strictly in sequence.
type Deployer struct {
	log     *zap.Logger
	cp      provider.ChainProvider
	codec   address.Codec
	codes   CodeIDs
	owner   string
	records RecordStore
	metrics *PrometheusMetrics
	now     func() time.Time
}

type Option func(*Deployer)

// WithMetrics records submitted transactions and instantiated contracts in m.
func WithMetrics(m *PrometheusMetrics) Option {
	return func(d *Deployer) { d.metrics = m }
}

// WithClock replaces the clock salts and record timestamps are taken from.
func WithClock(now func() time.Time) Option {
	return func(d *Deployer) { d.now = now }
}

// NewDeployer returns a Deployer that hands programs over to owner once they are created.
func NewDeployer(
	log *zap.Logger,
	cp provider.ChainProvider,
	codec address.Codec,
	codes CodeIDs,
	owner string,
	records RecordStore,
	opts ...Option,
) *Deployer {
	d := &Deployer{
		log:     log.With(zap.String("sys", "deployer"), zap.String("chain_id", cp.ChainID())),
		cp:      cp,
		codec:   codec,
		codes:   codes,
		owner:   owner,
		records: records,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewSalt derives an instantiate2 salt from t: its Unix time in nanoseconds,
// 8 bytes big endian, hex encoded.
func NewSalt(t time.Time) string {
	var bz [8]byte
	binary.BigEndian.PutUint64(bz[:], uint64(t.UnixNano()))
	return hex.EncodeToString(bz[:])
}

// PredictAuthorization returns the address the authorization contract will get when
// instantiated by the operator with salt.
func (d *Deployer) PredictAuthorization(ctx context.Context, salt string) (predicted, codeHash string, err error) {
	codeHash, err = d.cp.CodeHash(ctx, d.codes.Authorization)
	if err != nil {
		return "", "", err
	}
	predicted, err = d.codec.Predict(d.cp.Address(), salt, codeHash)
	if err != nil {
		return "", "", err
	}
	return predicted, codeHash, nil
}

func (d *Deployer) label(prefix, role string) string {
	return prefix + "_" + role
}

func (d *Deployer) execute(ctx context.Context, contract, kind string, msg interface{}) (*provider.TxResponse, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", kind, err)
	}

	d.incTxSubmitted(kind)
	res, err := d.cp.ExecuteContract(ctx, contract, bz)
	if err != nil {
		d.incTxFailure(kind, err)
		return nil, fmt.Errorf("%s on %s: %w", kind, contract, err)
	}
	return res, nil
}

func (d *Deployer) instantiate(ctx context.Context, role string, codeID uint64, label string, msg interface{}) (string, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s instantiate message: %w", role, err)
	}

	d.incTxSubmitted("instantiate")
	addr, err := d.cp.InstantiateContract(ctx, codeID, label, bz)
	if err != nil {
		d.incTxFailure("instantiate", err)
		return "", fmt.Errorf("instantiating %s: %w", role, err)
	}

	d.log.Info("Instantiated contract", zap.String("role", role), zap.String("label", label), zap.String("address", addr))
	d.incContractsInstantiated(role)
	return addr, nil
}

func (d *Deployer) instantiate2(ctx context.Context, role string, codeID uint64, label string, msg interface{}, salt string) (string, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s instantiate message: %w", role, err)
	}

	d.incTxSubmitted("instantiate2")
	addr, err := d.cp.InstantiateContract2(ctx, codeID, label, bz, salt)
	if err != nil {
		d.incTxFailure("instantiate2", err)
		return "", fmt.Errorf("instantiating %s: %w", role, err)
	}

	d.log.Info("Instantiated contract", zap.String("role", role), zap.String("label", label), zap.String("address", addr))
	d.incContractsInstantiated(role)
	return addr, nil
}

func (d *Deployer) incTxSubmitted(kind string) {
	if d.metrics != nil {
		d.metrics.IncTxSubmitted(d.cp.ChainID(), kind)
	}
}

func (d *Deployer) incTxFailure(kind string, err error) {
	if d.metrics == nil {
		return
	}
	cause := "unknown"
	var sdkErr *sdkerrors.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		cause = "canceled"
	case errors.As(err, &sdkErr):
		cause = sdkErr.Error()
	}
	d.metrics.IncTxFailure(d.cp.ChainID(), kind, cause)
}

func (d *Deployer) incContractsInstantiated(role string) {
	if d.metrics != nil {
		d.metrics.IncContractsInstantiated(d.cp.ChainID(), role)
	}
}

// TickProcessor makes the processor execute the next batch of queued messages.
func (d *Deployer) TickProcessor(ctx context.Context, processor string) (*provider.TxResponse, error) {
	if err := d.codec.Validate(processor); err != nil {
		return nil, fmt.Errorf("processor address: %w", err)
	}
	d.log.Info("Ticking processor", zap.String("processor", processor))
	return d.execute(ctx, processor, "tick", valence.NewTickMsg())
}

// Authorizations lists every authorization published on the authorization contract,
// following pages until one comes back short.
func (d *Deployer) Authorizations(ctx context.Context, authContract string) ([]authorization.Authorization, error) {
	var (
		all   []authorization.Authorization
		after string
	)
	for {
		query, err := json.Marshal(authorization.NewAuthorizationsQuery(after, authorization.QueryLimit))
		if err != nil {
			return nil, err
		}
		raw, err := d.cp.QuerySmart(ctx, authContract, query)
		if err != nil {
			return nil, fmt.Errorf("querying authorizations of %s: %w", authContract, err)
		}
		page, err := authorization.ParseAuthorizations(raw)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < authorization.QueryLimit {
			return all, nil
		}
		last := page[len(page)-1].Label
		if after != "" && last == after {
			return nil, sdkerrors.Wrapf(types.ErrMalformedAuthorizationData,
				"%s returned a full page ending at %q again, start_after is not honoured", authContract, after)
		}
		after = last
	}
}

// ExecuteProgram enqueues, for every authorization of action, the messages its subroutine
// allows. Authorizations without any recognised step are skipped.
func (d *Deployer) ExecuteProgram(ctx context.Context, authContract string, action types.ProgramAction) ([]*provider.TxResponse, error) {
	if err := d.codec.Validate(authContract); err != nil {
		return nil, fmt.Errorf("authorization contract address: %w", err)
	}

	log := d.log.With(zap.String("authorization", authContract), zap.Stringer("action", action))
	log.Info("Executing program")

	auths, err := d.Authorizations(ctx, authContract)
	if err != nil {
		return nil, err
	}

	matching := authorization.Filter(auths, action)
	if len(matching) == 0 {
		log.Warn("No authorization matches action", zap.Int("authorizations", len(auths)))
		return nil, nil
	}

	var responses []*provider.TxResponse
	for _, a := range matching {
		msgs, err := authorization.ExecuteMessages(a.Subroutine)
		if err != nil {
			return responses, err
		}
		if len(msgs) == 0 {
			log.Warn("Authorization has no known function, skipping", zap.String("label", a.Label))
			continue
		}

		res, err := d.execute(ctx, authContract, "send_msgs", authorization.NewSendMsgsMsg(a.Label, msgs))
		if err != nil {
			return responses, err
		}
		log.Info("Enqueued messages", zap.String("label", a.Label), zap.Int("messages", len(msgs)), zap.String("tx_hash", res.TxHash))
		responses = append(responses, res)
	}
	return responses, nil
}
