package neutron

import (
	"context"
	"fmt"
	"time"

	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/valence-tools/lpdeployer/deployer/provider"
)

var _ provider.ChainProvider = &NeutronProvider{}

const (
	defaultBinary         = "neutrond"
	defaultKeyringBackend = "test"
	defaultTimeout        = "60s"
	defaultPollInterval   = "1s"
)

// NeutronProviderConfig tells the provider which node binary signs and broadcasts
// transactions and which node confirms them.
type NeutronProviderConfig struct {
	Key            string  `json:"key" yaml:"key"`
	Address        string  `json:"address" yaml:"address"`
	Admin          string  `json:"admin" yaml:"admin"`
	ChainID        string  `json:"chain-id" yaml:"chain-id"`
	RPCAddr        string  `json:"rpc-addr" yaml:"rpc-addr"`
	Binary         string  `json:"binary" yaml:"binary"`
	Home           string  `json:"home" yaml:"home"`
	KeyringBackend string  `json:"keyring-backend" yaml:"keyring-backend"`
	GasAdjustment  float64 `json:"gas-adjustment" yaml:"gas-adjustment"`
	GasPrices      string  `json:"gas-prices" yaml:"gas-prices"`
	// Timeout bounds the wait for a broadcast transaction to be included in a block.
	Timeout      string `json:"timeout" yaml:"timeout"`
	PollInterval string `json:"poll-interval" yaml:"poll-interval"`
}

// DefaultNeutronProviderConfig returns a config with every optional field set.
func DefaultNeutronProviderConfig() NeutronProviderConfig {
	return NeutronProviderConfig{
		Binary:         defaultBinary,
		KeyringBackend: defaultKeyringBackend,
		GasAdjustment:  1.5,
		GasPrices:      "0.0053untrn",
		Timeout:        defaultTimeout,
		PollInterval:   defaultPollInterval,
	}
}

func (pc NeutronProviderConfig) Validate() error {
	var err error
	required := []struct{ name, value string }{
		{"key", pc.Key},
		{"address", pc.Address},
		{"chain-id", pc.ChainID},
		{"rpc-addr", pc.RPCAddr},
		{"gas-prices", pc.GasPrices},
	}
	for _, r := range required {
		if r.value == "" {
			err = multierr.Append(err, fmt.Errorf("%s must be set", r.name))
		}
	}
	if pc.GasAdjustment <= 0 {
		err = multierr.Append(err, fmt.Errorf("gas-adjustment must be positive, got %v", pc.GasAdjustment))
	}
	if _, perr := time.ParseDuration(pc.timeout()); perr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid timeout: %w", perr))
	}
	if d, perr := time.ParseDuration(pc.pollInterval()); perr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid poll-interval: %w", perr))
	} else if d <= 0 {
		err = multierr.Append(err, fmt.Errorf("poll-interval must be positive, got %s", d))
	}
	return err
}

func (pc NeutronProviderConfig) timeout() string {
	if pc.Timeout == "" {
		return defaultTimeout
	}
	return pc.Timeout
}

func (pc NeutronProviderConfig) pollInterval() string {
	if pc.PollInterval == "" {
		return defaultPollInterval
	}
	return pc.PollInterval
}

// TxQuerier looks up a transaction by hash. The CometBFT RPC client implements it.
type TxQuerier interface {
	Tx(ctx context.Context, hash []byte, prove bool) (*coretypes.ResultTx, error)
}

// ProviderOption customizes a NeutronProvider.
type ProviderOption func(*NeutronProvider)

// WithRunner replaces the runner used to invoke the node binary.
func WithRunner(r CommandRunner) ProviderOption {
	return func(np *NeutronProvider) { np.runner = r }
}

// WithTxQuerier replaces the client used to confirm block inclusion.
func WithTxQuerier(q TxQuerier) ProviderOption {
	return func(np *NeutronProvider) { np.RPCClient = q }
}

// NewProvider validates the config and returns a provider. The RPC client is created
// from RPCAddr unless one is supplied with WithTxQuerier.
func (pc NeutronProviderConfig) NewProvider(log *zap.Logger, opts ...ProviderOption) (*NeutronProvider, error) {
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	if pc.Binary == "" {
		pc.Binary = defaultBinary
	}
	if pc.KeyringBackend == "" {
		pc.KeyringBackend = defaultKeyringBackend
	}

	timeout, _ := time.ParseDuration(pc.timeout())
	interval, _ := time.ParseDuration(pc.pollInterval())
	attempts := uint(timeout / interval)
	if attempts == 0 {
		attempts = 1
	}

	np := &NeutronProvider{
		log:               log.With(zap.String("sys", "neutron"), zap.String("chain_id", pc.ChainID)),
		PCfg:              pc,
		runner:            execRunner{},
		pollInterval:      interval,
		inclusionAttempts: attempts,
	}
	for _, opt := range opts {
		opt(np)
	}

	if np.RPCClient == nil {
		client, err := rpchttp.New(pc.RPCAddr, "/websocket")
		if err != nil {
			return nil, fmt.Errorf("failed to create rpc client for %s: %w", pc.RPCAddr, err)
		}
		np.RPCClient = client
	}

	return np, nil
}

// NeutronProvider signs and broadcasts through the node binary and confirms over CometBFT RPC.
type NeutronProvider struct {
	log *zap.Logger

	PCfg      NeutronProviderConfig
	RPCClient TxQuerier

	runner            CommandRunner
	pollInterval      time.Duration
	inclusionAttempts uint
}

func (np *NeutronProvider) ChainID() string {
	return np.PCfg.ChainID
}

// Address returns the configured operator address.
func (np *NeutronProvider) Address() string {
	return np.PCfg.Address
}
