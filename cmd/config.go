package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/valence-tools/lpdeployer/deployer"
	"github.com/valence-tools/lpdeployer/deployer/address"
	"github.com/valence-tools/lpdeployer/deployer/chains/neutron"
	"github.com/valence-tools/lpdeployer/deployer/types"
)

// Config is everything a deployer command needs to know about the chain it talks to
// and the program it creates.
type Config struct {
	Chain   neutron.NeutronProviderConfig `yaml:"chain" json:"chain"`
	CodeIDs deployer.CodeIDs              `yaml:"code-ids" json:"code-ids"`
	// Owner receives ownership of every program once it is created.
	Owner        string `yaml:"owner" json:"owner"`
	Bech32Prefix string `yaml:"bech32-prefix" json:"bech32-prefix"`
}

func defaultConfig() *Config {
	return &Config{
		Chain:        neutron.DefaultNeutronProviderConfig(),
		Bech32Prefix: types.DefaultBech32Prefix,
	}
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	err := c.Chain.Validate()

	for _, code := range c.CodeIDs.Named() {
		if code.CodeID == 0 {
			err = multierr.Append(err, fmt.Errorf("code-ids.%s must be set", code.Name))
		}
	}

	codec := address.NewCodec(c.Bech32Prefix)
	if c.Owner == "" {
		err = multierr.Append(err, fmt.Errorf("owner must be set"))
	} else if verr := codec.Validate(c.Owner); verr != nil {
		err = multierr.Append(err, fmt.Errorf("owner: %w", verr))
	}
	if c.Chain.Address != "" {
		if verr := codec.Validate(c.Chain.Address); verr != nil {
			err = multierr.Append(err, fmt.Errorf("chain.address: %w", verr))
		}
	}
	return err
}

// envBindings maps config keys to the environment variables overriding them.
var envBindings = []struct {
	key, env string
}{
	{"chain.key", "LD_TOOL_OPERATOR_MONIKER"},
	{"chain.address", "LD_TOOL_OPERATOR_ADDRESS"},
	{"chain.admin", "LD_TOOL_CONTRACT_ADMIN"},
	{"chain.chain-id", "LD_TOOL_NEUTRON_CHAIN_ID"},
	{"chain.rpc-addr", "LD_TOOL_NEUTRON_NODE_RPC"},
	{"chain.binary", "LD_TOOL_NEUTRON_NODE_BINARY"},
	{"chain.home", "LD_TOOL_HOME_DIR"},
	{"chain.keyring-backend", "LD_TOOL_KEYRING_BACKEND"},
	{"chain.gas-adjustment", "LD_TOOL_GAS_ADJUSTMENT"},
	{"chain.gas-prices", "LD_TOOL_GAS_PRICE"},
	{"chain.timeout", "LD_TOOL_TX_TIMEOUT"},
	{"chain.poll-interval", "LD_TOOL_TX_POLL_INTERVAL"},
	{"code-ids.base-account", "LD_TOOL_BASE_ACCOUNT_CODE_ID"},
	{"code-ids.splitter", "LD_TOOL_SPLITER_CODE_ID"},
	{"code-ids.astroport-lper", "LD_TOOL_ASTRO_LPER_CODE_ID"},
	{"code-ids.astroport-withdrawer", "LD_TOOL_ASTRO_WITHDRAW_CODE_ID"},
	{"code-ids.authorization", "LD_TOOL_AUTHORIZATION_CODE_ID"},
	{"code-ids.processor", "LD_TOOL_PROCESSOR_CODE_ID"},
	{"owner", "LD_TOOL_DAO_COMMITTEE_ADDRESS"},
	{"bech32-prefix", "LD_TOOL_BECH32_PREFIX"},
}

// configFromViper builds a Config from defaults, the config file read into v, and the
// environment, in increasing order of precedence.
func configFromViper(v *viper.Viper) (*Config, error) {
	def := defaultConfig()
	v.SetDefault("chain.binary", def.Chain.Binary)
	v.SetDefault("chain.keyring-backend", def.Chain.KeyringBackend)
	v.SetDefault("chain.gas-adjustment", def.Chain.GasAdjustment)
	v.SetDefault("chain.gas-prices", def.Chain.GasPrices)
	v.SetDefault("chain.timeout", def.Chain.Timeout)
	v.SetDefault("chain.poll-interval", def.Chain.PollInterval)
	v.SetDefault("bech32-prefix", def.Bech32Prefix)

	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, err
		}
	}

	var (
		err error
		cfg = &Config{
			Chain: neutron.NeutronProviderConfig{
				Key:            v.GetString("chain.key"),
				Address:        v.GetString("chain.address"),
				Admin:          v.GetString("chain.admin"),
				ChainID:        v.GetString("chain.chain-id"),
				RPCAddr:        v.GetString("chain.rpc-addr"),
				Binary:         v.GetString("chain.binary"),
				Home:           v.GetString("chain.home"),
				KeyringBackend: v.GetString("chain.keyring-backend"),
				GasPrices:      v.GetString("chain.gas-prices"),
				Timeout:        v.GetString("chain.timeout"),
				PollInterval:   v.GetString("chain.poll-interval"),
			},
			Owner:        v.GetString("owner"),
			Bech32Prefix: v.GetString("bech32-prefix"),
		}
	)

	if s := v.GetString("chain.gas-adjustment"); s != "" {
		adj, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("chain.gas-adjustment: invalid number %q", s))
		}
		cfg.Chain.GasAdjustment = adj
	}

	codeIDs := []struct {
		key string
		dst *uint64
	}{
		{"code-ids.base-account", &cfg.CodeIDs.BaseAccount},
		{"code-ids.splitter", &cfg.CodeIDs.Splitter},
		{"code-ids.astroport-lper", &cfg.CodeIDs.AstroportLPer},
		{"code-ids.astroport-withdrawer", &cfg.CodeIDs.AstroportWithdrawer},
		{"code-ids.authorization", &cfg.CodeIDs.Authorization},
		{"code-ids.processor", &cfg.CodeIDs.Processor},
	}
	for _, c := range codeIDs {
		s := v.GetString(c.key)
		if s == "" {
			continue
		}
		id, perr := strconv.ParseUint(s, 10, 64)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: invalid code id %q", c.key, s))
			continue
		}
		*c.dst = id
	}

	return cfg, err
}

func configCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage configuration file",
	}

	cmd.AddCommand(
		configShowCmd(a),
		configInitCmd(a),
	)

	return cmd
}

// Command for printing current configuration
func configShowCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"s", "list", "l"},
		Short:   "Prints current configuration, environment overrides applied",
		Args:    withUsage(cobra.NoArgs),
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s config show --home %s
$ %s cfg list --json`, appName, defaultHome, appName)),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsn, err := cmd.Flags().GetBool(flagJSON)
			if err != nil {
				return err
			}
			yml, err := cmd.Flags().GetBool(flagYAML)
			if err != nil {
				return err
			}

			var out []byte
			switch {
			case yml && jsn:
				return fmt.Errorf("can't pass both --json and --yaml, must pick one")
			case jsn:
				out, err = json.Marshal(a.Config)
			default:
				out, err = yaml.Marshal(a.Config)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(out)))
			return nil
		},
	}

	return yamlFlag(a.Viper, jsonFlag(a.Viper, cmd))
}

// Command for initializing a config at the --home location
func configInitCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Creates a config file at the path defined by --home",
		Long: strings.TrimSpace(`Creates a config file holding the defaults and any LD_TOOL_* environment
variables currently set. Fails if a config file already exists.`),
		Args: withUsage(cobra.NoArgs),
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s config init --home %s
$ LD_TOOL_DAO_COMMITTEE_ADDRESS=neutron1... %s cfg i`, appName, defaultHome, appName)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.writeConfig(a.Config); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "config written to %s\n", a.configPath())
			return nil
		},
	}
	return cmd
}
