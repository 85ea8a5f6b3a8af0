package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/valence-tools/lpdeployer/deployer"
	"github.com/valence-tools/lpdeployer/deployer/address"
	"github.com/valence-tools/lpdeployer/deployer/authorization"
)

// queryCmd represents the query command tree.
func queryCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "Query programs, contracts and addresses",
	}

	cmd.AddCommand(
		queryAuthorizationsCmd(a),
		queryPredictAddressCmd(a),
		queryCodeHashesCmd(a),
		queryProgramCmd(a),
	)

	return cmd
}

type authorizationSummary struct {
	Label     string                     `json:"label" yaml:"label"`
	Functions []authorization.FunctionID `json:"functions" yaml:"functions"`
}

func queryAuthorizationsCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "authorizations",
		Aliases: []string{"auths"},
		Short:   "List the authorizations published on an authorization contract",
		Args:    withUsage(cobra.NoArgs),
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s query authorizations --auth-contract-address neutron1auth...
$ %s q auths --label-prefix atom_ntrn --json`,
			appName, appName,
		)),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := a.resolveContract(cmd, flagAuthAddr, "authorization contract",
				func(rec *deployer.ProgramRecord) string { return rec.Authorization })
			if err != nil {
				return err
			}

			d, err := a.newDeployer(cmd)
			if err != nil {
				return err
			}

			auths, err := d.Authorizations(cmd.Context(), auth)
			if err != nil {
				return err
			}

			summaries := make([]authorizationSummary, len(auths))
			for i, au := range auths {
				functions := authorization.FunctionIdentifiers(au.Subroutine)
				if functions == nil {
					functions = []authorization.FunctionID{}
				}
				summaries[i] = authorizationSummary{Label: au.Label, Functions: functions}
			}
			return printOutput(cmd, summaries)
		},
	}
	cmd = authContractFlag(a.Viper, cmd)
	cmd = labelPrefixFlag(a.Viper, cmd)
	return yamlFlag(a.Viper, jsonFlag(a.Viper, cmd))
}

func queryPredictAddressCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "predict-address",
		Aliases: []string{"predict"},
		Short:   "Compute the address instantiate2 assigns for a creator, salt and code checksum",
		Long: strings.TrimSpace(`Computes the address offline. --creator defaults to the configured operator
address and --prefix to the configured bech32 prefix.`),
		Args: withUsage(cobra.NoArgs),
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s query predict-address --salt 0102 --code-hash 13a1fc994cc6d1c81b746ee0c0ff6f90043875e0bf1d9be6b7d779fc978dc2a5
$ %s q predict --creator neutron1... --salt 61 --code-hash 13a1fc99...`,
			appName, appName,
		)),
		RunE: func(cmd *cobra.Command, args []string) error {
			creator, err := cmd.Flags().GetString(flagCreator)
			if err != nil {
				return err
			}
			if creator == "" {
				creator = a.Config.Chain.Address
			}
			if creator == "" {
				return fmt.Errorf("--%s is required when no operator address is configured", flagCreator)
			}

			salt, err := cmd.Flags().GetString(flagSalt)
			if err != nil {
				return err
			}
			codeHash, err := cmd.Flags().GetString(flagCodeHash)
			if err != nil {
				return err
			}
			prefix, err := cmd.Flags().GetString(flagPrefix)
			if err != nil {
				return err
			}
			if prefix == "" {
				prefix = a.Config.Bech32Prefix
			}

			addr, err := address.NewCodec(prefix).Predict(creator, salt, codeHash)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr)
			return nil
		},
	}
	cmd.Flags().String(flagCreator, "", "bech32 address of the instantiating account")
	cmd.Flags().String(flagSalt, "", "hex encoded salt")
	cmd.Flags().String(flagCodeHash, "", "hex encoded sha256 checksum of the code")
	cmd.Flags().String(flagPrefix, "", "bech32 prefix of the resulting address")
	for _, f := range []string{flagSalt, flagCodeHash} {
		if err := cmd.MarkFlagRequired(f); err != nil {
			panic(err)
		}
	}
	return cmd
}

type codeHash struct {
	Contract string `json:"contract" yaml:"contract"`
	CodeID   uint64 `json:"code-id" yaml:"code-id"`
	Checksum string `json:"checksum" yaml:"checksum"`
}

func queryCodeHashesCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code-hashes",
		Short: "Fetch the checksums of every configured code id",
		Args:  withUsage(cobra.NoArgs),
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s query code-hashes
$ %s q code-hashes --json`,
			appName, appName,
		)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Config.Chain.Validate(); err != nil {
				return fmt.Errorf("invalid chain config %s: %w", a.configPath(), err)
			}
			cp, err := a.Config.Chain.NewProvider(a.Log)
			if err != nil {
				return err
			}

			named := a.Config.CodeIDs.Named()
			hashes := make([]codeHash, len(named))

			eg, egCtx := errgroup.WithContext(cmd.Context())
			for i, code := range named {
				i, code := i, code
				eg.Go(func() error {
					sum, err := cp.CodeHash(egCtx, code.CodeID)
					if err != nil {
						return fmt.Errorf("code %s (%d): %w", code.Name, code.CodeID, err)
					}
					hashes[i] = codeHash{Contract: code.Name, CodeID: code.CodeID, Checksum: sum}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}

			a.Log.Debug("Fetched code hashes", zap.Int("count", len(hashes)))
			return printOutput(cmd, hashes)
		},
	}
	return yamlFlag(a.Viper, jsonFlag(a.Viper, cmd))
}

func queryProgramCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "program label_prefix",
		Short: "Print the record of a program created from this home directory",
		Args:  withUsage(cobra.ExactArgs(1)),
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s query program atom_ntrn
$ %s q program atom_ntrn --json`,
			appName, appName,
		)),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.loadRecord(args[0])
			if err != nil {
				return err
			}
			return printRecord(cmd, rec)
		},
	}
	return jsonFlag(a.Viper, cmd)
}

// printOutput writes v as yaml, or as json when --json is set.
func printOutput(cmd *cobra.Command, v interface{}) error {
	jsn, err := cmd.Flags().GetBool(flagJSON)
	if err != nil {
		return err
	}

	var out []byte
	if jsn {
		out, err = json.Marshal(v)
	} else {
		out, err = yaml.Marshal(v)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(out)))
	return nil
}
