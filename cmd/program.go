package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valence-tools/lpdeployer/deployer"
	"github.com/valence-tools/lpdeployer/deployer/provider"
	"github.com/valence-tools/lpdeployer/deployer/types"
)

func createProgramCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create-program",
		Aliases: []string{"create"},
		Short:   "Instantiate the contracts of a liquidity program and hand it over to the owner",
		Long: strings.TrimSpace(`Instantiates the processor, the authorization contract, the input account and,
for every pool, the split, liquidity and withdrawal accounts, the splitter and the
Astroport liquidity provider and withdrawer libraries. Publishes the <label-prefix>_deploy
and <label-prefix>_withdraw authorizations and transfers ownership to the configured owner.

Progress is recorded in <home>/programs/<label-prefix>.yaml after every step.`),
		Args: withUsage(cobra.NoArgs),
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s create-program --label-prefix atom_ntrn \
    --pools neutron1pool...,1000000,2000000,uatom,untrn \
    --pools neutron1pool...,500000,500000,untrn,ibc/usdc,native:concentrated
$ %s create -l lp1 -p neutron1pool...,1,1,uatom,untrn --debug-addr localhost:7597`,
			appName, appName,
		)),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix, err := cmd.Flags().GetString(flagLabelPrefix)
			if err != nil {
				return err
			}
			specs, err := cmd.Flags().GetStringArray(flagPools)
			if err != nil {
				return err
			}
			if len(specs) == 0 {
				return fmt.Errorf("at least one --%s is required", flagPools)
			}

			pools, err := types.ParsePools(specs)
			if err != nil {
				return err
			}

			d, err := a.newDeployer(cmd)
			if err != nil {
				return err
			}

			rec, err := d.CreateProgram(cmd.Context(), prefix, pools)
			if err != nil {
				return err
			}
			return printRecord(cmd, rec)
		},
	}
	cmd = labelPrefixFlag(a.Viper, cmd)
	cmd = poolsFlag(a.Viper, cmd)
	if err := cmd.MarkFlagRequired(flagLabelPrefix); err != nil {
		panic(err)
	}
	return jsonFlag(a.Viper, debugServerFlags(a.Viper, cmd))
}

func executeProgramCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "execute-program",
		Aliases: []string{"exec"},
		Short:   "Enqueue the messages of a program's deploy or withdraw authorizations",
		Args:    withUsage(cobra.NoArgs),
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s execute-program --auth-contract-address neutron1auth... --action deploy
$ %s exec --label-prefix atom_ntrn --action withdraw`,
			appName, appName,
		)),
		RunE: func(cmd *cobra.Command, args []string) error {
			actionStr, err := cmd.Flags().GetString(flagAction)
			if err != nil {
				return err
			}
			action, err := types.ParseProgramAction(actionStr)
			if err != nil {
				return err
			}

			auth, err := a.resolveContract(cmd, flagAuthAddr, "authorization contract",
				func(rec *deployer.ProgramRecord) string { return rec.Authorization })
			if err != nil {
				return err
			}

			d, err := a.newDeployer(cmd)
			if err != nil {
				return err
			}

			res, err := d.ExecuteProgram(cmd.Context(), auth, action)
			if err != nil {
				return err
			}
			if len(res) == 0 {
				a.Log.Warn("Nothing was enqueued", zap.String("authorization", auth), zap.Stringer("action", action))
			}
			return printTxResponses(cmd, res)
		},
	}
	cmd = authContractFlag(a.Viper, cmd)
	cmd = labelPrefixFlag(a.Viper, cmd)
	cmd = actionFlag(a.Viper, cmd)
	if err := cmd.MarkFlagRequired(flagAction); err != nil {
		panic(err)
	}
	return jsonFlag(a.Viper, debugServerFlags(a.Viper, cmd))
}

func tickProcessorCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tick-processor",
		Aliases: []string{"tick"},
		Short:   "Make a program's processor execute its next queued batch",
		Args:    withUsage(cobra.NoArgs),
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s tick-processor --processor-contract-address neutron1proc...
$ %s tick --label-prefix atom_ntrn`,
			appName, appName,
		)),
		RunE: func(cmd *cobra.Command, args []string) error {
			processor, err := a.resolveContract(cmd, flagProcessor, "processor",
				func(rec *deployer.ProgramRecord) string { return rec.Processor })
			if err != nil {
				return err
			}

			d, err := a.newDeployer(cmd)
			if err != nil {
				return err
			}

			res, err := d.TickProcessor(cmd.Context(), processor)
			if err != nil {
				return err
			}
			return printTxResponses(cmd, []*provider.TxResponse{res})
		},
	}
	cmd = processorFlag(a.Viper, cmd)
	cmd = labelPrefixFlag(a.Viper, cmd)
	return jsonFlag(a.Viper, debugServerFlags(a.Viper, cmd))
}

// resolveContract returns the address given with addrFlag, or the one the record of
// --label-prefix holds.
func (a *appState) resolveContract(
	cmd *cobra.Command,
	addrFlag, what string,
	fromRecord func(*deployer.ProgramRecord) string,
) (string, error) {
	addr, err := cmd.Flags().GetString(addrFlag)
	if err != nil {
		return "", err
	}
	prefix, err := cmd.Flags().GetString(flagLabelPrefix)
	if err != nil {
		return "", err
	}

	switch {
	case addr != "" && prefix != "":
		return "", errMultipleTargets
	case addr != "":
		return addr, nil
	case prefix == "":
		return "", errMissingTarget
	}

	rec, err := a.loadRecord(prefix)
	if err != nil {
		return "", err
	}
	if addr = fromRecord(rec); addr == "" {
		return "", errProgramIncomplete(prefix, what)
	}
	return addr, nil
}

func (a *appState) loadRecord(prefix string) (*deployer.ProgramRecord, error) {
	records := a.records()
	if !records.Exists(prefix) {
		return nil, errProgramNotFound(prefix, records.Path(prefix))
	}
	return records.Load(prefix)
}

func printRecord(cmd *cobra.Command, rec *deployer.ProgramRecord) error {
	return printOutput(cmd, rec)
}

func printTxResponses(cmd *cobra.Command, res []*provider.TxResponse) error {
	jsn, err := cmd.Flags().GetBool(flagJSON)
	if err != nil {
		return err
	}

	if jsn {
		if res == nil {
			res = []*provider.TxResponse{}
		}
		out, err := json.Marshal(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	for _, r := range res {
		fmt.Fprintf(cmd.OutOrStdout(), "%s height=%d gas_used=%d\n", r.TxHash, r.Height, r.GasUsed)
	}
	return nil
}
