package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagHome        = "home"
	flagDebug       = "debug"
	flagLogFormat   = "log-format"
	flagDebugAddr   = "debug-addr"
	flagJSON        = "json"
	flagYAML        = "yaml"
	flagLabelPrefix = "label-prefix"
	flagPools       = "pools"
	flagAuthAddr    = "auth-contract-address"
	flagProcessor   = "processor-contract-address"
	flagAction      = "action"
	flagSalt        = "salt"
	flagCodeHash    = "code-hash"
	flagCreator     = "creator"
	flagPrefix      = "prefix"
)

func jsonFlag(v *viper.Viper, cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolP(flagJSON, "j", false, "returns the response in json format")
	if err := v.BindPFlag(flagJSON, cmd.Flags().Lookup(flagJSON)); err != nil {
		panic(err)
	}
	return cmd
}

func yamlFlag(v *viper.Viper, cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolP(flagYAML, "y", false, "output using yaml")
	if err := v.BindPFlag(flagYAML, cmd.Flags().Lookup(flagYAML)); err != nil {
		panic(err)
	}
	return cmd
}

func debugServerFlags(v *viper.Viper, cmd *cobra.Command) *cobra.Command {
	cmd.Flags().String(flagDebugAddr, "", "address to serve /metrics and /debug/pprof on while the command runs (empty disables)")
	if err := v.BindPFlag(flagDebugAddr, cmd.Flags().Lookup(flagDebugAddr)); err != nil {
		panic(err)
	}
	return cmd
}

func labelPrefixFlag(v *viper.Viper, cmd *cobra.Command) *cobra.Command {
	cmd.Flags().StringP(flagLabelPrefix, "l", "", "label prefix of the program")
	if err := v.BindPFlag(flagLabelPrefix, cmd.Flags().Lookup(flagLabelPrefix)); err != nil {
		panic(err)
	}
	return cmd
}

func poolsFlag(v *viper.Viper, cmd *cobra.Command) *cobra.Command {
	cmd.Flags().StringArrayP(flagPools, "p", nil,
		"pool as address,amount_a,amount_b,denom_a,denom_b[,lp_token:pair]; repeat for every pool")
	if err := v.BindPFlag(flagPools, cmd.Flags().Lookup(flagPools)); err != nil {
		panic(err)
	}
	return cmd
}

func authContractFlag(v *viper.Viper, cmd *cobra.Command) *cobra.Command {
	cmd.Flags().StringP(flagAuthAddr, "a", "", "address of the program's authorization contract")
	if err := v.BindPFlag(flagAuthAddr, cmd.Flags().Lookup(flagAuthAddr)); err != nil {
		panic(err)
	}
	return cmd
}

func processorFlag(v *viper.Viper, cmd *cobra.Command) *cobra.Command {
	cmd.Flags().String(flagProcessor, "", "address of the program's processor contract")
	if err := v.BindPFlag(flagProcessor, cmd.Flags().Lookup(flagProcessor)); err != nil {
		panic(err)
	}
	return cmd
}

func actionFlag(v *viper.Viper, cmd *cobra.Command) *cobra.Command {
	cmd.Flags().String(flagAction, "", "program action to execute: deploy or withdraw")
	if err := v.BindPFlag(flagAction, cmd.Flags().Lookup(flagAction)); err != nil {
		panic(err)
	}
	return cmd
}
