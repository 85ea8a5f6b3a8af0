package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/valence-tools/lpdeployer/internal/deploydebug"
)

var (
	// Version defines the application version (defined at compile time)
	Version = ""
	Commit  = ""
	Dirty   = ""
)

type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	CosmosSDK string `json:"cosmos-sdk" yaml:"cosmos-sdk"`
	CometBFT  string `json:"cometbft" yaml:"cometbft"`
	Go        string `json:"go" yaml:"go"`
}

func getVersionCmd(a *appState) *cobra.Command {
	versionCmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print the lpdeployer version info",
		Args:    withUsage(cobra.NoArgs),
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s version --json
$ %s v`,
			appName, appName,
		)),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsn, err := cmd.Flags().GetBool(flagJSON)
			if err != nil {
				return err
			}

			commit := Commit
			if commit == "" {
				commit = deploydebug.BuildCommit()
			} else if Dirty != "" && Dirty != "0" {
				commit += " (dirty)"
			}

			verInfo := versionInfo{
				Version:   Version,
				Commit:    commit,
				CosmosSDK: dependencyVersion("github.com/cosmos/cosmos-sdk"),
				CometBFT:  dependencyVersion("github.com/cometbft/cometbft"),
				Go:        fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
			}

			var bz []byte
			if jsn {
				bz, err = json.Marshal(verInfo)
			} else {
				bz, err = yaml.Marshal(&verInfo)
			}

			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(bz)))
			return err
		},
	}

	return jsonFlag(a.Viper, versionCmd)
}

func dependencyVersion(path string) string {
	if v, ok := deploydebug.DependencyVersion(path); ok {
		return v
	}
	return "(unable to determine)"
}
