package cmd_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/valence-tools/lpdeployer/cmd"
	"github.com/valence-tools/lpdeployer/internal/deployertest"
)

const (
	operator = "neutron1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5ma9uum"
	dao      = "neutron1mtdd4kk6mtdd4kk6mtdd4kk6mtdd4kk6x7avqf"
	poolOne  = "neutron1n2df4x56n2df4x56n2df4x56n2df4x568c34z6"
)

func TestConfigInit(t *testing.T) {
	t.Parallel()

	sys := deployertest.NewSystem(t)
	_ = sys.MustRun(t, "config", "init")

	cfg := sys.MustGetConfig(t)
	require.Equal(t, "neutrond", cfg.Chain.Binary)
	require.Equal(t, "test", cfg.Chain.KeyringBackend)
	require.Equal(t, 1.5, cfg.Chain.GasAdjustment)
	require.Equal(t, "neutron", cfg.Bech32Prefix)
	require.Zero(t, cfg.CodeIDs.Processor)

	res := sys.Run(zaptest.NewLogger(t), "config", "init")
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "config already exists")
}

func TestConfigEnvironmentOverridesFile(t *testing.T) {
	sys := deployertest.NewSystem(t)
	sys.MustWriteConfig(t, `
owner: `+operator+`
chain:
  chain-id: neutron-1
  rpc-addr: http://localhost:26657
code-ids:
  processor: 12
`)

	t.Setenv("LD_TOOL_DAO_COMMITTEE_ADDRESS", dao)
	t.Setenv("LD_TOOL_OPERATOR_MONIKER", "deployer")
	t.Setenv("LD_TOOL_NEUTRON_CHAIN_ID", "pion-1")
	t.Setenv("LD_TOOL_GAS_ADJUSTMENT", "1.8")
	t.Setenv("LD_TOOL_SPLITER_CODE_ID", "4321")

	res := sys.MustRun(t, "config", "show", "--json")

	var cfg cmd.Config
	require.NoError(t, json.Unmarshal(res.Stdout.Bytes(), &cfg))
	require.Equal(t, dao, cfg.Owner)
	require.Equal(t, "deployer", cfg.Chain.Key)
	require.Equal(t, "pion-1", cfg.Chain.ChainID)
	require.Equal(t, 1.8, cfg.Chain.GasAdjustment)
	require.Equal(t, uint64(4321), cfg.CodeIDs.Splitter)
	// Keys only in the file are kept, unset keys fall back to defaults.
	require.Equal(t, "http://localhost:26657", cfg.Chain.RPCAddr)
	require.Equal(t, uint64(12), cfg.CodeIDs.Processor)
	require.Equal(t, "neutrond", cfg.Chain.Binary)
}

func TestConfigRejectsMalformedCodeID(t *testing.T) {
	sys := deployertest.NewSystem(t)
	t.Setenv("LD_TOOL_PROCESSOR_CODE_ID", "twelve")

	res := sys.Run(zaptest.NewLogger(t), "config", "show")
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "code-ids.processor")
}

func TestCreateProgramReportsEveryMissingSetting(t *testing.T) {
	t.Parallel()

	sys := deployertest.NewSystem(t)
	res := sys.Run(zaptest.NewLogger(t), "create-program",
		"--label-prefix", "lp",
		"--pools", poolOne+",1000,2000,untrn,uatom",
	)
	require.Error(t, res.Err)

	for _, missing := range []string{
		"key must be set",
		"address must be set",
		"chain-id must be set",
		"rpc-addr must be set",
		"code-ids.base-account must be set",
		"code-ids.processor must be set",
		"owner must be set",
	} {
		require.Contains(t, res.Err.Error(), missing)
	}
}
