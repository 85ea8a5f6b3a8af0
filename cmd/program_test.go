package cmd_test

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/valence-tools/lpdeployer/deployer"
	"github.com/valence-tools/lpdeployer/deployer/address"
	"github.com/valence-tools/lpdeployer/deployer/types"
	"github.com/valence-tools/lpdeployer/internal/deployertest"
)

func TestCreateProgramRejectsMalformedPools(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"missing fields", []string{"--pools", poolOne + ",1000,2000"}},
		{"negative amount", []string{"--pools", poolOne + ",-1,2000,untrn,uatom"}},
		{"unknown lp token", []string{"--pools", poolOne + ",1,2,untrn,uatom,erc20:xyk"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sys := deployertest.NewSystem(t)
			args := append([]string{"create-program", "--label-prefix", "lp"}, tt.args...)
			res := sys.Run(zaptest.NewLogger(t), args...)
			require.ErrorIs(t, res.Err, types.ErrInvalidPool)
		})
	}

	sys := deployertest.NewSystem(t)
	res := sys.Run(zaptest.NewLogger(t), "create-program", "--label-prefix", "lp")
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "--pools")
}

func TestExecuteProgramTarget(t *testing.T) {
	t.Parallel()

	sys := deployertest.NewSystem(t)

	res := sys.Run(zaptest.NewLogger(t), "execute-program", "--action", "deploy")
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "found neither")

	res = sys.Run(zaptest.NewLogger(t), "execute-program", "--action", "deploy",
		"--auth-contract-address", operator, "--label-prefix", "lp")
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "found both")

	res = sys.Run(zaptest.NewLogger(t), "execute-program", "--action", "deploy", "--label-prefix", "lp")
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), `no program "lp"`)

	res = sys.Run(zaptest.NewLogger(t), "execute-program", "--action", "migrate", "--label-prefix", "lp")
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "unknown action")
}

func TestTickProcessorIncompleteProgram(t *testing.T) {
	t.Parallel()

	sys := deployertest.NewSystem(t)
	store := deployer.NewRecordStore(zaptest.NewLogger(t), filepath.Join(sys.HomeDir, "programs"))
	require.NoError(t, store.Save(&deployer.ProgramRecord{LabelPrefix: "lp", Pools: []deployer.PoolRecord{}}))

	res := sys.Run(zaptest.NewLogger(t), "tick-processor", "--label-prefix", "lp")
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "has no processor yet")
}

func TestQueryProgram(t *testing.T) {
	t.Parallel()

	sys := deployertest.NewSystem(t)
	store := deployer.NewRecordStore(zaptest.NewLogger(t), filepath.Join(sys.HomeDir, "programs"))
	require.NoError(t, store.Save(&deployer.ProgramRecord{
		LabelPrefix:   "lp",
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Authorization: dao,
		Processor:     operator,
		Pools:         []deployer.PoolRecord{{Address: poolOne, AmountA: "1", AmountB: "2"}},
		Completed:     true,
	}))

	res := sys.MustRun(t, "query", "program", "lp", "--json")

	var rec deployer.ProgramRecord
	require.NoError(t, json.Unmarshal(res.Stdout.Bytes(), &rec))
	require.Equal(t, dao, rec.Authorization)
	require.Equal(t, operator, rec.Processor)
	require.True(t, rec.Completed)
	require.Len(t, rec.Pools, 1)

	res = sys.Run(zaptest.NewLogger(t), "query", "program", "other")
	require.Error(t, res.Err)
}

func TestQueryPredictAddress(t *testing.T) {
	t.Parallel()

	const codeHash = "13a1fc994cc6d1c81b746ee0c0ff6f90043875e0bf1d9be6b7d779fc978dc2a5"
	want, err := address.NewCodec("neutron").Predict(operator, "61", codeHash)
	require.NoError(t, err)

	sys := deployertest.NewSystem(t)
	res := sys.MustRun(t, "query", "predict-address", "--creator", operator, "--salt", "61", "--code-hash", codeHash)
	require.Equal(t, want, strings.TrimSpace(res.Stdout.String()))

	res = sys.Run(zaptest.NewLogger(t), "query", "predict-address", "--salt", "61", "--code-hash", codeHash)
	require.Error(t, res.Err)
	require.Contains(t, res.Err.Error(), "--creator")

	res = sys.Run(zaptest.NewLogger(t), "query", "predict-address", "--creator", operator, "--salt", "zz", "--code-hash", codeHash)
	require.ErrorIs(t, res.Err, types.ErrInvalidEncoding)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	sys := deployertest.NewSystem(t)
	res := sys.MustRun(t, "version", "--json")

	var info map[string]string
	require.NoError(t, json.Unmarshal(res.Stdout.Bytes(), &info))
	require.Contains(t, info, "cosmos-sdk")
	require.Contains(t, info["go"], "go")
}
