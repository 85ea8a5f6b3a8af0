package deployer_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/valence-tools/lpdeployer/deployer"
)

func TestRecordStoreRoundTrip(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "programs")
	store := deployer.NewRecordStore(zaptest.NewLogger(t), dir)
	require.False(t, store.Exists("lp"))

	_, err := store.Load("lp")
	require.Error(t, err)

	rec := &deployer.ProgramRecord{
		LabelPrefix: "lp",
		ChainID:     chainID,
		Operator:    operator,
		Owner:       dao,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Salt:        "0102030405060708",
		Pools: []deployer.PoolRecord{
			{Address: poolOne, AmountA: "1000", AmountB: "2000", DenomA: "untrn", DenomB: "uatom", PoolType: "cw20:xyk"},
		},
	}
	require.NoError(t, store.Save(rec))
	require.True(t, store.Exists("lp"))
	require.Equal(t, filepath.Join(dir, "lp.yaml"), store.Path("lp"))

	rec.InputAccount = poolTwo
	require.NoError(t, store.Save(rec))

	loaded, err := store.Load("lp")
	require.NoError(t, err)
	require.Equal(t, poolTwo, loaded.InputAccount)
	require.Equal(t, rec.Pools, loaded.Pools)
	require.False(t, loaded.Completed)

	_, err = os.Stat(store.Path("lp") + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestRecordStoreLock(t *testing.T) {
	t.Parallel()

	store := deployer.NewRecordStore(zaptest.NewLogger(t), t.TempDir())

	unlock, err := store.Lock("lp")
	require.NoError(t, err)
	unlock()

	unlock, err = store.Lock("lp")
	require.NoError(t, err)
	unlock()
}

func TestProgramRecordAccounts(t *testing.T) {
	t.Parallel()

	rec := deployer.ProgramRecord{
		InputAccount: "in",
		Pools: []deployer.PoolRecord{
			{SplitAccount: "s0", LiquidityAccount: "l0", WithdrawalAccount: "w0"},
			{SplitAccount: "s1"},
		},
	}
	require.Equal(t, []string{"in", "s0", "l0", "w0", "s1"}, rec.Accounts())
	require.Empty(t, (&deployer.ProgramRecord{}).Accounts())
}
