package mock_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/valence-tools/lpdeployer/deployer/address"
	"github.com/valence-tools/lpdeployer/deployer/authorization"
	"github.com/valence-tools/lpdeployer/deployer/chains/mock"
	"github.com/valence-tools/lpdeployer/deployer/types"
)

const operator = "neutron1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5ma9uum"

func TestMockInstantiate2LandsOnPrediction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mp := mock.NewMockProvider(zaptest.NewLogger(t), "neutron-test", operator)

	hash, err := mp.CodeHash(ctx, 5)
	require.NoError(t, err)

	predicted, err := address.NewCodec(types.DefaultBech32Prefix).Predict(operator, "0102", hash)
	require.NoError(t, err)

	addr, err := mp.InstantiateContract2(ctx, 5, "auth", []byte(`{}`), "0102")
	require.NoError(t, err)
	require.Equal(t, predicted, addr)

	_, err = mp.InstantiateContract2(ctx, 5, "auth", []byte(`{}`), "0102")
	require.ErrorIs(t, err, types.ErrUpstreamFailure)
}

func TestMockInstantiateAssignsDistinctAddresses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mp := mock.NewMockProvider(zaptest.NewLogger(t), "neutron-test", operator)

	a, err := mp.InstantiateContract(ctx, 1, "a", []byte(`{}`))
	require.NoError(t, err)
	b, err := mp.InstantiateContract(ctx, 1, "b", []byte(`{}`))
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	c, ok := mp.Contract(b)
	require.True(t, ok)
	require.Equal(t, "b", c.Label)
}

func TestMockAuthorizationsQueryPages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mp := mock.NewMockProvider(zaptest.NewLogger(t), "neutron-test", operator)

	auth, err := mp.InstantiateContract(ctx, 1, "auth", []byte(`{}`))
	require.NoError(t, err)

	msg, err := json.Marshal(authorization.NewCreateAuthorizationsMsg(
		authorization.NewAuthorizationInfo("p_deploy", authorization.DeploySubroutine("neutron1s", nil)),
		authorization.NewAuthorizationInfo("p_withdraw", authorization.WithdrawSubroutine([]string{"neutron1w"})),
	))
	require.NoError(t, err)
	_, err = mp.ExecuteContract(ctx, auth, msg)
	require.NoError(t, err)
	require.Len(t, mp.Authorizations(auth), 2)

	query := func(after string, limit uint32) []authorization.Authorization {
		q, err := json.Marshal(authorization.NewAuthorizationsQuery(after, limit))
		require.NoError(t, err)
		raw, err := mp.QuerySmart(ctx, auth, q)
		require.NoError(t, err)
		auths, err := authorization.ParseAuthorizations(raw)
		require.NoError(t, err)
		return auths
	}

	first := query("", 1)
	require.Len(t, first, 1)
	require.Equal(t, "p_deploy", first[0].Label)

	rest := query("p_deploy", 100)
	require.Len(t, rest, 1)
	require.Equal(t, "p_withdraw", rest[0].Label)

	require.Empty(t, query("p_withdraw", 100))
}

func TestMockFailureInjection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mp := mock.NewMockProvider(zaptest.NewLogger(t), "neutron-test", operator)
	mp.Fail = func(c mock.Call) error {
		if c.Kind == mock.CallInstantiate && c.Label == "boom" {
			return errors.New("out of gas")
		}
		return nil
	}

	_, err := mp.InstantiateContract(ctx, 1, "fine", []byte(`{}`))
	require.NoError(t, err)
	_, err = mp.InstantiateContract(ctx, 1, "boom", []byte(`{}`))
	require.ErrorIs(t, err, types.ErrUpstreamFailure)

	require.Len(t, mp.Calls(), 2)

	_, err = mp.ExecuteContract(ctx, "neutron1missing", []byte(`{}`))
	require.ErrorIs(t, err, types.ErrUpstreamFailure)
}
