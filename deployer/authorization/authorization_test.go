package authorization_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valence-tools/lpdeployer/deployer/authorization"
	"github.com/valence-tools/lpdeployer/deployer/types"
)

// roundTrip turns a built subroutine into the generic form it has once read back from chain.
func roundTrip(t *testing.T, s authorization.Subroutine) interface{} {
	t.Helper()
	bz, err := json.Marshal(s)
	require.NoError(t, err)
	var v interface{}
	require.NoError(t, json.Unmarshal(bz, &v))
	return v
}

func contracts(s authorization.Subroutine) []string {
	var out []string
	for _, fn := range s.Functions() {
		out = append(out, fn.ContractAddress.Addr)
	}
	return out
}

func TestDeploySubroutineOrder(t *testing.T) {
	t.Parallel()

	s := authorization.DeploySubroutine("neutron1splitter", []string{"neutron1lp1", "neutron1lp2"})

	require.Equal(t, []string{"neutron1splitter", "neutron1lp1", "neutron1lp2"}, contracts(s))
	require.Equal(t, []authorization.FunctionID{
		authorization.FunctionSplit,
		authorization.FunctionProvideDoubleSidedLiquidity,
		authorization.FunctionProvideDoubleSidedLiquidity,
	}, authorization.FunctionIdentifiers(roundTrip(t, s)))
}

func TestWithdrawSubroutineOrder(t *testing.T) {
	t.Parallel()

	s := authorization.WithdrawSubroutine([]string{"neutron1w1", "neutron1w2"})

	require.Equal(t, []string{"neutron1w1", "neutron1w2"}, contracts(s))
	require.Equal(t, []authorization.FunctionID{
		authorization.FunctionWithdrawLiquidity,
		authorization.FunctionWithdrawLiquidity,
	}, authorization.FunctionIdentifiers(roundTrip(t, s)))
}

func TestSubroutineIsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := json.Marshal(authorization.DeploySubroutine("neutron1s", []string{"neutron1a", "neutron1b"}))
	require.NoError(t, err)
	second, err := json.Marshal(authorization.DeploySubroutine("neutron1s", []string{"neutron1a", "neutron1b"}))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestBuilderBuildIsImmutable(t *testing.T) {
	t.Parallel()

	b := authorization.NewBuilder().AddFunction("neutron1a", authorization.FunctionSplit)
	built := b.Build()
	b.AddFunction("neutron1b", authorization.FunctionSplit)

	require.Len(t, built.Functions(), 1)
	require.Equal(t, 2, b.Len())
}

func TestAtomicFunctionWireForm(t *testing.T) {
	t.Parallel()

	bz, err := json.Marshal(authorization.NewAtomicFunction("neutron1lib", authorization.FunctionSplit))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"domain": "main",
		"message_details": {
			"message_type": "cosmwasm_execute_msg",
			"message": {
				"name": "process_function",
				"params_restrictions": [{"must_be_included": ["process_function", "split"]}]
			}
		},
		"contract_address": {"|library_account_addr|": "neutron1lib"}
	}`, string(bz))
}

func TestCreateAuthorizationsWireForm(t *testing.T) {
	t.Parallel()

	msg := authorization.NewCreateAuthorizationsMsg(
		authorization.NewAuthorizationInfo("prog_withdraw", authorization.WithdrawSubroutine([]string{"neutron1w"})),
	)
	bz, err := json.Marshal(msg)
	require.NoError(t, err)
	require.JSONEq(t, `{"permissioned_action": {"create_authorizations": {"authorizations": [{
		"label": "prog_withdraw",
		"mode": "permissionless",
		"not_before": "never",
		"duration": "forever",
		"max_concurrent_executions": null,
		"subroutine": {"atomic": {
			"functions": [{
				"domain": "main",
				"message_details": {
					"message_type": "cosmwasm_execute_msg",
					"message": {
						"name": "process_function",
						"params_restrictions": [{"must_be_included": ["process_function", "withdraw_liquidity"]}]
					}
				},
				"contract_address": {"|library_account_addr|": "neutron1w"}
			}],
			"retry_logic": null,
			"expiration_time": null
		}},
		"priority": null
	}]}}}`, string(bz))
}

func TestOtherMessagesWireForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  interface{}
		want string
	}{
		{
			authorization.NewInstantiateMsg("neutron1op", "neutron1proc"),
			`{"owner":"neutron1op","processor":"neutron1proc","sub_owners":[]}`,
		},
		{
			authorization.NewTransferOwnershipMsg("neutron1dao"),
			`{"update_ownership":{"transfer_ownership":{"new_owner":"neutron1dao","expiry":null}}}`,
		},
		{
			authorization.NewAuthorizationsQuery("", authorization.QueryLimit),
			`{"authorizations":{"start_after":null,"limit":100}}`,
		},
		{
			authorization.NewAuthorizationsQuery("prog_deploy", 5),
			`{"authorizations":{"start_after":"prog_deploy","limit":5}}`,
		},
		{
			authorization.NewSendMsgsMsg("prog_deploy", []authorization.ProcessorMessage{}),
			`{"permissionless_action":{"send_msgs":{"label":"prog_deploy","messages":[],"ttl":null}}}`,
		},
	}
	for _, tt := range tests {
		bz, err := json.Marshal(tt.msg)
		require.NoError(t, err)
		require.JSONEq(t, tt.want, string(bz))
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	auths := []authorization.Authorization{
		{Label: "prog_deploy"},
		{Label: "prog_withdraw"},
		{Label: "other"},
		{Label: "second_deploy"},
	}

	labels := func(in []authorization.Authorization) []string {
		out := []string{}
		for _, a := range in {
			out = append(out, a.Label)
		}
		return out
	}

	require.Equal(t, []string{"prog_deploy", "second_deploy"}, labels(authorization.Filter(auths, types.ActionDeploy)))
	require.Equal(t, []string{"prog_withdraw"}, labels(authorization.Filter(auths, types.ActionWithdraw)))

	empty := authorization.Filter(nil, types.ActionDeploy)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	require.Empty(t, authorization.Filter([]authorization.Authorization{{Label: "other"}}, types.ActionWithdraw))
}

const publishedAuthorizations = `{"data":[
	{
		"label": "prog_deploy",
		"mode": "permissionless",
		"not_before": "never",
		"duration": "forever",
		"max_concurrent_executions": 1,
		"state": "enabled",
		"priority": "medium",
		"subroutine": {"atomic": {"functions": [
			{"domain": "main", "message_details": {"message_type": "cosmwasm_execute_msg", "message": {"name": "process_function", "params_restrictions": [{"must_be_included": ["process_function", "split"]}]}}, "contract_address": "neutron1s"},
			{"domain": "main", "message_details": {"message_type": "cosmwasm_execute_msg", "message": {"name": "process_function", "params_restrictions": [{"must_be_included": ["process_function", "provide_double_sided_liquidity"]}]}}, "contract_address": "neutron1l1"},
			{"domain": "main", "message_details": {"message_type": "cosmwasm_execute_msg", "message": {"name": "process_function", "params_restrictions": [{"must_be_included": ["process_function", "provide_double_sided_liquidity"]}]}}, "contract_address": "neutron1l2"}
		], "retry_logic": null, "expiration_time": null}}
	},
	{
		"label": "prog_withdraw",
		"subroutine": {"atomic": {"functions": [
			{"message_details": {"message": {"name": "process_function", "params_restrictions": [{"must_be_included": ["process_function", "withdraw_liquidity"]}]}}}
		]}}
	}
]}`

func TestParseAuthorizations(t *testing.T) {
	t.Parallel()

	auths, err := authorization.ParseAuthorizations([]byte(publishedAuthorizations))
	require.NoError(t, err)
	require.Len(t, auths, 2)
	require.Equal(t, "prog_deploy", auths[0].Label)

	bare, err := authorization.ParseAuthorizations([]byte(`[{"label":"x_deploy","subroutine":{}}]`))
	require.NoError(t, err)
	require.Len(t, bare, 1)

	none, err := authorization.ParseAuthorizations([]byte(`{"data":[]}`))
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestParseAuthorizationsMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		``,
		`not json`,
		`{"result":[]}`,
		`{"data":{"label":"x"}}`,
		`[{"label":5}]`,
		`[{"subroutine":{}}]`,
		`"prog_deploy"`,
	} {
		_, err := authorization.ParseAuthorizations([]byte(raw))
		require.ErrorIs(t, err, types.ErrMalformedAuthorizationData, raw)
	}
}

func TestReconstructionFidelity(t *testing.T) {
	t.Parallel()

	auths, err := authorization.ParseAuthorizations([]byte(publishedAuthorizations))
	require.NoError(t, err)

	deploy := authorization.Filter(auths, types.ActionDeploy)
	require.Len(t, deploy, 1)

	require.Equal(t, []authorization.FunctionID{
		authorization.FunctionSplit,
		authorization.FunctionProvideDoubleSidedLiquidity,
		authorization.FunctionProvideDoubleSidedLiquidity,
	}, authorization.FunctionIdentifiers(deploy[0].Subroutine))

	msgs, err := authorization.ExecuteMessages(deploy[0].Subroutine)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	decoded := make([]string, 0, len(msgs))
	for _, m := range msgs {
		require.NotNil(t, m.CosmwasmExecuteMsg)
		bz, err := base64.StdEncoding.DecodeString(m.CosmwasmExecuteMsg.Msg)
		require.NoError(t, err)
		decoded = append(decoded, string(bz))
	}
	require.JSONEq(t, `{"process_function":{"split":{}}}`, decoded[0])
	require.JSONEq(t, `{"process_function":{"provide_double_sided_liquidity":{"expected_pool_ratio_range":null}}}`, decoded[1])
	require.Equal(t, decoded[1], decoded[2])

	withdraw, err := authorization.ExecuteMessages(authorization.Filter(auths, types.ActionWithdraw)[0].Subroutine)
	require.NoError(t, err)
	require.Len(t, withdraw, 1)
	bz, err := base64.StdEncoding.DecodeString(withdraw[0].CosmwasmExecuteMsg.Msg)
	require.NoError(t, err)
	require.JSONEq(t, `{"process_function":{"withdraw_liquidity":{"expected_pool_ratio_range":null}}}`, string(bz))
}

func TestReconstructionTolerance(t *testing.T) {
	t.Parallel()

	var subroutine interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"atomic":{"functions":[
		{"message_details":{"message":{"name":"update_config","params_restrictions":[{"must_be_included":["split"]}]}}},
		{"message_details":{"message":{"name":"process_function","params_restrictions":[{"must_be_included":["process_function","swap"]}]}}},
		{"message_details":{"message":{"name":"process_function","params_restrictions":[{"cannot_be_included":["split"]}]}}},
		{"message_details":{"message":{"name":"process_function","params_restrictions":[{"must_be_included":[7,"split"]}]}}},
		{"message_details":{"message":{"name":"process_function"}}},
		{"message_details":"unexpected"},
		42
	]}}`), &subroutine))

	require.Equal(t, []authorization.FunctionID{authorization.FunctionSplit},
		authorization.FunctionIdentifiers(subroutine))

	for _, v := range []interface{}{nil, "atomic", []interface{}{}, map[string]interface{}{"atomic": 1}} {
		require.Empty(t, authorization.FunctionIdentifiers(v))
		msgs, err := authorization.ExecuteMessages(v)
		require.NoError(t, err)
		require.Empty(t, msgs)
	}
}

func TestReconstructNonAtomic(t *testing.T) {
	t.Parallel()

	var subroutine interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"non_atomic":{"functions":[
		{"message_details":{"message":{"name":"process_function","params_restrictions":[{"must_be_included":["process_function","withdraw_liquidity"]}]}}}
	]}}`), &subroutine))

	require.Equal(t, []authorization.FunctionID{authorization.FunctionWithdrawLiquidity},
		authorization.FunctionIdentifiers(subroutine))
}

func TestFunctionMessageVocabulary(t *testing.T) {
	t.Parallel()

	for _, id := range []authorization.FunctionID{
		authorization.FunctionSplit,
		authorization.FunctionProvideDoubleSidedLiquidity,
		authorization.FunctionWithdrawLiquidity,
	} {
		_, ok := authorization.FunctionMessage(id)
		require.True(t, ok, id)
	}

	_, ok := authorization.FunctionMessage("swap")
	require.False(t, ok)
}
