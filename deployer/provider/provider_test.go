package provider_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valence-tools/lpdeployer/deployer/provider"
)

func TestContractAddress(t *testing.T) {
	t.Parallel()

	res := provider.TxResponse{Events: []provider.Event{
		{EventType: "message", Attributes: map[string]string{"action": "instantiate"}},
		{EventType: "instantiate", Attributes: map[string]string{"_contract_address": ""}},
		{EventType: "instantiate", Attributes: map[string]string{"_contract_address": "neutron1first"}},
		{EventType: "wasm", Attributes: map[string]string{"_contract_address": "neutron1second"}},
	}}

	addr, ok := res.ContractAddress("_contract_address")
	require.True(t, ok)
	require.Equal(t, "neutron1first", addr)

	_, ok = provider.TxResponse{}.ContractAddress("_contract_address")
	require.False(t, ok)
}
