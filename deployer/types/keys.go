package types

const (
	// Codespace is the sdk error codespace every lpdeployer error is registered under.
	Codespace = "lpdeployer"

	// DefaultBech32Prefix is the account prefix of the Neutron network.
	DefaultBech32Prefix = "neutron"

	// ContractAddressAttributeKey is the event attribute wasmd emits with the address
	// of a freshly instantiated contract.
	ContractAddressAttributeKey = "_contract_address"

	// Suffixes appended to a program's label prefix to name its two authorizations.
	DeployLabelSuffix   = "deploy"
	WithdrawLabelSuffix = "withdraw"
)
