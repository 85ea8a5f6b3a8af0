// Package valence holds the JSON messages understood by the Valence accounts, libraries
// and processor a program is assembled from.
package valence

// LibraryAccountType references an account or library by address.
type LibraryAccountType struct {
	Addr string `json:"|library_account_addr|"`
}

// AccountAddr references the account or library at addr.
func AccountAddr(addr string) LibraryAccountType {
	return LibraryAccountType{Addr: addr}
}

// AccountInstantiateMsg creates a base account.
type AccountInstantiateMsg struct {
	Admin             string   `json:"admin"`
	ApprovedLibraries []string `json:"approved_libraries"`
}

// NewAccountInstantiateMsg returns the instantiate message of a base account owned by admin
// with no library approved yet.
func NewAccountInstantiateMsg(admin string) AccountInstantiateMsg {
	return AccountInstantiateMsg{Admin: admin, ApprovedLibraries: []string{}}
}

// AccountExecuteMsg is the execute message of a base account.
type AccountExecuteMsg struct {
	ApproveLibrary  *ApproveLibrary  `json:"approve_library,omitempty"`
	UpdateOwnership *OwnershipAction `json:"update_ownership,omitempty"`
}

type ApproveLibrary struct {
	Library string `json:"library"`
}

// NewApproveLibraryMsg allows library to move funds of the account it is sent to.
func NewApproveLibraryMsg(library string) AccountExecuteMsg {
	return AccountExecuteMsg{ApproveLibrary: &ApproveLibrary{Library: library}}
}

// OwnershipAction is a cw-ownable ownership action.
type OwnershipAction struct {
	TransferOwnership *TransferOwnership `json:"transfer_ownership,omitempty"`
}

type TransferOwnership struct {
	NewOwner string `json:"new_owner"`
	// Expiry is always sent as null: ownership offers never expire.
	Expiry *struct{} `json:"expiry"`
}

// NewTransferOwnershipAction offers ownership of a contract to newOwner.
func NewTransferOwnershipAction(newOwner string) *OwnershipAction {
	return &OwnershipAction{TransferOwnership: &TransferOwnership{NewOwner: newOwner}}
}

// NewTransferAccountOwnershipMsg offers ownership of an account to newOwner.
func NewTransferAccountOwnershipMsg(newOwner string) AccountExecuteMsg {
	return AccountExecuteMsg{UpdateOwnership: NewTransferOwnershipAction(newOwner)}
}
