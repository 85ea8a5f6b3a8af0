package authorization

import (
	"encoding/base64"
	"encoding/json"

	"github.com/valence-tools/lpdeployer/deployer/valence"
)

const (
	ModePermissionless = "permissionless"
	NotBeforeNever     = "never"
	DurationForever    = "forever"

	// QueryLimit is the page size used when listing authorizations.
	QueryLimit = 100
)

// InstantiateMsg creates the authorization contract.
type InstantiateMsg struct {
	Owner     string   `json:"owner"`
	Processor string   `json:"processor"`
	SubOwners []string `json:"sub_owners"`
}

// NewInstantiateMsg returns an authorization contract instantiate message without sub owners.
func NewInstantiateMsg(owner, processor string) InstantiateMsg {
	return InstantiateMsg{Owner: owner, Processor: processor, SubOwners: []string{}}
}

// AuthorizationInfo is an authorization as submitted to create_authorizations.
type AuthorizationInfo struct {
	Label                   string     `json:"label"`
	Mode                    string     `json:"mode"`
	NotBefore               string     `json:"not_before"`
	Duration                string     `json:"duration"`
	MaxConcurrentExecutions *uint64    `json:"max_concurrent_executions"`
	Subroutine              Subroutine `json:"subroutine"`
	Priority                *string    `json:"priority"`
}

// NewAuthorizationInfo wraps subroutine in a permissionless authorization that never expires.
func NewAuthorizationInfo(label string, subroutine Subroutine) AuthorizationInfo {
	return AuthorizationInfo{
		Label:      label,
		Mode:       ModePermissionless,
		NotBefore:  NotBeforeNever,
		Duration:   DurationForever,
		Subroutine: subroutine,
	}
}

// ExecuteMsg is the execute message of the authorization contract.
type ExecuteMsg struct {
	PermissionedAction   *PermissionedAction      `json:"permissioned_action,omitempty"`
	PermissionlessAction *PermissionlessAction    `json:"permissionless_action,omitempty"`
	UpdateOwnership      *valence.OwnershipAction `json:"update_ownership,omitempty"`
}

type PermissionedAction struct {
	CreateAuthorizations *CreateAuthorizations `json:"create_authorizations,omitempty"`
}

type CreateAuthorizations struct {
	Authorizations []AuthorizationInfo `json:"authorizations"`
}

type PermissionlessAction struct {
	SendMsgs *SendMsgs `json:"send_msgs,omitempty"`
}

type SendMsgs struct {
	Label    string             `json:"label"`
	Messages []ProcessorMessage `json:"messages"`
	TTL      *struct{}          `json:"ttl"`
}

// ProcessorMessage is a message the processor relays to a library.
type ProcessorMessage struct {
	CosmwasmExecuteMsg *CosmwasmExecuteMsg `json:"cosmwasm_execute_msg,omitempty"`
}

type CosmwasmExecuteMsg struct {
	// Msg is the base64 encoded JSON message.
	Msg string `json:"msg"`
}

// NewProcessorMessage encodes msg as a CosmWasm execute message.
func NewProcessorMessage(msg interface{}) (ProcessorMessage, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return ProcessorMessage{}, err
	}
	return ProcessorMessage{
		CosmwasmExecuteMsg: &CosmwasmExecuteMsg{Msg: base64.StdEncoding.EncodeToString(bz)},
	}, nil
}

// NewCreateAuthorizationsMsg publishes auths in a single transaction.
func NewCreateAuthorizationsMsg(auths ...AuthorizationInfo) ExecuteMsg {
	return ExecuteMsg{
		PermissionedAction: &PermissionedAction{
			CreateAuthorizations: &CreateAuthorizations{Authorizations: auths},
		},
	}
}

// NewSendMsgsMsg enqueues messages under the authorization with the given label.
func NewSendMsgsMsg(label string, messages []ProcessorMessage) ExecuteMsg {
	return ExecuteMsg{
		PermissionlessAction: &PermissionlessAction{
			SendMsgs: &SendMsgs{Label: label, Messages: messages},
		},
	}
}

// NewTransferOwnershipMsg offers ownership of the authorization contract to newOwner.
func NewTransferOwnershipMsg(newOwner string) ExecuteMsg {
	return ExecuteMsg{UpdateOwnership: valence.NewTransferOwnershipAction(newOwner)}
}

// QueryMsg is the query message of the authorization contract.
type QueryMsg struct {
	Authorizations *AuthorizationsQuery `json:"authorizations,omitempty"`
}

type AuthorizationsQuery struct {
	StartAfter *string `json:"start_after"`
	Limit      *uint32 `json:"limit"`
}

// NewAuthorizationsQuery lists up to limit authorizations following startAfter.
// An empty startAfter starts from the first one.
func NewAuthorizationsQuery(startAfter string, limit uint32) QueryMsg {
	q := &AuthorizationsQuery{Limit: &limit}
	if startAfter != "" {
		q.StartAfter = &startAfter
	}
	return QueryMsg{Authorizations: q}
}
