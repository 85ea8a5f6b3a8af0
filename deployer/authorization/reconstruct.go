package authorization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/valence-tools/lpdeployer/deployer/types"
	"github.com/valence-tools/lpdeployer/deployer/valence"
)

// Authorization is a published authorization as returned by the authorization contract.
// The subroutine is kept as generic JSON so that fields and shapes unknown to this
// package do not break parsing.
type Authorization struct {
	Label      string      `json:"label"`
	Subroutine interface{} `json:"subroutine"`
}

// vocabulary maps each known restriction token to the message that triggers it.
var vocabulary = map[FunctionID]func() valence.FunctionMsg{
	FunctionSplit:                       valence.NewSplitMsg,
	FunctionProvideDoubleSidedLiquidity: valence.NewProvideDoubleSidedLiquidityMsg,
	FunctionWithdrawLiquidity:           valence.NewWithdrawLiquidityMsg,
}

// subroutineKinds are the subroutine variants whose functions are walked, in this order.
var subroutineKinds = []string{"atomic", "non_atomic"}

// ParseAuthorizations decodes the response of an authorizations query. Both the node
// CLI form {"data":[...]} and a bare list are accepted.
func ParseAuthorizations(raw []byte) ([]Authorization, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, sdkerrors.Wrap(types.ErrMalformedAuthorizationData, "empty response")
	}

	if raw[0] == '{' {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, sdkerrors.Wrap(types.ErrMalformedAuthorizationData, err.Error())
		}
		if wrapped.Data == nil {
			return nil, sdkerrors.Wrap(types.ErrMalformedAuthorizationData, "response has no data field")
		}
		raw = wrapped.Data
	}

	var auths []Authorization
	if err := json.Unmarshal(raw, &auths); err != nil {
		return nil, sdkerrors.Wrap(types.ErrMalformedAuthorizationData, err.Error())
	}
	for i, a := range auths {
		if a.Label == "" {
			return nil, sdkerrors.Wrapf(types.ErrMalformedAuthorizationData, "authorization %d has no label", i)
		}
	}
	if auths == nil {
		auths = []Authorization{}
	}
	return auths, nil
}

// Filter returns the authorizations whose label ends with the suffix of action, in input order.
func Filter(auths []Authorization, action types.ProgramAction) []Authorization {
	suffix := action.LabelSuffix()
	out := make([]Authorization, 0, len(auths))
	for _, a := range auths {
		if strings.HasSuffix(a.Label, suffix) {
			out = append(out, a)
		}
	}
	return out
}

// FunctionIdentifiers lists, in call order, the vocabulary operation every process_function
// step of subroutine is restricted to. Steps with another message name, or without a known
// operation token, are skipped.
func FunctionIdentifiers(subroutine interface{}) []FunctionID {
	obj, ok := subroutine.(map[string]interface{})
	if !ok {
		return nil
	}

	var ids []FunctionID
	for _, kind := range subroutineKinds {
		body, ok := obj[kind].(map[string]interface{})
		if !ok {
			continue
		}
		functions, _ := body["functions"].([]interface{})
		for _, fn := range functions {
			if id, ok := functionIdentifier(fn); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// functionIdentifier returns the first vocabulary token found in the must_be_included
// restrictions of a process_function step.
func functionIdentifier(fn interface{}) (FunctionID, bool) {
	message, ok := lookup(fn, "message_details", "message").(map[string]interface{})
	if !ok {
		return "", false
	}
	if name, _ := message["name"].(string); name != DispatchName {
		return "", false
	}

	restrictions, _ := message["params_restrictions"].([]interface{})
	for _, r := range restrictions {
		tokens, _ := lookup(r, "must_be_included").([]interface{})
		for _, tok := range tokens {
			s, ok := tok.(string)
			if !ok {
				continue
			}
			if _, known := vocabulary[FunctionID(s)]; known {
				return FunctionID(s), true
			}
		}
	}
	return "", false
}

// lookup follows keys through nested JSON objects, returning nil when any level is missing.
func lookup(v interface{}, keys ...string) interface{} {
	for _, k := range keys {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		v = obj[k]
	}
	return v
}

// FunctionMessage returns the library message triggering id. ok is false for identifiers
// outside the vocabulary.
func FunctionMessage(id FunctionID) (msg valence.FunctionMsg, ok bool) {
	newMsg, ok := vocabulary[id]
	if !ok {
		return valence.FunctionMsg{}, false
	}
	return newMsg(), true
}

// ExecuteMessages rebuilds the processor messages that execute subroutine, one per
// recognised step and in the same order.
func ExecuteMessages(subroutine interface{}) ([]ProcessorMessage, error) {
	ids := FunctionIdentifiers(subroutine)
	msgs := make([]ProcessorMessage, 0, len(ids))
	for _, id := range ids {
		fn, _ := FunctionMessage(id)
		msg, err := NewProcessorMessage(fn)
		if err != nil {
			return nil, fmt.Errorf("encoding %s message: %w", id, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
