package types

import (
	"fmt"
	"strings"
)

// ProgramAction selects which of a program's authorizations gets executed.
type ProgramAction int

const (
	ActionDeploy ProgramAction = iota
	ActionWithdraw
)

func (a ProgramAction) String() string {
	switch a {
	case ActionDeploy:
		return "deploy"
	case ActionWithdraw:
		return "withdraw"
	default:
		return fmt.Sprintf("ProgramAction(%d)", int(a))
	}
}

// LabelSuffix is the trailing substring of the labels of authorizations for this action.
func (a ProgramAction) LabelSuffix() string {
	if a == ActionWithdraw {
		return WithdrawLabelSuffix
	}
	return DeployLabelSuffix
}

// ParseProgramAction parses "deploy" or "withdraw", case insensitive.
func ParseProgramAction(s string) (ProgramAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deploy":
		return ActionDeploy, nil
	case "withdraw":
		return ActionWithdraw, nil
	default:
		return 0, fmt.Errorf("unknown action %q, expected deploy or withdraw", s)
	}
}

// AuthorizationLabel builds the label of a program authorization from its prefix.
func AuthorizationLabel(prefix string, a ProgramAction) string {
	return prefix + "_" + a.LabelSuffix()
}
