package cmd

import (
	"errors"
	"fmt"
)

func errProgramNotFound(prefix, path string) error {
	return fmt.Errorf("no program %q, expected a record at %s", prefix, path)
}

func errProgramIncomplete(prefix, missing string) error {
	return fmt.Errorf("program %q has no %s yet, was it created completely?", prefix, missing)
}

var (
	errMissingTarget   = errors.New("expected the contract address flag OR --label-prefix, found neither")
	errMultipleTargets = errors.New("expected the contract address flag OR --label-prefix, found both")
)
