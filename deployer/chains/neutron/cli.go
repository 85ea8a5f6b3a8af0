package neutron

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// CommandRunner runs the node binary and returns what it printed on stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// txFlags are appended to every transaction command.
func (np *NeutronProvider) txFlags() []string {
	pc := np.PCfg
	flags := []string{
		"--from", pc.Key,
		"--gas", "auto",
		"--gas-adjustment", strconv.FormatFloat(pc.GasAdjustment, 'f', -1, 64),
		"--gas-prices", pc.GasPrices,
		"--chain-id", pc.ChainID,
		"--keyring-backend", pc.KeyringBackend,
		"--broadcast-mode", "sync",
		"--output", "json",
		"--node", pc.RPCAddr,
		"-y",
	}
	if pc.Home != "" {
		flags = append(flags, "--home", pc.Home)
	}
	return flags
}

func (np *NeutronProvider) queryFlags() []string {
	return []string{"--node", np.PCfg.RPCAddr, "--output", "json"}
}

// adminFlags sets the contract admin of instantiated contracts.
func (np *NeutronProvider) adminFlags() []string {
	if np.PCfg.Admin == "" {
		return []string{"--no-admin"}
	}
	return []string{"--admin", np.PCfg.Admin}
}

func (np *NeutronProvider) run(ctx context.Context, args ...string) ([]byte, error) {
	np.log.Debug("Running node command", zap.String("binary", np.PCfg.Binary), zap.Strings("args", args))
	return np.runner.Run(ctx, np.PCfg.Binary, args...)
}
