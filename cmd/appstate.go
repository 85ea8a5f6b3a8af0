package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/valence-tools/lpdeployer/deployer"
	"github.com/valence-tools/lpdeployer/deployer/address"
	"github.com/valence-tools/lpdeployer/internal/deploydebug"
)

// appState is the modifiable state of the application.
type appState struct {
	// Log is the root logger of the application.
	// Consumers are expected to store and use local copies of the logger
	// after modifying with the .With method.
	Log *zap.Logger

	Viper *viper.Viper

	HomePath string
	Debug    bool
	Config   *Config
}

func (a *appState) configPath() string {
	return filepath.Join(a.HomePath, "config", "config.yaml")
}

func (a *appState) programsDir() string {
	return filepath.Join(a.HomePath, "programs")
}

// loadConfig reads the config file, if there is one, and the LD_TOOL_* environment
// into a.Config. It does not validate the result.
func (a *appState) loadConfig() error {
	cfgPath := a.configPath()
	if _, err := os.Stat(cfgPath); err == nil {
		a.Viper.SetConfigFile(cfgPath)
		if err := a.Viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file at %s: %w", cfgPath, err)
		}
	}

	cfg, err := configFromViper(a.Viper)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.Config = cfg
	return nil
}

// writeConfig serializes cfg to the config file, which must not exist yet.
func (a *appState) writeConfig(cfg *Config) error {
	cfgPath := a.configPath()
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("config already exists: %s", cfgPath)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(cfgPath, out, 0o600); err != nil {
		return fmt.Errorf("failed to write config file at %s: %w", cfgPath, err)
	}

	a.Config = cfg
	return nil
}

func (a *appState) codec() address.Codec {
	return address.NewCodec(a.Config.Bech32Prefix)
}

func (a *appState) records() deployer.RecordStore {
	return deployer.NewRecordStore(a.Log, a.programsDir())
}

// newDeployer validates the config and builds a deployer signing with the configured
// operator key. When --debug-addr is set the debug server is started for the
// lifetime of the command.
func (a *appState) newDeployer(cmd *cobra.Command) (*deployer.Deployer, error) {
	if err := a.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", a.configPath(), err)
	}

	cp, err := a.Config.Chain.NewProvider(a.Log)
	if err != nil {
		return nil, err
	}

	metrics := deployer.NewPrometheusMetrics()
	if err := a.startDebugServer(cmd, metrics); err != nil {
		return nil, err
	}

	return deployer.NewDeployer(a.Log, cp, a.codec(), a.Config.CodeIDs, a.Config.Owner, a.records(),
		deployer.WithMetrics(metrics),
	), nil
}

func (a *appState) startDebugServer(cmd *cobra.Command, metrics *deployer.PrometheusMetrics) error {
	if cmd.Flags().Lookup(flagDebugAddr) == nil {
		return nil
	}
	debugAddr, err := cmd.Flags().GetString(flagDebugAddr)
	if err != nil {
		return err
	}
	if debugAddr == "" {
		return nil
	}

	ln, err := net.Listen("tcp", debugAddr)
	if err != nil {
		a.Log.Error("Failed to listen on debug address. If you have another lpdeployer process open, use --" + flagDebugAddr + " to pick a different address.")
		return fmt.Errorf("failed to listen on debug address %q: %w", debugAddr, err)
	}

	log := a.Log.With(zap.String("sys", "debughttp"))
	log.Info("Debug server listening", zap.String("addr", debugAddr))
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	deploydebug.StartDebugServer(ctx, log, ln, metrics.Registry)
	return nil
}
