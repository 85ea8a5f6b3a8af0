package deployer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/fslock"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/valence-tools/lpdeployer/deployer/types"
)

const recordLockTimeout = 10 * time.Second

// ProgramRecord is everything a create-program run produced. It is rewritten after every
// step so that a failed run leaves behind the contracts it already created.
type ProgramRecord struct {
	LabelPrefix string    `yaml:"label-prefix" json:"label-prefix"`
	ChainID     string    `yaml:"chain-id" json:"chain-id"`
	Operator    string    `yaml:"operator" json:"operator"`
	Owner       string    `yaml:"owner" json:"owner"`
	CreatedAt   time.Time `yaml:"created-at" json:"created-at"`

	Salt                   string `yaml:"salt" json:"salt"`
	AuthorizationCodeHash  string `yaml:"authorization-code-hash" json:"authorization-code-hash"`
	PredictedAuthorization string `yaml:"predicted-authorization" json:"predicted-authorization"`
	Authorization          string `yaml:"authorization,omitempty" json:"authorization,omitempty"`
	Processor              string `yaml:"processor,omitempty" json:"processor,omitempty"`

	InputAccount string       `yaml:"input-account,omitempty" json:"input-account,omitempty"`
	Splitter     string       `yaml:"splitter,omitempty" json:"splitter,omitempty"`
	Pools        []PoolRecord `yaml:"pools" json:"pools"`

	Authorizations       []string `yaml:"authorizations,omitempty" json:"authorizations,omitempty"`
	OwnershipTransferred bool     `yaml:"ownership-transferred" json:"ownership-transferred"`
	Completed            bool     `yaml:"completed" json:"completed"`
}

// PoolRecord holds the contracts created for one pool.
type PoolRecord struct {
	Address  string `yaml:"address" json:"address"`
	AmountA  string `yaml:"amount-a" json:"amount-a"`
	AmountB  string `yaml:"amount-b" json:"amount-b"`
	DenomA   string `yaml:"denom-a" json:"denom-a"`
	DenomB   string `yaml:"denom-b" json:"denom-b"`
	PoolType string `yaml:"pool-type" json:"pool-type"`

	SplitAccount      string `yaml:"split-account,omitempty" json:"split-account,omitempty"`
	LiquidityAccount  string `yaml:"liquidity-account,omitempty" json:"liquidity-account,omitempty"`
	WithdrawalAccount string `yaml:"withdrawal-account,omitempty" json:"withdrawal-account,omitempty"`
	LPer              string `yaml:"lper,omitempty" json:"lper,omitempty"`
	Withdrawer        string `yaml:"withdrawer,omitempty" json:"withdrawer,omitempty"`
}

func newPoolRecord(p types.PoolInfo) PoolRecord {
	return PoolRecord{
		Address:  p.Address,
		AmountA:  p.AmountA.String(),
		AmountB:  p.AmountB.String(),
		DenomA:   p.DenomA,
		DenomB:   p.DenomB,
		PoolType: p.PoolType.String(),
	}
}

// Accounts returns every account of the program, input account first.
func (r *ProgramRecord) Accounts() []string {
	var accounts []string
	if r.InputAccount != "" {
		accounts = append(accounts, r.InputAccount)
	}
	for _, p := range r.Pools {
		for _, a := range []string{p.SplitAccount, p.LiquidityAccount, p.WithdrawalAccount} {
			if a != "" {
				accounts = append(accounts, a)
			}
		}
	}
	return accounts
}

// RecordStore keeps program records as YAML files in one directory.
type RecordStore struct {
	log *zap.Logger
	dir string
}

func NewRecordStore(log *zap.Logger, dir string) RecordStore {
	return RecordStore{log: log, dir: dir}
}

func (s RecordStore) Dir() string {
	return s.dir
}

// Path returns the file the record of the program labelled prefix is stored in.
func (s RecordStore) Path(prefix string) string {
	return filepath.Join(s.dir, prefix+".yaml")
}

// Lock guards the record of prefix against a concurrent create-program run.
// The returned func releases the lock.
func (s RecordStore) Lock(prefix string) (func(), error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	lockFilePath := filepath.Join(s.dir, prefix+".lock")
	lock := fslock.New(lockFilePath)
	if err := lock.LockWithTimeout(recordLockTimeout); err != nil {
		return nil, fmt.Errorf("failed to acquire lock for program %s: %w", prefix, err)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			s.log.Error("Error unlocking program record lock, please manually delete",
				zap.String("filepath", lockFilePath),
			)
		}
	}, nil
}

// Exists reports whether a record for prefix was already written.
func (s RecordStore) Exists(prefix string) bool {
	_, err := os.Stat(s.Path(prefix))
	return err == nil
}

// Save writes rec, replacing the previous version atomically.
func (s RecordStore) Save(rec *ProgramRecord) error {
	out, err := yaml.Marshal(rec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	path := s.Path(rec.LabelPrefix)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("failed to write program record %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write program record %s: %w", path, err)
	}
	return nil
}

// Load reads the record of the program labelled prefix.
func (s RecordStore) Load(prefix string) (*ProgramRecord, error) {
	path := s.Path(prefix)
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program record %s: %w", path, err)
	}

	rec := new(ProgramRecord)
	if err := yaml.Unmarshal(bz, rec); err != nil {
		return nil, fmt.Errorf("failed to parse program record %s: %w", path, err)
	}
	return rec, nil
}
