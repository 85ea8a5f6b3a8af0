package deployer

import (
	"context"
	"fmt"
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"go.uber.org/zap"

	"github.com/valence-tools/lpdeployer/deployer/authorization"
	"github.com/valence-tools/lpdeployer/deployer/types"
	"github.com/valence-tools/lpdeployer/deployer/valence"
)

// CreateProgram instantiates and wires every contract of a liquidity program for pools,
// publishes its deploy and withdraw authorizations and hands the program over to the owner.
//
// Steps run strictly in order and the first failure aborts the run. The program record
// is saved after every step, so the contracts created before a failure stay on file.
func (d *Deployer) CreateProgram(ctx context.Context, labelPrefix string, pools []types.PoolInfo) (rec *ProgramRecord, err error) {
	if err := d.validateProgram(labelPrefix, pools); err != nil {
		return nil, err
	}

	unlock, err := d.records.Lock(labelPrefix)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if d.records.Exists(labelPrefix) {
		return nil, fmt.Errorf("program %q already exists, see %s", labelPrefix, d.records.Path(labelPrefix))
	}

	defer func() {
		if d.metrics == nil {
			return
		}
		result := "success"
		if err != nil {
			result = "failure"
		}
		d.metrics.IncProgramsCreated(d.cp.ChainID(), result)
	}()

	now := d.now()
	c := &programCreation{
		Deployer: d,
		log:      d.log.With(zap.String("program", labelPrefix)),
		pools:    pools,
		rec: &ProgramRecord{
			LabelPrefix: labelPrefix,
			ChainID:     d.cp.ChainID(),
			Operator:    d.cp.Address(),
			Owner:       d.owner,
			CreatedAt:   now.UTC(),
			Salt:        NewSalt(now),
		},
	}
	for _, p := range pools {
		c.rec.Pools = append(c.rec.Pools, newPoolRecord(p))
	}

	c.log.Info("Creating program", zap.Int("pools", len(pools)), zap.String("owner", d.owner))

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"instantiate authorization and processor", c.instantiateAuthorizationAndProcessor},
		{"create accounts", c.createAccounts},
		{"instantiate splitter", c.instantiateSplitter},
		{"instantiate astroport libraries", c.instantiateAstroportLibraries},
		{"create authorizations", c.createAuthorizations},
		{"transfer ownership", c.transferOwnership},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return c.rec, err
		}
		if err := step.run(ctx); err != nil {
			c.checkpoint()
			c.log.Error("Program creation failed",
				zap.String("step", step.name),
				zap.String("record", d.records.Path(labelPrefix)),
				zap.Error(err),
			)
			return c.rec, fmt.Errorf("%s: %w", step.name, err)
		}
		if err := d.records.Save(c.rec); err != nil {
			return c.rec, err
		}
	}

	c.rec.Completed = true
	if err := d.records.Save(c.rec); err != nil {
		return c.rec, err
	}

	c.log.Info("Program created",
		zap.String("authorization", c.rec.Authorization),
		zap.String("processor", c.rec.Processor),
		zap.String("input_account", c.rec.InputAccount),
	)
	return c.rec, nil
}

func (d *Deployer) validateProgram(labelPrefix string, pools []types.PoolInfo) error {
	if labelPrefix == "" {
		return fmt.Errorf("label prefix must not be empty")
	}
	if strings.ContainsAny(labelPrefix, `/\ `) {
		return fmt.Errorf("label prefix %q must not contain path separators or spaces", labelPrefix)
	}
	if len(pools) == 0 {
		return sdkerrors.Wrap(types.ErrInvalidPool, "at least one pool is required")
	}
	for _, p := range pools {
		if err := d.codec.Validate(p.Address); err != nil {
			return sdkerrors.Wrapf(types.ErrInvalidPool, "pool %s: %v", p.Address, err)
		}
		if p.DenomA == p.DenomB {
			return sdkerrors.Wrapf(types.ErrInvalidPool, "pool %s: both assets are %s", p.Address, p.DenomA)
		}
	}
	if err := d.codec.Validate(d.owner); err != nil {
		return fmt.Errorf("program owner: %w", err)
	}
	return nil
}

// programCreation is the state of one CreateProgram run.
type programCreation struct {
	*Deployer

	log   *zap.Logger
	pools []types.PoolInfo
	rec   *ProgramRecord
}

func (c *programCreation) checkpoint() {
	if err := c.records.Save(c.rec); err != nil {
		c.log.Error("Failed to save program record", zap.Error(err))
	}
}

func (c *programCreation) label(role string) string {
	return c.Deployer.label(c.rec.LabelPrefix, role)
}

func (c *programCreation) poolLabel(i int, role string) string {
	return fmt.Sprintf("%s_pool%d_%s", c.rec.LabelPrefix, i, role)
}

// instantiateAuthorizationAndProcessor creates the processor bound to the predicted
// authorization address, then the authorization contract itself with instantiate2.
func (c *programCreation) instantiateAuthorizationAndProcessor(ctx context.Context) error {
	predicted, codeHash, err := c.PredictAuthorization(ctx, c.rec.Salt)
	if err != nil {
		return err
	}
	c.rec.AuthorizationCodeHash = codeHash
	c.rec.PredictedAuthorization = predicted
	c.log.Debug("Predicted authorization address", zap.String("address", predicted), zap.String("salt", c.rec.Salt))

	c.rec.Processor, err = c.instantiate(ctx, RoleProcessor, c.codes.Processor, c.label(RoleProcessor),
		valence.ProcessorInstantiateMsg{AuthorizationContract: predicted})
	if err != nil {
		return err
	}

	addr, err := c.instantiate2(ctx, RoleAuthorization, c.codes.Authorization, c.label(RoleAuthorization),
		authorization.NewInstantiateMsg(c.cp.Address(), c.rec.Processor), c.rec.Salt)
	if err != nil {
		return err
	}
	if addr != predicted {
		return sdkerrors.Wrapf(types.ErrPredictionMismatch, "authorization landed on %s, processor expects %s", addr, predicted)
	}
	c.rec.Authorization = addr
	return nil
}

// createAccounts creates the input account and, per pool, the split, liquidity and
// withdrawal accounts. The operator administers them until ownership is transferred.
func (c *programCreation) createAccounts(ctx context.Context) error {
	var err error
	initMsg := valence.NewAccountInstantiateMsg(c.cp.Address())

	c.rec.InputAccount, err = c.instantiate(ctx, RoleInputAccount, c.codes.BaseAccount, c.label(RoleInputAccount), initMsg)
	if err != nil {
		return err
	}

	for i := range c.rec.Pools {
		p := &c.rec.Pools[i]
		for _, acc := range []struct {
			role string
			addr *string
		}{
			{RoleSplitAccount, &p.SplitAccount},
			{RoleLiquidityAccount, &p.LiquidityAccount},
			{RoleWithdrawalAccount, &p.WithdrawalAccount},
		} {
			if *acc.addr, err = c.instantiate(ctx, acc.role, c.codes.BaseAccount, c.poolLabel(i, acc.role), initMsg); err != nil {
				return err
			}
		}
	}
	return nil
}

// instantiateSplitter creates the splitter moving each pool's amounts from the input
// account to the pool's split account, and approves it on every account it touches.
func (c *programCreation) instantiateSplitter(ctx context.Context) error {
	outputs := make([]string, len(c.rec.Pools))
	for i, p := range c.rec.Pools {
		outputs[i] = p.SplitAccount
	}

	var err error
	c.rec.Splitter, err = c.instantiate(ctx, RoleSplitter, c.codes.Splitter, c.label(RoleSplitter),
		valence.LibraryInstantiateMsg{
			Owner:     c.owner,
			Processor: c.rec.Processor,
			Config:    valence.NewSplitterConfig(c.rec.InputAccount, c.pools, outputs),
		})
	if err != nil {
		return err
	}

	return c.approve(ctx, c.rec.Splitter, append([]string{c.rec.InputAccount}, outputs...)...)
}

// instantiateAstroportLibraries creates, per pool, the liquidity provider feeding the pool
// from the split account and the withdrawer returning its shares to the withdrawal account.
func (c *programCreation) instantiateAstroportLibraries(ctx context.Context) error {
	for i, pool := range c.pools {
		p := &c.rec.Pools[i]

		lper, err := c.instantiate(ctx, RoleAstroportLPer, c.codes.AstroportLPer, c.poolLabel(i, RoleAstroportLPer),
			valence.LibraryInstantiateMsg{
				Owner:     c.owner,
				Processor: c.rec.Processor,
				Config:    valence.NewAstroportLPerConfig(pool, p.SplitAccount, p.LiquidityAccount),
			})
		if err != nil {
			return err
		}
		p.LPer = lper
		if err := c.approve(ctx, lper, p.SplitAccount); err != nil {
			return err
		}

		withdrawer, err := c.instantiate(ctx, RoleAstroportWithdrawer, c.codes.AstroportWithdrawer, c.poolLabel(i, RoleAstroportWithdrawer),
			valence.LibraryInstantiateMsg{
				Owner:     c.owner,
				Processor: c.rec.Processor,
				Config:    valence.NewAstroportWithdrawerConfig(pool, p.LiquidityAccount, p.WithdrawalAccount),
			})
		if err != nil {
			return err
		}
		p.Withdrawer = withdrawer
		if err := c.approve(ctx, withdrawer, p.LiquidityAccount); err != nil {
			return err
		}

		c.checkpoint()
	}
	return nil
}

func (c *programCreation) approve(ctx context.Context, library string, accounts ...string) error {
	for _, account := range accounts {
		if _, err := c.execute(ctx, account, "approve_library", valence.NewApproveLibraryMsg(library)); err != nil {
			return err
		}
		c.log.Debug("Approved library", zap.String("library", library), zap.String("account", account))
	}
	return nil
}

// createAuthorizations publishes the deploy and withdraw authorizations in one transaction.
func (c *programCreation) createAuthorizations(ctx context.Context) error {
	lpers := make([]string, len(c.rec.Pools))
	withdrawers := make([]string, len(c.rec.Pools))
	for i, p := range c.rec.Pools {
		lpers[i] = p.LPer
		withdrawers[i] = p.Withdrawer
	}

	deploy := authorization.NewAuthorizationInfo(
		types.AuthorizationLabel(c.rec.LabelPrefix, types.ActionDeploy),
		authorization.DeploySubroutine(c.rec.Splitter, lpers),
	)
	withdraw := authorization.NewAuthorizationInfo(
		types.AuthorizationLabel(c.rec.LabelPrefix, types.ActionWithdraw),
		authorization.WithdrawSubroutine(withdrawers),
	)

	res, err := c.execute(ctx, c.rec.Authorization, "create_authorizations", authorization.NewCreateAuthorizationsMsg(deploy, withdraw))
	if err != nil {
		return err
	}
	c.rec.Authorizations = []string{deploy.Label, withdraw.Label}
	c.log.Info("Created authorizations", zap.Strings("labels", c.rec.Authorizations), zap.String("tx_hash", res.TxHash))
	return nil
}

// transferOwnership hands the authorization contract and every account over to the owner.
func (c *programCreation) transferOwnership(ctx context.Context) error {
	if _, err := c.execute(ctx, c.rec.Authorization, "update_ownership", authorization.NewTransferOwnershipMsg(c.owner)); err != nil {
		return err
	}
	for _, account := range c.rec.Accounts() {
		if _, err := c.execute(ctx, account, "update_ownership", valence.NewTransferAccountOwnershipMsg(c.owner)); err != nil {
			return err
		}
	}
	c.rec.OwnershipTransferred = true
	c.log.Info("Transferred program ownership", zap.String("owner", c.owner))
	return nil
}
