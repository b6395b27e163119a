// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/chain"
	"github.com/vechain/veescrow/kv"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/logdb"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

var logger = log.WithContext("pkg", "genesis")

// Genesis to build genesis block.
type Genesis struct {
	builder *Builder
	name    string
}

// New creates the genesis described by cfg.
func New(name string, cfg *Config) (*Genesis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		admin        = thor.Address(cfg.Admin)
		emergency    = thor.Address(cfg.EmergencyReturn)
		feeStart     = cfg.Distributors.Fee
		penaltyStart = cfg.Distributors.Penalty
	)
	if feeStart == 0 {
		feeStart = cfg.LaunchTime
	}
	if penaltyStart == 0 {
		penaltyStart = cfg.LaunchTime
	}

	builder := new(Builder).
		Timestamp(cfg.LaunchTime).
		State(func(st *state.State) error {
			for _, acc := range cfg.Accounts {
				if acc.Balance == nil {
					continue
				}
				if err := st.SetBalance(thor.Address(acc.Address), acc.Balance.Int()); err != nil {
					return err
				}
			}
			return nil
		}).
		Call(func(env *xenv.Environment, c *builtin.Contracts) error {
			c.Token.Init(admin)
			return c.Escrow.Init(env, admin)
		}, admin).
		Call(func(env *xenv.Environment, c *builtin.Contracts) error {
			return c.Fee.Init(env, feeStart, admin, emergency)
		}, admin).
		Call(func(env *xenv.Environment, c *builtin.Contracts) error {
			return c.Penalty.Init(env, penaltyStart, admin, emergency)
		}, admin).
		Call(func(env *xenv.Environment, c *builtin.Contracts) error {
			if err := c.Rewards.Init(env, admin); err != nil {
				return err
			}
			if err := c.Escrow.SetRewardPool(env, c.Rewards.Address()); err != nil {
				return err
			}
			return c.Escrow.SetDepositor(env, c.Penalty.Address(), true)
		}, admin).
		Call(func(env *xenv.Environment, c *builtin.Contracts) error {
			c.LPToken.Init(admin)
			return c.Gauge.Init(env, admin)
		}, admin).
		Call(func(env *xenv.Environment, c *builtin.Contracts) error {
			if cfg.FundsUnlocked {
				if err := c.Escrow.SetFundsUnlocked(env, true); err != nil {
					return err
				}
			}
			for _, acc := range cfg.Accounts {
				if amount := acc.Tokens.Int(); amount.Sign() > 0 {
					if err := c.Token.Mint(env, thor.Address(acc.Address), amount); err != nil {
						return errors.WithMessagef(err, "mint for %v", thor.Address(acc.Address))
					}
				}
				if amount := acc.LPTokens.Int(); amount.Sign() > 0 {
					if err := c.LPToken.Mint(env, thor.Address(acc.Address), amount); err != nil {
						return errors.WithMessagef(err, "mint lp for %v", thor.Address(acc.Address))
					}
				}
			}
			return nil
		}, admin)

	return &Genesis{builder, name}, nil
}

// Build builds the genesis header and state.
func (g *Genesis) Build() (*chain.Header, *state.Stage, []*Output, error) {
	return g.builder.Build()
}

// ID returns the id of the genesis header.
func (g *Genesis) ID() (thor.Bytes32, error) {
	header, _, _, err := g.Build()
	if err != nil {
		return thor.Bytes32{}, err
	}
	return header.ID(), nil
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// Setup opens the chain stored in db, writing the genesis state and its
// records when nothing was mined yet.
func (g *Genesis) Setup(db kv.Store, logDB *logdb.LogDB) (*chain.Repository, error) {
	header, stage, outputs, err := g.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build genesis")
	}
	repo, err := chain.NewRepository(db, header)
	if err != nil {
		return nil, err
	}
	if repo.BestHeader().Number > 0 {
		return repo, nil
	}

	if err := stage.Commit(db.Bulk()); err != nil {
		return nil, errors.Wrap(err, "commit genesis state")
	}
	if logDB != nil {
		if err := logDB.Truncate(0); err != nil {
			return nil, err
		}
		batch := logDB.Prepare(header)
		for _, out := range outputs {
			batch.Insert(out.Origin, out.Events, out.Transfers)
		}
		if err := batch.Commit(); err != nil {
			return nil, errors.Wrap(err, "write genesis logs")
		}
	}
	logger.Info("genesis written", "name", g.name, "id", header.ID(), "time", header.Timestamp)
	return repo, nil
}
