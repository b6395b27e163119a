// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gauge stakes an LP asset and streams up to MaxRewards reward
// assets to stakers. Stakes are transferable shares whose working balance
// is boosted by the staker's voting power.
package gauge

import (
	"math/big"

	"github.com/vechain/veescrow/builtin/asset"
	"github.com/vechain/veescrow/builtin/escrow"
	"github.com/vechain/veescrow/builtin/ownable"
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

const (
	MaxRewards = 4
	// TokenlessProduction is the percentage of a stake that counts without any voting power.
	TokenlessProduction = 40
)

var (
	logger = log.WithContext("pkg", "gauge")
	unit   = big.NewInt(1e18)
	// unlimited allowances are never spent
	unlimited = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// Ledger is the voting power working balances are boosted by.
type Ledger interface {
	BalanceOfNow(env *xenv.Environment, user thor.Address) (*big.Int, error)
	TotalSupplyNow(env *xenv.Environment) (*big.Int, error)
	UserPointEpoch(user thor.Address) (uint64, error)
	UserPointHistory(user thor.Address, epoch uint64) (*escrow.Point, error)
}

// Resolver finds the asset at an address.
type Resolver func(addr thor.Address) (asset.Asset, bool)

// Gauge binds the gauge at addr to a state.
type Gauge struct {
	addr    thor.Address
	storage *storage
	ownable *ownable.Ownable
	lp      asset.Asset
	ledger  Ledger
	assets  Resolver
}

var _ asset.Asset = (*Gauge)(nil)

func New(addr thor.Address, state *state.State, lp asset.Asset, ledger Ledger, assets Resolver) *Gauge {
	s := newStorage(addr, state)
	return &Gauge{
		addr:    addr,
		storage: s,
		ownable: ownable.New(s.context),
		lp:      lp,
		ledger:  ledger,
		assets:  assets,
	}
}

// Init sets the admin.
func (g *Gauge) Init(env *xenv.Environment, admin thor.Address) error {
	current, err := g.ownable.Admin()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.New(reverts.InvariantViolation, "already initialized")
	}
	g.ownable.Init(admin)
	return nil
}

func (g *Gauge) Address() thor.Address { return g.addr }
func (g *Gauge) LP() asset.Asset       { return g.lp }

func (g *Gauge) Admin() (thor.Address, error) {
	return g.ownable.Admin()
}

func (g *Gauge) CommitTransferOwnership(env *xenv.Environment, addr thor.Address) error {
	return g.ownable.CommitTransferOwnership(env, addr)
}

func (g *Gauge) ApplyTransferOwnership(env *xenv.Environment) error {
	return g.ownable.ApplyTransferOwnership(env)
}

func (g *Gauge) BalanceOf(owner thor.Address) (*big.Int, error) {
	return g.storage.balances.Get(owner)
}

func (g *Gauge) TotalSupply() (*big.Int, error) {
	return g.storage.totalSupply.Get()
}

func (g *Gauge) WorkingBalanceOf(owner thor.Address) (*big.Int, error) {
	return g.storage.workingBalances.Get(owner)
}

func (g *Gauge) WorkingSupply() (*big.Int, error) {
	return g.storage.workingSupply.Get()
}

func (g *Gauge) LastCheckpointOf(owner thor.Address) (uint64, error) {
	return g.storage.lastCheckpointOf.Get(owner)
}

func (g *Gauge) Allowance(owner, spender thor.Address) (*big.Int, error) {
	return g.storage.allowances.Get(pairKey(owner, spender))
}

func addressTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}

// Deposit stakes amount of the caller's LP for recipient, paying recipient's
// pending rewards first when claim is set.
func (g *Gauge) Deposit(env *xenv.Environment, amount *big.Int, recipient thor.Address, claim bool) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvariantViolation, "negative amount")
	}
	if recipient.IsZero() {
		recipient = env.Caller()
	}
	if err := g.checkpoint(env, recipient); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		supply, err := g.storage.totalSupply.Get()
		if err != nil {
			return err
		}
		if err := g.checkpointRewards(env, recipient, supply, claim, thor.Address{}); err != nil {
			return err
		}
		balance, err := g.storage.balances.Get(recipient)
		if err != nil {
			return err
		}
		balance.Add(balance, amount)
		supply.Add(supply, amount)
		if err := g.storage.balances.Set(recipient, balance); err != nil {
			return err
		}
		g.storage.totalSupply.Set(supply)
		if err := g.updateLiquidityLimit(env, recipient, balance, supply); err != nil {
			return err
		}
		if err := g.lp.TransferFrom(env.WithCaller(g.addr), env.Caller(), g.addr, amount); err != nil {
			return err
		}
	}
	logger.Debug("deposit", "user", recipient, "amount", amount)
	if err := env.Log(g.addr, "Deposit", []thor.Bytes32{addressTopic(recipient)}, amount); err != nil {
		return err
	}
	env.AddTransfer(g.addr, thor.Address{}, recipient, amount)
	return env.Log(g.addr, "Transfer", []thor.Bytes32{addressTopic(thor.Address{}), addressTopic(recipient)}, amount)
}

// Withdraw unstakes amount of the caller's LP.
func (g *Gauge) Withdraw(env *xenv.Environment, amount *big.Int, claim bool) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvariantViolation, "negative amount")
	}
	user := env.Caller()
	if err := g.checkpoint(env, user); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		supply, err := g.storage.totalSupply.Get()
		if err != nil {
			return err
		}
		balance, err := g.storage.balances.Get(user)
		if err != nil {
			return err
		}
		if balance.Cmp(amount) < 0 {
			return reverts.New(reverts.InvariantViolation, "insufficient balance")
		}
		if err := g.checkpointRewards(env, user, supply, claim, thor.Address{}); err != nil {
			return err
		}
		balance.Sub(balance, amount)
		supply.Sub(supply, amount)
		if err := g.storage.balances.Set(user, balance); err != nil {
			return err
		}
		g.storage.totalSupply.Set(supply)
		if err := g.updateLiquidityLimit(env, user, balance, supply); err != nil {
			return err
		}
		if err := g.lp.Transfer(env.WithCaller(g.addr), user, amount); err != nil {
			return err
		}
	}
	logger.Debug("withdraw", "user", user, "amount", amount)
	if err := env.Log(g.addr, "Withdraw", []thor.Bytes32{addressTopic(user)}, amount); err != nil {
		return err
	}
	env.AddTransfer(g.addr, user, thor.Address{}, amount)
	return env.Log(g.addr, "Transfer", []thor.Bytes32{addressTopic(user), addressTopic(thor.Address{})}, amount)
}

func (g *Gauge) Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvariantViolation, "negative amount")
	}
	owner := env.Caller()
	if err := g.storage.allowances.Set(pairKey(owner, spender), new(big.Int).Set(amount)); err != nil {
		return err
	}
	return env.Log(g.addr, "Approval", []thor.Bytes32{addressTopic(owner), addressTopic(spender)}, amount)
}

// Transfer moves stake from the caller to recipient. Rewards of both are
// checkpointed, not claimed.
func (g *Gauge) Transfer(env *xenv.Environment, recipient thor.Address, amount *big.Int) error {
	return g.transfer(env, env.Caller(), recipient, amount)
}

// TransferFrom spends the allowance owner granted to the caller.
func (g *Gauge) TransferFrom(env *xenv.Environment, owner, recipient thor.Address, amount *big.Int) error {
	spender := env.Caller()
	if spender != owner {
		key := pairKey(owner, spender)
		allowed, err := g.storage.allowances.Get(key)
		if err != nil {
			return err
		}
		if allowed.Cmp(amount) < 0 {
			return reverts.New(reverts.InvariantViolation, "insufficient allowance")
		}
		if allowed.Cmp(unlimited) != 0 {
			if err := g.storage.allowances.Set(key, allowed.Sub(allowed, amount)); err != nil {
				return err
			}
		}
	}
	return g.transfer(env, owner, recipient, amount)
}

func (g *Gauge) transfer(env *xenv.Environment, from, to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvariantViolation, "negative amount")
	}
	if to.IsZero() {
		return reverts.New(reverts.InvariantViolation, "transfer to zero address")
	}
	if err := g.checkpoint(env, from); err != nil {
		return err
	}
	if err := g.checkpoint(env, to); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		supply, err := g.storage.totalSupply.Get()
		if err != nil {
			return err
		}
		if err := g.moveStake(env, from, supply, new(big.Int).Neg(amount)); err != nil {
			return err
		}
		if err := g.moveStake(env, to, supply, amount); err != nil {
			return err
		}
	}
	env.AddTransfer(g.addr, from, to, amount)
	return env.Log(g.addr, "Transfer", []thor.Bytes32{addressTopic(from), addressTopic(to)}, amount)
}

// moveStake adds delta to the stake of user after settling its rewards.
func (g *Gauge) moveStake(env *xenv.Environment, user thor.Address, supply, delta *big.Int) error {
	if err := g.checkpointRewards(env, user, supply, false, thor.Address{}); err != nil {
		return err
	}
	balance, err := g.storage.balances.Get(user)
	if err != nil {
		return err
	}
	balance.Add(balance, delta)
	if balance.Sign() < 0 {
		return reverts.New(reverts.InvariantViolation, "insufficient balance")
	}
	if err := g.storage.balances.Set(user, balance); err != nil {
		return err
	}
	return g.updateLiquidityLimit(env, user, balance, supply)
}

// checkpoint stamps the last time user's stake was accounted.
func (g *Gauge) checkpoint(env *xenv.Environment, user thor.Address) error {
	return g.storage.lastCheckpointOf.Set(user, env.Now())
}

// updateLiquidityLimit sets the working balance of user holding l of a total
// L: min(l, 40% l + 60% L * ve(user) / ve_total).
func (g *Gauge) updateLiquidityLimit(env *xenv.Environment, user thor.Address, l, supply *big.Int) error {
	votingBalance, err := g.ledger.BalanceOfNow(env, user)
	if err != nil {
		return err
	}
	votingTotal, err := g.ledger.TotalSupplyNow(env)
	if err != nil {
		return err
	}
	limit := new(big.Int).Mul(l, big.NewInt(TokenlessProduction))
	limit.Quo(limit, big.NewInt(100))
	if votingTotal.Sign() > 0 {
		boost := new(big.Int).Mul(supply, votingBalance)
		boost.Quo(boost, votingTotal)
		boost.Mul(boost, big.NewInt(100-TokenlessProduction))
		boost.Quo(boost, big.NewInt(100))
		limit.Add(limit, boost)
	}
	if limit.Cmp(l) > 0 {
		limit.Set(l)
	}

	old, err := g.storage.workingBalances.Get(user)
	if err != nil {
		return err
	}
	if err := g.storage.workingBalances.Set(user, limit); err != nil {
		return err
	}
	working, err := g.storage.workingSupply.Get()
	if err != nil {
		return err
	}
	working.Add(working, limit).Sub(working, old)
	g.storage.workingSupply.Set(working)
	return env.Log(g.addr, "UpdateLiquidityLimit", []thor.Bytes32{addressTopic(user)}, l, supply, limit, working)
}

// UserCheckpoint recomputes the working balance of user. Only user may call.
func (g *Gauge) UserCheckpoint(env *xenv.Environment, user thor.Address) error {
	if env.Caller() != user {
		return reverts.New(reverts.Unauthorized, "unauthorized")
	}
	return g.refresh(env, user)
}

// Kick drops the boost of user whose lock expired or changed since its last checkpoint.
func (g *Gauge) Kick(env *xenv.Environment, user thor.Address) error {
	last, err := g.storage.lastCheckpointOf.Get(user)
	if err != nil {
		return err
	}
	epoch, err := g.ledger.UserPointEpoch(user)
	if err != nil {
		return err
	}
	point, err := g.ledger.UserPointHistory(user, epoch)
	if err != nil {
		return err
	}
	votingBalance, err := g.ledger.BalanceOfNow(env, user)
	if err != nil {
		return err
	}
	if votingBalance.Sign() != 0 && point.Timestamp <= last {
		return reverts.New(reverts.InvariantViolation, "kick not allowed")
	}

	balance, err := g.storage.balances.Get(user)
	if err != nil {
		return err
	}
	working, err := g.storage.workingBalances.Get(user)
	if err != nil {
		return err
	}
	floor := new(big.Int).Mul(balance, big.NewInt(TokenlessProduction))
	floor.Quo(floor, big.NewInt(100))
	if working.Cmp(floor) <= 0 {
		return reverts.New(reverts.InvariantViolation, "kick not needed")
	}
	return g.refresh(env, user)
}

func (g *Gauge) refresh(env *xenv.Environment, user thor.Address) error {
	if err := g.checkpoint(env, user); err != nil {
		return err
	}
	balance, err := g.storage.balances.Get(user)
	if err != nil {
		return err
	}
	supply, err := g.storage.totalSupply.Get()
	if err != nil {
		return err
	}
	return g.updateLiquidityLimit(env, user, balance, supply)
}
