// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"

	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

// tokenCheckpointDue reports whether anyone may checkpoint tokens now.
func (d *Distributor) tokenCheckpointDue(now uint64) (bool, error) {
	allowed, err := d.storage.canCheckpointToken.Get()
	if err != nil || !allowed {
		return false, err
	}
	last, err := d.storage.lastTokenTime.Get()
	if err != nil {
		return false, err
	}
	return now > last+TokenCheckpointDeadline, nil
}

// CheckpointToken credits the reward received since the last call to the
// weeks it arrived in. The admin may call any time, others only once the
// deadline passed and while allowed.
func (d *Distributor) CheckpointToken(env *xenv.Environment) error {
	isAdmin, err := d.ownable.IsAdmin(env.Caller())
	if err != nil {
		return err
	}
	if !isAdmin {
		due, err := d.tokenCheckpointDue(env.Now())
		if err != nil {
			return err
		}
		if !due {
			return reverts.New(reverts.Unauthorized, "checkpoint token not allowed")
		}
	}
	return d.checkpointToken(env)
}

// checkpointToken spreads the new balance over [lastTokenTime, now] in
// proportion to the time each week overlaps it. The rounding remainder goes
// to the week containing now.
func (d *Distributor) checkpointToken(env *xenv.Environment) error {
	now := env.Now()
	t, err := d.storage.lastTokenTime.Get()
	if err != nil {
		return err
	}
	// before the start time there are no weeks to credit
	if now < t {
		return reverts.New(reverts.InvariantViolation, "distribution not started")
	}

	balance, err := d.reward.BalanceOf(d.addr)
	if err != nil {
		return err
	}
	lastBalance, err := d.storage.tokenLastBalance.Get()
	if err != nil {
		return err
	}
	toDistribute := new(big.Int).Sub(balance, lastBalance)
	if toDistribute.Sign() < 0 {
		toDistribute.SetInt64(0)
	}
	d.storage.tokenLastBalance.Set(balance)

	if err := d.storage.lastTokenTime.Set(now); err != nil {
		return err
	}
	sinceLast := new(big.Int).SetUint64(now - t)
	credited := new(big.Int)

	weeks := 0
	for thisWeek := thor.FloorWeek(t); ; thisWeek += thor.Week {
		weeks++
		nextWeek := thisWeek + thor.Week
		if now < nextWeek {
			if err := d.storage.AddTokensPerWeek(thisWeek, new(big.Int).Sub(toDistribute, credited)); err != nil {
				return err
			}
			break
		}
		share := new(big.Int).SetUint64(nextWeek - t)
		share.Mul(share, toDistribute).Quo(share, sinceLast)
		if err := d.storage.AddTokensPerWeek(thisWeek, share); err != nil {
			return err
		}
		credited.Add(credited, share)
		t = nextWeek
	}

	metricTokenCheckpoints().AddWithLabel(1, d.labels())
	logger.Debug("checkpointed token", "distributor", d.name, "amount", toDistribute, "weeks", weeks)
	return env.Log(d.addr, "CheckpointToken", nil, now, toDistribute)
}

// CheckpointTotalSupply records the ledger supply of up to MaxSupplyWeeks
// weeks from the time cursor, up to the current week.
func (d *Distributor) CheckpointTotalSupply(env *xenv.Environment) error {
	if err := d.ledger.Checkpoint(d.self(env)); err != nil {
		return err
	}
	t, err := d.storage.timeCursor.Get()
	if err != nil {
		return err
	}
	rounded := thor.FloorWeek(env.Now())

	weeks := 0
	for ; weeks < MaxSupplyWeeks && t <= rounded; weeks++ {
		supply, err := d.ledger.SupplyAtWeek(t)
		if err != nil {
			return err
		}
		if err := d.storage.SetVeSupply(t, supply); err != nil {
			return err
		}
		t += thor.Week
	}
	metricSupplyWeeks().Observe(int64(weeks))
	return d.storage.timeCursor.Set(t)
}

// ToggleAllowCheckpointToken flips whether anyone may checkpoint tokens.
func (d *Distributor) ToggleAllowCheckpointToken(env *xenv.Environment) error {
	if err := d.ownable.RequireAdmin(env, "admin only"); err != nil {
		return err
	}
	allowed, err := d.storage.canCheckpointToken.Get()
	if err != nil {
		return err
	}
	d.storage.canCheckpointToken.Set(!allowed)
	return env.Log(d.addr, "ToggleAllowCheckpointToken", nil, !allowed)
}

// Burn pulls amount of the reward asset from the caller into the distributor.
func (d *Distributor) Burn(env *xenv.Environment, amount *big.Int) error {
	if err := d.requireAlive(); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		if err := d.reward.TransferFrom(d.self(env), env.Caller(), d.addr, amount); err != nil {
			return err
		}
	}
	due, err := d.tokenCheckpointDue(env.Now())
	if err != nil {
		return err
	}
	if due {
		return d.checkpointToken(env)
	}
	return nil
}
