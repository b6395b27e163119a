// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"

	"github.com/vechain/veescrow/builtin/escrow"
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

func (d *Distributor) requireAlive() error {
	killed, err := d.storage.killed.Get()
	if err != nil {
		return err
	}
	if killed {
		return reverts.New(reverts.Killed, "killed")
	}
	return nil
}

// prepare brings supply snapshots and token buckets up to date and returns
// the week the claim walk must stop at.
func (d *Distributor) prepare(env *xenv.Environment) (uint64, error) {
	if err := d.requireAlive(); err != nil {
		return 0, err
	}
	now := env.Now()

	cursor, err := d.storage.timeCursor.Get()
	if err != nil {
		return 0, err
	}
	if now >= cursor {
		if err := d.CheckpointTotalSupply(env); err != nil {
			return 0, err
		}
	}
	due, err := d.tokenCheckpointDue(now)
	if err != nil {
		return 0, err
	}
	if due {
		if err := d.checkpointToken(env); err != nil {
			return 0, err
		}
	}

	lastTokenTime, err := d.storage.lastTokenTime.Get()
	if err != nil {
		return 0, err
	}
	if cursor, err = d.storage.timeCursor.Get(); err != nil {
		return 0, err
	}
	return min(thor.FloorWeek(lastTokenTime), cursor), nil
}

// walk credits user for the weeks from its cursor up to bound, at most
// MaxClaimIterations steps, and persists where it stopped.
func (d *Distributor) walk(env *xenv.Environment, user thor.Address, bound uint64) (*big.Int, error) {
	toDistribute := new(big.Int)

	maxEpoch, err := d.ledger.UserPointEpoch(user)
	if err != nil {
		return nil, err
	}
	if maxEpoch == 0 {
		return toDistribute, nil
	}
	startTime, err := d.storage.startTime.Get()
	if err != nil {
		return nil, err
	}
	c, err := d.storage.GetCursor(user)
	if err != nil {
		return nil, err
	}

	epoch := c.epoch
	if c.week == 0 {
		// first claim, find the epoch at the start of distribution
		if epoch, err = d.ledger.FindUserTimestampEpoch(user, startTime, maxEpoch); err != nil {
			return nil, err
		}
	}
	epoch = max(epoch, 1)

	point, err := d.ledger.UserPointHistory(user, epoch)
	if err != nil {
		return nil, err
	}
	week := c.week
	if week == 0 {
		week = thor.CeilWeek(point.Timestamp)
	}
	if week >= bound {
		return toDistribute, nil
	}
	week = max(week, startTime)

	var (
		old   = &escrow.Point{Bias: new(big.Int), Slope: new(big.Int)}
		steps = 0
	)
	for ; steps < MaxClaimIterations; steps++ {
		if week >= bound {
			break
		}
		if week >= point.Timestamp && epoch <= maxEpoch {
			epoch++
			old = point
			if epoch > maxEpoch {
				point = &escrow.Point{Bias: new(big.Int), Slope: new(big.Int)}
			} else if point, err = d.ledger.UserPointHistory(user, epoch); err != nil {
				return nil, err
			}
			continue
		}

		balance := old.ValueAt(week)
		if balance.Sign() == 0 && epoch > maxEpoch {
			break
		}
		if balance.Sign() > 0 {
			share, err := d.weekShare(week, balance)
			if err != nil {
				return nil, err
			}
			toDistribute.Add(toDistribute, share)
		}
		week += thor.Week
	}
	metricClaimIterations().Observe(int64(steps))

	epoch = min(maxEpoch, epoch-1)
	if err := d.storage.SetCursor(user, cursor{week: week, epoch: epoch}); err != nil {
		return nil, err
	}
	if err := env.Log(d.addr, "Claimed", []thor.Bytes32{thor.BytesToBytes32(user.Bytes())}, toDistribute, epoch, maxEpoch); err != nil {
		return nil, err
	}
	return toDistribute, nil
}

// weekShare is the part of the tokens of week owed to a balance, zero when
// the week has no supply.
func (d *Distributor) weekShare(week uint64, balance *big.Int) (*big.Int, error) {
	supply, err := d.storage.GetVeSupply(week)
	if err != nil {
		return nil, err
	}
	if supply.Sign() == 0 {
		return new(big.Int), nil
	}
	tokens, err := d.storage.GetTokensPerWeek(week)
	if err != nil {
		return nil, err
	}
	share := new(big.Int).Mul(balance, tokens)
	return share.Quo(share, supply), nil
}

// pay sends amount to user, or deposits it into the lock of user when relocking.
func (d *Distributor) pay(env *xenv.Environment, user thor.Address, amount *big.Int) error {
	if d.relock {
		return d.ledger.DepositFor(d.self(env), user, amount)
	}
	return d.reward.Transfer(d.self(env), user, amount)
}

// Claim pays user what it earned over the completed weeks, resuming where
// the previous claim stopped.
func (d *Distributor) Claim(env *xenv.Environment, user thor.Address) (*big.Int, error) {
	logger.Debug("claiming", "distributor", d.name, "user", user)

	bound, err := d.prepare(env)
	if err != nil {
		return nil, err
	}
	amount, err := d.walk(env, user, bound)
	if err != nil {
		return nil, err
	}
	if amount.Sign() > 0 {
		if err := d.pay(env, user, amount); err != nil {
			logger.Debug("claim payout failed", "distributor", d.name, "user", user, "error", err)
			return nil, err
		}
		if err := d.storage.tokenLastBalance.Sub(amount); err != nil {
			return nil, err
		}
	}
	metricClaims().AddWithLabel(1, d.labels())
	return amount, nil
}

// ClaimMany claims for up to MaxClaimMany users. Zero addresses are skipped.
func (d *Distributor) ClaimMany(env *xenv.Environment, users []thor.Address) (*big.Int, error) {
	if len(users) > MaxClaimMany {
		return nil, reverts.Newf(reverts.InvariantViolation, "at most %d receivers", MaxClaimMany)
	}
	bound, err := d.prepare(env)
	if err != nil {
		return nil, err
	}

	total := new(big.Int)
	for _, user := range users {
		if user.IsZero() {
			continue
		}
		amount, err := d.walk(env, user, bound)
		if err != nil {
			return nil, err
		}
		if amount.Sign() > 0 {
			if err := d.pay(env, user, amount); err != nil {
				return nil, err
			}
			total.Add(total, amount)
		}
		metricClaims().AddWithLabel(1, d.labels())
	}
	if total.Sign() > 0 {
		if err := d.storage.tokenLastBalance.Sub(total); err != nil {
			return nil, err
		}
	}
	return total, nil
}

// Claimable is what Claim would pay user now. Nothing is changed.
func (d *Distributor) Claimable(env *xenv.Environment, user thor.Address) (*big.Int, error) {
	cp := env.NewCheckpoint()
	defer env.Revert(cp)

	bound, err := d.prepare(env)
	if err != nil {
		return nil, err
	}
	return d.walk(env, user, bound)
}
