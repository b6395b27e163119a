// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauge

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

// RewardTokens lists the reward assets in the order they were added.
func (g *Gauge) RewardTokens() ([]thor.Address, error) {
	return g.storage.RewardTokens()
}

func (g *Gauge) RewardData(token thor.Address) (*RewardData, error) {
	return g.storage.GetRewardData(token)
}

func (g *Gauge) RewardsReceiver(user thor.Address) (thor.Address, error) {
	return g.storage.rewardsReceiver.Get(user)
}

// AddReward registers token as a reward streamed by distributor. Admin only.
func (g *Gauge) AddReward(env *xenv.Environment, token, distributor thor.Address) error {
	if err := g.ownable.RequireAdmin(env, "admin only"); err != nil {
		return err
	}
	if distributor.IsZero() {
		return reverts.New(reverts.InvariantViolation, "zero distributor")
	}
	if _, ok := g.assets(token); !ok {
		return reverts.New(reverts.InvariantViolation, "unknown reward asset")
	}
	n, err := g.storage.rewardTokens.Len()
	if err != nil {
		return err
	}
	if n >= MaxRewards {
		return reverts.New(reverts.InvariantViolation, "reward limit")
	}
	data, err := g.storage.GetRewardData(token)
	if err != nil {
		return err
	}
	if !data.Distributor.IsZero() {
		return reverts.New(reverts.InvariantViolation, "reward already added")
	}
	data.Distributor = distributor
	if err := g.storage.SetRewardData(token, data); err != nil {
		return err
	}
	if _, err := g.storage.rewardTokens.Push(token); err != nil {
		return err
	}
	logger.Info("reward added", "token", token, "distributor", distributor)
	return env.Log(g.addr, "RewardAdded", []thor.Bytes32{addressTopic(token)}, distributor)
}

// SetRewardDistributor hands the stream of token to distributor. Only the
// current distributor or the admin may call.
func (g *Gauge) SetRewardDistributor(env *xenv.Environment, token, distributor thor.Address) error {
	data, err := g.storage.GetRewardData(token)
	if err != nil {
		return err
	}
	if data.Distributor.IsZero() {
		return reverts.New(reverts.InvariantViolation, "unknown reward")
	}
	if env.Caller() != data.Distributor {
		if err := g.ownable.RequireAdmin(env, "distributor or admin only"); err != nil {
			return err
		}
	}
	if distributor.IsZero() {
		return reverts.New(reverts.InvariantViolation, "zero distributor")
	}
	data.Distributor = distributor
	if err := g.storage.SetRewardData(token, data); err != nil {
		return err
	}
	return env.Log(g.addr, "RewardDistributorSet", []thor.Bytes32{addressTopic(token)}, distributor)
}

// DepositRewardToken pulls amount of token from its distributor and streams
// it with any leftover over the next week.
func (g *Gauge) DepositRewardToken(env *xenv.Environment, token thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvariantViolation, "negative amount")
	}
	data, err := g.storage.GetRewardData(token)
	if err != nil {
		return err
	}
	if data.Distributor.IsZero() || env.Caller() != data.Distributor {
		return reverts.New(reverts.Unauthorized, "distributor only")
	}
	a, ok := g.assets(token)
	if !ok {
		return errors.Errorf("reward asset %v not found", token)
	}
	supply, err := g.storage.totalSupply.Get()
	if err != nil {
		return err
	}
	if err := g.checkpointRewards(env, thor.Address{}, supply, false, thor.Address{}); err != nil {
		return err
	}
	if err := a.TransferFrom(env.WithCaller(g.addr), env.Caller(), g.addr, amount); err != nil {
		return err
	}

	// reload, the checkpoint advanced the integral
	if data, err = g.storage.GetRewardData(token); err != nil {
		return err
	}
	now := env.Now()
	total := new(big.Int).Set(amount)
	if now < data.PeriodFinish {
		leftover := new(big.Int).SetUint64(data.PeriodFinish - now)
		total.Add(total, leftover.Mul(leftover, data.Rate))
	}
	data.Rate = total.Quo(total, new(big.Int).SetUint64(thor.Week))
	data.LastUpdate = now
	data.PeriodFinish = now + thor.Week
	if err := g.storage.SetRewardData(token, data); err != nil {
		return err
	}
	logger.Debug("reward deposited", "token", token, "amount", amount, "rate", data.Rate)
	return env.Log(g.addr, "RewardDeposited", []thor.Bytes32{addressTopic(token)}, amount, data.Rate)
}

// SetRewardsReceiver makes the caller's claims pay receiver. The zero
// address pays the caller.
func (g *Gauge) SetRewardsReceiver(env *xenv.Environment, receiver thor.Address) error {
	return g.storage.rewardsReceiver.Set(env.Caller(), receiver)
}

// ClaimRewards pays the pending rewards of user. Only user may redirect its
// claim to a receiver; otherwise its configured receiver is paid.
func (g *Gauge) ClaimRewards(env *xenv.Environment, user, receiver thor.Address) error {
	if user.IsZero() {
		user = env.Caller()
	}
	if !receiver.IsZero() && user != env.Caller() {
		return reverts.New(reverts.Unauthorized, "cannot redirect when claiming for another user")
	}
	supply, err := g.storage.totalSupply.Get()
	if err != nil {
		return err
	}
	return g.checkpointRewards(env, user, supply, true, receiver)
}

// ClaimableReward is what user would be paid of token now.
func (g *Gauge) ClaimableReward(env *xenv.Environment, user, token thor.Address) (*big.Int, error) {
	data, err := g.storage.GetRewardData(token)
	if err != nil {
		return nil, err
	}
	supply, err := g.storage.totalSupply.Get()
	if err != nil {
		return nil, err
	}
	integral := advance(data, env.Now(), supply)
	paid, err := g.storage.rewardIntegral.Get(pairKey(token, user))
	if err != nil {
		return nil, err
	}
	balance, err := g.storage.balances.Get(user)
	if err != nil {
		return nil, err
	}
	claim, err := g.storage.GetClaimData(user, token)
	if err != nil {
		return nil, err
	}
	pending := integral.Sub(integral, paid)
	pending.Mul(pending, balance).Quo(pending, unit)
	return pending.Add(pending, claim.Claimable), nil
}

// ClaimedReward is what user was paid of token so far.
func (g *Gauge) ClaimedReward(user, token thor.Address) (*big.Int, error) {
	claim, err := g.storage.GetClaimData(user, token)
	if err != nil {
		return nil, err
	}
	return claim.Claimed, nil
}

// advance moves data to min(now, periodFinish) and returns the integral
// there. The integral stays put while nothing is staked.
func advance(data *RewardData, now uint64, supply *big.Int) *big.Int {
	last := min(now, data.PeriodFinish)
	integral := new(big.Int).Set(data.Integral)
	if last > data.LastUpdate {
		if supply.Sign() > 0 {
			delta := new(big.Int).SetUint64(last - data.LastUpdate)
			delta.Mul(delta, data.Rate).Mul(delta, unit).Quo(delta, supply)
			integral.Add(integral, delta)
		}
		data.LastUpdate = last
	}
	data.Integral = integral
	return new(big.Int).Set(integral)
}

// checkpointRewards advances every reward stream over supply and, for a
// non-zero user, credits what its balance earned since its last checkpoint.
// With claim set the credit is paid to receiver, falling back to the
// configured receiver of user, then user.
func (g *Gauge) checkpointRewards(env *xenv.Environment, user thor.Address, supply *big.Int, claim bool, receiver thor.Address) error {
	tokens, err := g.storage.RewardTokens()
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	balance := new(big.Int)
	if !user.IsZero() {
		if balance, err = g.storage.balances.Get(user); err != nil {
			return err
		}
		if claim && receiver.IsZero() {
			if receiver, err = g.storage.rewardsReceiver.Get(user); err != nil {
				return err
			}
			if receiver.IsZero() {
				receiver = user
			}
		}
	}

	for _, token := range tokens {
		data, err := g.storage.GetRewardData(token)
		if err != nil {
			return err
		}
		integral := advance(data, env.Now(), supply)
		if err := g.storage.SetRewardData(token, data); err != nil {
			return err
		}
		if user.IsZero() {
			continue
		}

		key := pairKey(token, user)
		paid, err := g.storage.rewardIntegral.Get(key)
		if err != nil {
			return err
		}
		earned := new(big.Int)
		if paid.Cmp(integral) < 0 {
			if err := g.storage.rewardIntegral.Set(key, integral); err != nil {
				return err
			}
			earned.Sub(integral, paid).Mul(earned, balance).Quo(earned, unit)
		}

		cd, err := g.storage.GetClaimData(user, token)
		if err != nil {
			return err
		}
		total := new(big.Int).Add(cd.Claimable, earned)
		if total.Sign() == 0 {
			continue
		}
		if claim {
			a, ok := g.assets(token)
			if !ok {
				return errors.Errorf("reward asset %v not found", token)
			}
			if err := a.Transfer(env.WithCaller(g.addr), receiver, total); err != nil {
				return err
			}
			cd.Claimed.Add(cd.Claimed, total)
			cd.Claimable.SetInt64(0)
			if err := env.Log(g.addr, "RewardClaimed", []thor.Bytes32{addressTopic(user), addressTopic(token)}, receiver, total); err != nil {
				return err
			}
		} else if earned.Sign() > 0 {
			cd.Claimable = total
		} else {
			continue
		}
		if err := g.storage.SetClaimData(user, token, cd); err != nil {
			return err
		}
	}
	return nil
}
