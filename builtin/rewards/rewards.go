// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards streams queued rewards to lockers at a constant rate,
// weighted by their current voting power.
package rewards

import (
	"math/big"

	"github.com/vechain/veescrow/builtin/asset"
	"github.com/vechain/veescrow/builtin/ownable"
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/builtin/solidity"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

const (
	Duration = 7 * thor.Day
	// NewRewardRatio is the per mille of the queued amount already streamed
	// this period below which new rewards start a new period right away.
	NewRewardRatio = 830
)

var (
	logger = log.WithContext("pkg", "rewards")
	unit   = big.NewInt(1e18)

	slotPeriodFinish         = nameToSlot("period-finish")
	slotRewardRate           = nameToSlot("reward-rate")
	slotLastUpdateTime       = nameToSlot("last-update-time")
	slotRewardPerTokenStored = nameToSlot("reward-per-token-stored")
	slotQueuedRewards        = nameToSlot("queued-rewards")
	slotCurrentRewards       = nameToSlot("current-rewards")
	slotHistoricalRewards    = nameToSlot("historical-rewards")
	slotUserRewardPerToken   = nameToSlot("user-reward-per-token-paid")
	slotRewards              = nameToSlot("rewards")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// Ledger is the voting power rewards are weighted by.
type Ledger interface {
	Address() thor.Address
	BalanceOf(user thor.Address, t uint64) (*big.Int, error)
	TotalSupply(t uint64) (*big.Int, error)
	DepositFor(env *xenv.Environment, owner thor.Address, amount *big.Int) error
}

type approver interface {
	Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) error
}

// Pool binds the reward pool at addr to a state.
type Pool struct {
	addr    thor.Address
	ownable *ownable.Ownable
	ledger  Ledger
	reward  asset.Asset

	periodFinish         *solidity.Value[uint64]
	rewardRate           *solidity.Uint256
	lastUpdateTime       *solidity.Value[uint64]
	rewardPerTokenStored *solidity.Uint256
	queuedRewards        *solidity.Uint256
	currentRewards       *solidity.Uint256
	historicalRewards    *solidity.Uint256
	userRewardPerToken   *solidity.Mapping[thor.Address, *big.Int]
	rewards              *solidity.Mapping[thor.Address, *big.Int]
}

func New(addr thor.Address, state *state.State, ledger Ledger, reward asset.Asset) *Pool {
	sctx := solidity.NewContext(addr, state)
	return &Pool{
		addr:    addr,
		ownable: ownable.New(sctx),
		ledger:  ledger,
		reward:  reward,

		periodFinish:         solidity.NewValue[uint64](sctx, slotPeriodFinish),
		rewardRate:           solidity.NewUint256(sctx, slotRewardRate),
		lastUpdateTime:       solidity.NewValue[uint64](sctx, slotLastUpdateTime),
		rewardPerTokenStored: solidity.NewUint256(sctx, slotRewardPerTokenStored),
		queuedRewards:        solidity.NewUint256(sctx, slotQueuedRewards),
		currentRewards:       solidity.NewUint256(sctx, slotCurrentRewards),
		historicalRewards:    solidity.NewUint256(sctx, slotHistoricalRewards),
		userRewardPerToken:   solidity.NewMapping[thor.Address, *big.Int](sctx, slotUserRewardPerToken),
		rewards:              solidity.NewMapping[thor.Address, *big.Int](sctx, slotRewards),
	}
}

// Init sets the admin and lets the ledger pull rewards being relocked.
func (p *Pool) Init(env *xenv.Environment, admin thor.Address) error {
	current, err := p.ownable.Admin()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.New(reverts.InvariantViolation, "already initialized")
	}
	p.ownable.Init(admin)
	if a, ok := p.reward.(approver); ok {
		unlimited := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
		return a.Approve(env.WithCaller(p.addr), p.ledger.Address(), unlimited)
	}
	return nil
}

func (p *Pool) Address() thor.Address { return p.addr }
func (p *Pool) Reward() asset.Asset   { return p.reward }

func (p *Pool) RewardRate() (*big.Int, error)        { return p.rewardRate.Get() }
func (p *Pool) PeriodFinish() (uint64, error)        { return p.periodFinish.Get() }
func (p *Pool) QueuedRewards() (*big.Int, error)     { return p.queuedRewards.Get() }
func (p *Pool) CurrentRewards() (*big.Int, error)    { return p.currentRewards.Get() }
func (p *Pool) HistoricalRewards() (*big.Int, error) { return p.historicalRewards.Get() }

func (p *Pool) Admin() (thor.Address, error) {
	return p.ownable.Admin()
}

func (p *Pool) CommitTransferOwnership(env *xenv.Environment, addr thor.Address) error {
	return p.ownable.CommitTransferOwnership(env, addr)
}

func (p *Pool) ApplyTransferOwnership(env *xenv.Environment) error {
	return p.ownable.ApplyTransferOwnership(env)
}

func (p *Pool) lastTimeRewardApplicable(now uint64) (uint64, error) {
	finish, err := p.periodFinish.Get()
	if err != nil {
		return 0, err
	}
	return min(now, finish), nil
}

// RewardPerToken is the reward accrued per unit of voting power, scaled by 1e18.
func (p *Pool) RewardPerToken(now uint64) (*big.Int, error) {
	stored, err := p.rewardPerTokenStored.Get()
	if err != nil {
		return nil, err
	}
	supply, err := p.ledger.TotalSupply(now)
	if err != nil {
		return nil, err
	}
	if supply.Sign() == 0 {
		return stored, nil
	}
	applicable, err := p.lastTimeRewardApplicable(now)
	if err != nil {
		return nil, err
	}
	last, err := p.lastUpdateTime.Get()
	if err != nil {
		return nil, err
	}
	if applicable <= last {
		return stored, nil
	}
	rate, err := p.rewardRate.Get()
	if err != nil {
		return nil, err
	}
	accrued := new(big.Int).SetUint64(applicable - last)
	accrued.Mul(accrued, rate).Mul(accrued, unit).Quo(accrued, supply)
	return stored.Add(stored, accrued), nil
}

// Earned is what user can get at now.
func (p *Pool) Earned(user thor.Address, now uint64) (*big.Int, error) {
	rpt, err := p.RewardPerToken(now)
	if err != nil {
		return nil, err
	}
	return p.earned(user, now, rpt)
}

func (p *Pool) earned(user thor.Address, now uint64, rpt *big.Int) (*big.Int, error) {
	balance, err := p.ledger.BalanceOf(user, now)
	if err != nil {
		return nil, err
	}
	paid, err := p.userRewardPerToken.Get(user)
	if err != nil {
		return nil, err
	}
	pending, err := p.rewards.Get(user)
	if err != nil {
		return nil, err
	}
	v := new(big.Int).Sub(rpt, paid)
	v.Mul(v, balance).Quo(v, unit)
	return v.Add(v, pending), nil
}

func (p *Pool) updateReward(user thor.Address, now uint64) error {
	rpt, err := p.RewardPerToken(now)
	if err != nil {
		return err
	}
	p.rewardPerTokenStored.Set(rpt)
	applicable, err := p.lastTimeRewardApplicable(now)
	if err != nil {
		return err
	}
	if err := p.lastUpdateTime.Set(applicable); err != nil {
		return err
	}
	if user.IsZero() {
		return nil
	}
	earned, err := p.earned(user, now, rpt)
	if err != nil {
		return err
	}
	if err := p.rewards.Set(user, earned); err != nil {
		return err
	}
	return p.userRewardPerToken.Set(user, rpt)
}

// QueueNewRewards pulls amount from the admin. It starts a new period when
// the current one ended or has mostly been streamed, otherwise it waits in
// the queue for the next call.
func (p *Pool) QueueNewRewards(env *xenv.Environment, amount *big.Int) error {
	if err := p.ownable.RequireAdmin(env, "!authorized"); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		if err := p.reward.TransferFrom(env.WithCaller(p.addr), env.Caller(), p.addr, amount); err != nil {
			return err
		}
	}
	queued, err := p.queuedRewards.Get()
	if err != nil {
		return err
	}
	total := queued.Add(queued, amount)
	now := env.Now()

	finish, err := p.periodFinish.Get()
	if err != nil {
		return err
	}
	if now >= finish {
		p.queuedRewards.Set(new(big.Int))
		return p.notifyRewardAmount(env, total)
	}

	rate, err := p.rewardRate.Get()
	if err != nil {
		return err
	}
	elapsed := now - (finish - Duration)
	streamed := new(big.Int).Mul(rate, new(big.Int).SetUint64(elapsed))
	if total.Sign() > 0 {
		ratio := new(big.Int).Mul(streamed, big.NewInt(1000))
		if ratio.Quo(ratio, total).Cmp(big.NewInt(NewRewardRatio)) < 0 {
			p.queuedRewards.Set(new(big.Int))
			return p.notifyRewardAmount(env, total)
		}
	}
	p.queuedRewards.Set(total)
	return nil
}

func (p *Pool) notifyRewardAmount(env *xenv.Environment, reward *big.Int) error {
	now := env.Now()
	if err := p.updateReward(thor.Address{}, now); err != nil {
		return err
	}
	if err := p.historicalRewards.Add(reward); err != nil {
		return err
	}

	finish, err := p.periodFinish.Get()
	if err != nil {
		return err
	}
	total := new(big.Int).Set(reward)
	if now < finish {
		rate, err := p.rewardRate.Get()
		if err != nil {
			return err
		}
		total.Add(total, new(big.Int).Mul(rate, new(big.Int).SetUint64(finish-now)))
	}
	p.rewardRate.Set(new(big.Int).Quo(total, new(big.Int).SetUint64(Duration)))
	p.currentRewards.Set(total)
	if err := p.lastUpdateTime.Set(now); err != nil {
		return err
	}
	if err := p.periodFinish.Set(now + Duration); err != nil {
		return err
	}
	logger.Debug("rewards added", "amount", reward, "streamed", total)
	return env.Log(p.addr, "RewardAdded", nil, reward)
}

// GetReward pays the caller what it earned, into its lock when relock is set.
func (p *Pool) GetReward(env *xenv.Environment, relock bool) (*big.Int, error) {
	user := env.Caller()
	if err := p.updateReward(user, env.Now()); err != nil {
		return nil, err
	}
	reward, err := p.rewards.Get(user)
	if err != nil {
		return nil, err
	}
	if reward.Sign() == 0 {
		return reward, nil
	}
	if err := p.rewards.Set(user, new(big.Int)); err != nil {
		return nil, err
	}
	if relock {
		err = p.ledger.DepositFor(env.WithCaller(p.addr), user, reward)
	} else {
		err = p.reward.Transfer(env.WithCaller(p.addr), user, reward)
	}
	if err != nil {
		return nil, err
	}
	return reward, env.Log(p.addr, "RewardPaid", []thor.Bytes32{thor.BytesToBytes32(user.Bytes())}, reward, relock)
}

// Sweep sends the whole balance of a foreign asset to the admin.
func (p *Pool) Sweep(env *xenv.Environment, a asset.Asset) error {
	if err := p.ownable.RequireAdmin(env, "!authorized"); err != nil {
		return err
	}
	if a.Address() == p.reward.Address() {
		return reverts.New(reverts.InvariantViolation, "!rewardToken")
	}
	balance, err := a.BalanceOf(p.addr)
	if err != nil {
		return err
	}
	return a.Transfer(env.WithCaller(p.addr), env.Caller(), balance)
}
