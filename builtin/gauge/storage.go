// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauge

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/veescrow/builtin/solidity"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
)

var (
	slotBalances         = nameToSlot("balances")
	slotTotalSupply      = nameToSlot("total-supply")
	slotAllowances       = nameToSlot("allowances")
	slotWorkingBalances  = nameToSlot("working-balances")
	slotWorkingSupply    = nameToSlot("working-supply")
	slotLastCheckpointOf = nameToSlot("last-checkpoint-of")
	slotRewardTokens     = nameToSlot("reward-tokens")
	slotRewardData       = nameToSlot("reward-data")
	slotRewardIntegral   = nameToSlot("reward-integral-for")
	slotClaimData        = nameToSlot("claim-data")
	slotRewardsReceiver  = nameToSlot("rewards-receiver")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

func pairKey(a, b thor.Address) thor.Bytes32 {
	return thor.Blake2b(a.Bytes(), b.Bytes())
}

// RewardData is the stream of one reward asset.
type RewardData struct {
	Distributor  thor.Address
	PeriodFinish uint64
	Rate         *big.Int // per second
	LastUpdate   uint64
	Integral     *big.Int // reward per staked unit, scaled by 1e18
}

func (r *RewardData) normalize() *RewardData {
	if r.Rate == nil {
		r.Rate = new(big.Int)
	}
	if r.Integral == nil {
		r.Integral = new(big.Int)
	}
	return r
}

// ClaimData is what a user has pending and was paid of one reward asset.
type ClaimData struct {
	Claimable *big.Int
	Claimed   *big.Int
}

func (c *ClaimData) normalize() *ClaimData {
	if c.Claimable == nil {
		c.Claimable = new(big.Int)
	}
	if c.Claimed == nil {
		c.Claimed = new(big.Int)
	}
	return c
}

type storage struct {
	context          *solidity.Context
	balances         *solidity.Mapping[thor.Address, *big.Int]
	totalSupply      *solidity.Uint256
	allowances       *solidity.Mapping[thor.Bytes32, *big.Int]
	workingBalances  *solidity.Mapping[thor.Address, *big.Int]
	workingSupply    *solidity.Uint256
	lastCheckpointOf *solidity.Mapping[thor.Address, uint64]
	rewardTokens     *solidity.Array[thor.Address]
	rewardData       *solidity.Mapping[thor.Address, *RewardData]
	rewardIntegral   *solidity.Mapping[thor.Bytes32, *big.Int] // (token, user) => integral paid
	claimData        *solidity.Mapping[thor.Bytes32, *ClaimData]
	rewardsReceiver  *solidity.Mapping[thor.Address, thor.Address]
}

func newStorage(addr thor.Address, state *state.State) *storage {
	context := solidity.NewContext(addr, state)
	return &storage{
		context:          context,
		balances:         solidity.NewMapping[thor.Address, *big.Int](context, slotBalances),
		totalSupply:      solidity.NewUint256(context, slotTotalSupply),
		allowances:       solidity.NewMapping[thor.Bytes32, *big.Int](context, slotAllowances),
		workingBalances:  solidity.NewMapping[thor.Address, *big.Int](context, slotWorkingBalances),
		workingSupply:    solidity.NewUint256(context, slotWorkingSupply),
		lastCheckpointOf: solidity.NewMapping[thor.Address, uint64](context, slotLastCheckpointOf),
		rewardTokens:     solidity.NewArray[thor.Address](context, slotRewardTokens),
		rewardData:       solidity.NewMapping[thor.Address, *RewardData](context, slotRewardData),
		rewardIntegral:   solidity.NewMapping[thor.Bytes32, *big.Int](context, slotRewardIntegral),
		claimData:        solidity.NewMapping[thor.Bytes32, *ClaimData](context, slotClaimData),
		rewardsReceiver:  solidity.NewMapping[thor.Address, thor.Address](context, slotRewardsReceiver),
	}
}

func (s *storage) GetRewardData(token thor.Address) (*RewardData, error) {
	r, err := s.rewardData.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward data")
	}
	return r.normalize(), nil
}

func (s *storage) SetRewardData(token thor.Address, r *RewardData) error {
	if err := s.rewardData.Set(token, r); err != nil {
		return errors.Wrap(err, "failed to set reward data")
	}
	return nil
}

func (s *storage) GetClaimData(user, token thor.Address) (*ClaimData, error) {
	c, err := s.claimData.Get(pairKey(user, token))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get claim data")
	}
	return c.normalize(), nil
}

func (s *storage) SetClaimData(user, token thor.Address, c *ClaimData) error {
	if err := s.claimData.Set(pairKey(user, token), c); err != nil {
		return errors.Wrap(err, "failed to set claim data")
	}
	return nil
}

// RewardTokens lists the reward assets in the order they were added.
func (s *storage) RewardTokens() ([]thor.Address, error) {
	n, err := s.rewardTokens.Len()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward count")
	}
	tokens := make([]thor.Address, 0, n)
	for i := range n {
		token, err := s.rewardTokens.Get(i)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get reward token")
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}
