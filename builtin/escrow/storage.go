// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/veescrow/builtin/solidity"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
)

var (
	slotLocked        = nameToSlot("locked")
	slotSupply        = nameToSlot("supply")
	slotPointHistory  = nameToSlot("point-history")
	slotUserHistory   = nameToSlot("user-point-history")
	slotSlopeChanges  = nameToSlot("slope-changes")
	slotFundsUnlocked = nameToSlot("funds-unlocked")
	slotRewardPool    = nameToSlot("reward-pool")
	slotDepositors    = nameToSlot("depositors")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// storage represents the root storage for the Escrow contract.
type storage struct {
	context       *solidity.Context
	locked        *solidity.Mapping[thor.Address, *LockedBalance]
	supply        *solidity.Uint256
	pointHistory  *solidity.Array[*Point]
	slopeChanges  *solidity.Mapping[solidity.Uint64Key, *big.Int] // week -> slope decrement
	fundsUnlocked *solidity.Bool
	rewardPool    *solidity.Address
	depositors    *solidity.Mapping[thor.Address, bool]
}

func newStorage(addr thor.Address, state *state.State) *storage {
	context := solidity.NewContext(addr, state)
	return &storage{
		context:       context,
		locked:        solidity.NewMapping[thor.Address, *LockedBalance](context, slotLocked),
		supply:        solidity.NewUint256(context, slotSupply),
		pointHistory:  solidity.NewArray[*Point](context, slotPointHistory),
		slopeChanges:  solidity.NewMapping[solidity.Uint64Key, *big.Int](context, slotSlopeChanges),
		fundsUnlocked: solidity.NewBool(context, slotFundsUnlocked),
		rewardPool:    solidity.NewAddress(context, slotRewardPool),
		depositors:    solidity.NewMapping[thor.Address, bool](context, slotDepositors),
	}
}

func (s *storage) userHistory(user thor.Address) *solidity.Array[*Point] {
	return solidity.NewNestedArray[thor.Address, *Point](s.context, slotUserHistory, user)
}

func (s *storage) GetLocked(user thor.Address) (*LockedBalance, error) {
	l, err := s.locked.Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get lock")
	}
	return l.normalize(), nil
}

func (s *storage) SetLocked(user thor.Address, l *LockedBalance) error {
	if !l.IsActive() {
		s.locked.Delete(user)
		return nil
	}
	if err := s.locked.Set(user, l); err != nil {
		return errors.Wrap(err, "failed to set lock")
	}
	return nil
}

// Epoch is the index of the latest global point.
func (s *storage) Epoch() (uint64, error) {
	n, err := s.pointHistory.Len()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get point history length")
	}
	if n == 0 {
		return 0, nil
	}
	return n - 1, nil
}

func (s *storage) GetPoint(epoch uint64) (*Point, error) {
	p, err := s.pointHistory.Get(epoch)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get point")
	}
	return p.normalize(), nil
}

func (s *storage) PushPoint(p *Point) error {
	if _, err := s.pointHistory.Push(p); err != nil {
		return errors.Wrap(err, "failed to push point")
	}
	return nil
}

// UserEpoch is the number of points of user; user epochs count from 1.
func (s *storage) UserEpoch(user thor.Address) (uint64, error) {
	n, err := s.userHistory(user).Len()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get user point history length")
	}
	return n, nil
}

// GetUserPoint returns the user point at epoch, the zero point for epoch 0.
func (s *storage) GetUserPoint(user thor.Address, epoch uint64) (*Point, error) {
	if epoch == 0 {
		return (*Point)(nil).normalize(), nil
	}
	p, err := s.userHistory(user).Get(epoch - 1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user point")
	}
	return p.normalize(), nil
}

func (s *storage) PushUserPoint(user thor.Address, p *Point) error {
	if _, err := s.userHistory(user).Push(p); err != nil {
		return errors.Wrap(err, "failed to push user point")
	}
	return nil
}

func (s *storage) GetSlopeChange(t uint64) (*big.Int, error) {
	v, err := s.slopeChanges.Get(solidity.Uint64Key(t))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get slope change")
	}
	return v, nil
}

func (s *storage) SetSlopeChange(t uint64, v *big.Int) error {
	if v.Sign() <= 0 {
		s.slopeChanges.Delete(solidity.Uint64Key(t))
		return nil
	}
	if err := s.slopeChanges.Set(solidity.Uint64Key(t), v); err != nil {
		return errors.Wrap(err, "failed to set slope change")
	}
	return nil
}
