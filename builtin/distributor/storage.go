// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/veescrow/builtin/solidity"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
)

var (
	slotStartTime          = nameToSlot("start-time")
	slotLastTokenTime      = nameToSlot("last-token-time")
	slotTokenLastBalance   = nameToSlot("token-last-balance")
	slotTokensPerWeek      = nameToSlot("tokens-per-week")
	slotVeSupply           = nameToSlot("ve-supply")
	slotTimeCursor         = nameToSlot("time-cursor")
	slotTimeCursorOf       = nameToSlot("time-cursor-of")
	slotUserEpochOf        = nameToSlot("user-epoch-of")
	slotCanCheckpointToken = nameToSlot("can-checkpoint-token")
	slotKilled             = nameToSlot("killed")
	slotEmergencyReturn    = nameToSlot("emergency-return")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// storage represents the root storage for a Distributor contract.
type storage struct {
	context            *solidity.Context
	startTime          *solidity.Value[uint64]
	lastTokenTime      *solidity.Value[uint64]
	tokenLastBalance   *solidity.Uint256
	tokensPerWeek      *solidity.Mapping[solidity.Uint64Key, *big.Int]
	veSupply           *solidity.Mapping[solidity.Uint64Key, *big.Int]
	timeCursor         *solidity.Value[uint64]
	timeCursorOf       *solidity.Mapping[thor.Address, uint64]
	userEpochOf        *solidity.Mapping[thor.Address, uint64]
	canCheckpointToken *solidity.Bool
	killed             *solidity.Bool
	emergencyReturn    *solidity.Address
}

func newStorage(addr thor.Address, state *state.State) *storage {
	context := solidity.NewContext(addr, state)
	return &storage{
		context:            context,
		startTime:          solidity.NewValue[uint64](context, slotStartTime),
		lastTokenTime:      solidity.NewValue[uint64](context, slotLastTokenTime),
		tokenLastBalance:   solidity.NewUint256(context, slotTokenLastBalance),
		tokensPerWeek:      solidity.NewMapping[solidity.Uint64Key, *big.Int](context, slotTokensPerWeek),
		veSupply:           solidity.NewMapping[solidity.Uint64Key, *big.Int](context, slotVeSupply),
		timeCursor:         solidity.NewValue[uint64](context, slotTimeCursor),
		timeCursorOf:       solidity.NewMapping[thor.Address, uint64](context, slotTimeCursorOf),
		userEpochOf:        solidity.NewMapping[thor.Address, uint64](context, slotUserEpochOf),
		canCheckpointToken: solidity.NewBool(context, slotCanCheckpointToken),
		killed:             solidity.NewBool(context, slotKilled),
		emergencyReturn:    solidity.NewAddress(context, slotEmergencyReturn),
	}
}

func (s *storage) AddTokensPerWeek(week uint64, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	v, err := s.tokensPerWeek.Get(solidity.Uint64Key(week))
	if err != nil {
		return errors.Wrap(err, "failed to get tokens per week")
	}
	if err := s.tokensPerWeek.Set(solidity.Uint64Key(week), v.Add(v, amount)); err != nil {
		return errors.Wrap(err, "failed to set tokens per week")
	}
	return nil
}

func (s *storage) GetTokensPerWeek(week uint64) (*big.Int, error) {
	v, err := s.tokensPerWeek.Get(solidity.Uint64Key(week))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tokens per week")
	}
	return v, nil
}

func (s *storage) GetVeSupply(week uint64) (*big.Int, error) {
	v, err := s.veSupply.Get(solidity.Uint64Key(week))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ve supply")
	}
	return v, nil
}

func (s *storage) SetVeSupply(week uint64, supply *big.Int) error {
	if err := s.veSupply.Set(solidity.Uint64Key(week), supply); err != nil {
		return errors.Wrap(err, "failed to set ve supply")
	}
	return nil
}

// cursor is the resumable claim position of a user.
type cursor struct {
	week  uint64
	epoch uint64
}

func (s *storage) GetCursor(user thor.Address) (cursor, error) {
	week, err := s.timeCursorOf.Get(user)
	if err != nil {
		return cursor{}, errors.Wrap(err, "failed to get time cursor")
	}
	epoch, err := s.userEpochOf.Get(user)
	if err != nil {
		return cursor{}, errors.Wrap(err, "failed to get user epoch")
	}
	return cursor{week: week, epoch: epoch}, nil
}

func (s *storage) SetCursor(user thor.Address, c cursor) error {
	if err := s.timeCursorOf.Set(user, c.week); err != nil {
		return errors.Wrap(err, "failed to set time cursor")
	}
	if err := s.userEpochOf.Set(user, c.epoch); err != nil {
		return errors.Wrap(err, "failed to set user epoch")
	}
	return nil
}
