// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauge

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/veescrow/thor"
)

type Reward struct {
	Token        thor.Address          `json:"token"`
	Distributor  thor.Address          `json:"distributor"`
	PeriodFinish uint64                `json:"periodFinish"`
	Rate         *math.HexOrDecimal256 `json:"rate"`
	LastUpdate   uint64                `json:"lastUpdate"`
	Integral     *math.HexOrDecimal256 `json:"integral"`
}

type State struct {
	Address       thor.Address          `json:"address"`
	LP            thor.Address          `json:"lp"`
	Admin         thor.Address          `json:"admin"`
	TotalSupply   *math.HexOrDecimal256 `json:"totalSupply"`
	WorkingSupply *math.HexOrDecimal256 `json:"workingSupply"`
	Rewards       []*Reward             `json:"rewards"`
}

type UserReward struct {
	Token     thor.Address          `json:"token"`
	Claimable *math.HexOrDecimal256 `json:"claimable"`
	Claimed   *math.HexOrDecimal256 `json:"claimed"`
}

// User is the stake of an address and what it earned of every reward.
type User struct {
	Balance         *math.HexOrDecimal256 `json:"balance"`
	WorkingBalance  *math.HexOrDecimal256 `json:"workingBalance"`
	LastCheckpoint  uint64                `json:"lastCheckpoint"`
	RewardsReceiver thor.Address          `json:"rewardsReceiver"`
	Rewards         []*UserReward         `json:"rewards"`
}

// DepositRequest stakes LP of the caller. A missing recipient means the caller.
type DepositRequest struct {
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Recipient *thor.Address         `json:"recipient"`
	Claim     bool                  `json:"claim"`
}

type WithdrawRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
	Claim  bool                  `json:"claim"`
}

// ClaimRequest claims for user, the caller when missing. Only the caller's
// own claim may name a receiver.
type ClaimRequest struct {
	User     *thor.Address `json:"user"`
	Receiver *thor.Address `json:"receiver"`
}

type ReceiverRequest struct {
	Receiver *thor.Address `json:"receiver"`
}

type AddressRequest struct {
	Address *thor.Address `json:"address"`
}

type AddRewardRequest struct {
	Token       *thor.Address `json:"token"`
	Distributor *thor.Address `json:"distributor"`
}

type DepositRewardRequest struct {
	Token  *thor.Address         `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}
