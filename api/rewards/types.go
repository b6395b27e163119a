// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/veescrow/thor"
)

type State struct {
	Address           thor.Address          `json:"address"`
	Reward            thor.Address          `json:"reward"`
	Admin             thor.Address          `json:"admin"`
	PeriodFinish      uint64                `json:"periodFinish"`
	RewardRate        *math.HexOrDecimal256 `json:"rewardRate"`
	RewardPerToken    *math.HexOrDecimal256 `json:"rewardPerToken"`
	QueuedRewards     *math.HexOrDecimal256 `json:"queuedRewards"`
	CurrentRewards    *math.HexOrDecimal256 `json:"currentRewards"`
	HistoricalRewards *math.HexOrDecimal256 `json:"historicalRewards"`
	Balance           *math.HexOrDecimal256 `json:"balance"`
}

type Earned struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type QueueRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type GetRewardRequest struct {
	Relock bool `json:"relock"`
}

type SweepRequest struct {
	Asset *thor.Address `json:"asset"`
}

type AddressRequest struct {
	Address *thor.Address `json:"address"`
}
