// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/veescrow/api/types"
	"github.com/vechain/veescrow/builtin/escrow"
	"github.com/vechain/veescrow/thor"
)

type Config struct {
	Address       thor.Address          `json:"address"`
	Token         thor.Address          `json:"token"`
	Admin         thor.Address          `json:"admin"`
	FutureAdmin   thor.Address          `json:"futureAdmin"`
	RewardPool    thor.Address          `json:"rewardPool"`
	FundsUnlocked bool                  `json:"fundsUnlocked"`
	Supply        *math.HexOrDecimal256 `json:"supply"`
	TotalSupply   *math.HexOrDecimal256 `json:"totalSupply"`
	Epoch         uint64                `json:"epoch"`
	MaxLockTime   uint64                `json:"maxLockTime"`
}

type Lock struct {
	Amount  *math.HexOrDecimal256 `json:"amount"`
	End     uint64                `json:"end"`
	Epoch   uint64                `json:"epoch"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

type Point struct {
	Bias      *math.HexOrDecimal256 `json:"bias"`
	Slope     *math.HexOrDecimal256 `json:"slope"`
	Timestamp uint64                `json:"timestamp"`
	Block     uint32                `json:"block"`
}

func convertPoint(p *escrow.Point) *Point {
	return &Point{
		Bias:      types.Amount(p.Bias),
		Slope:     types.Amount(p.Slope),
		Timestamp: p.Timestamp,
		Block:     p.Block,
	}
}

type Balance struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
}

type Supply struct {
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

type SlopeChange struct {
	Time  uint64                `json:"time"`
	Slope *math.HexOrDecimal256 `json:"slope"`
}

type Depositor struct {
	Address thor.Address `json:"address"`
	Allowed bool         `json:"allowed"`
}

type LockRequest struct {
	Amount     *math.HexOrDecimal256 `json:"amount"`
	UnlockTime uint64                `json:"unlockTime"`
}

type AmountRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type UnlockTimeRequest struct {
	UnlockTime uint64 `json:"unlockTime"`
}

type DepositForRequest struct {
	Owner  *thor.Address         `json:"owner"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type AddressRequest struct {
	Address *thor.Address `json:"address"`
}

type DepositorRequest struct {
	Address *thor.Address `json:"address"`
	Allowed bool          `json:"allowed"`
}

type FundsUnlockedRequest struct {
	Unlocked bool `json:"unlocked"`
}
