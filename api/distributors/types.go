// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributors

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/veescrow/thor"
)

type State struct {
	Name               string                `json:"name"`
	Address            thor.Address          `json:"address"`
	Reward             thor.Address          `json:"reward"`
	Relock             bool                  `json:"relock"`
	Admin              thor.Address          `json:"admin"`
	FutureAdmin        thor.Address          `json:"futureAdmin"`
	EmergencyReturn    thor.Address          `json:"emergencyReturn"`
	StartTime          uint64                `json:"startTime"`
	LastTokenTime      uint64                `json:"lastTokenTime"`
	TimeCursor         uint64                `json:"timeCursor"`
	TokenLastBalance   *math.HexOrDecimal256 `json:"tokenLastBalance"`
	Balance            *math.HexOrDecimal256 `json:"balance"`
	CanCheckpointToken bool                  `json:"canCheckpointToken"`
	IsKilled           bool                  `json:"isKilled"`
}

type Week struct {
	Week          uint64                `json:"week"`
	TokensPerWeek *math.HexOrDecimal256 `json:"tokensPerWeek"`
	VeSupply      *math.HexOrDecimal256 `json:"veSupply"`
}

type Cursor struct {
	Week  uint64 `json:"week"`
	Epoch uint64 `json:"epoch"`
}

type Claimable struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type ClaimRequest struct {
	Address *thor.Address `json:"address,omitempty"`
}

type ClaimManyRequest struct {
	Addresses []thor.Address `json:"addresses"`
}

type BurnRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type SweepRequest struct {
	Asset *thor.Address `json:"asset"`
}

type AddressRequest struct {
	Address *thor.Address `json:"address"`
}
