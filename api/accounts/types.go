// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/veescrow/thor"
)

// Account carries both asset balances of an address.
type Account struct {
	Balance      *math.HexOrDecimal256 `json:"balance"`
	TokenBalance *math.HexOrDecimal256 `json:"tokenBalance"`
}

type Token struct {
	Address     thor.Address          `json:"address"`
	Minter      thor.Address          `json:"minter"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

type Allowance struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// TransferRequest moves an asset from the caller. A missing asset means native.
type TransferRequest struct {
	Asset  *thor.Address         `json:"asset"`
	To     *thor.Address         `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// ApproveRequest sets an allowance of the caller. A missing asset means the token.
type ApproveRequest struct {
	Asset   *thor.Address         `json:"asset"`
	Spender *thor.Address         `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

type MintRequest struct {
	To     *thor.Address         `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}
