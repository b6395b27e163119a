// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"
)

// Line is a quantity decaying linearly to zero: Bias at its origin, minus Slope per second.
type Line struct {
	Bias  *big.Int
	Slope *big.Int
}

func zeroLine() Line {
	return Line{Bias: new(big.Int), Slope: new(big.Int)}
}

// NewLine builds the line of amount locked from now until end. The slope is
// rounded down per second and the bias derived from it, so the line hits
// zero exactly at end.
func NewLine(amount *big.Int, now, end uint64) Line {
	if end <= now || amount.Sign() <= 0 {
		return zeroLine()
	}
	dt := new(big.Int).SetUint64(end - now)
	slope := new(big.Int).Quo(amount, dt)
	return Line{
		Bias:  new(big.Int).Mul(slope, dt),
		Slope: slope,
	}
}

// ValueAt evaluates the line originating at from, at t. Times before from evaluate at from.
func (l Line) ValueAt(from, t uint64) *big.Int {
	v := new(big.Int).Set(l.Bias)
	if t > from {
		v.Sub(v, new(big.Int).Mul(l.Slope, new(big.Int).SetUint64(t-from)))
	}
	if v.Sign() < 0 {
		v.SetInt64(0)
	}
	return v
}
