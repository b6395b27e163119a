// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"
)

// LockedBalance is the lock of an owner. Amount is zero when there is none.
type LockedBalance struct {
	Amount *big.Int
	End    uint64
}

func (l *LockedBalance) normalize() *LockedBalance {
	if l == nil {
		return &LockedBalance{Amount: new(big.Int)}
	}
	if l.Amount == nil {
		l.Amount = new(big.Int)
	}
	return l
}

// IsActive reports whether the lock holds funds.
func (l *LockedBalance) IsActive() bool {
	return l.Amount.Sign() > 0
}

// Point is a checkpoint of a decay line, stamped with the time and block it was taken.
type Point struct {
	Bias      *big.Int
	Slope     *big.Int
	Timestamp uint64
	Block     uint32
}

func (p *Point) normalize() *Point {
	if p == nil {
		p = &Point{}
	}
	if p.Bias == nil {
		p.Bias = new(big.Int)
	}
	if p.Slope == nil {
		p.Slope = new(big.Int)
	}
	return p
}

// Line returns the decay line of p.
func (p *Point) Line() Line {
	return Line{Bias: p.Bias, Slope: p.Slope}
}

// ValueAt evaluates p at t, floored at zero.
func (p *Point) ValueAt(t uint64) *big.Int {
	return p.Line().ValueAt(p.Timestamp, t)
}

func (p *Point) clone() *Point {
	return &Point{
		Bias:      new(big.Int).Set(p.Bias),
		Slope:     new(big.Int).Set(p.Slope),
		Timestamp: p.Timestamp,
		Block:     p.Block,
	}
}
