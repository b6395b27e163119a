// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"

	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

// Locked returns the lock of user.
func (e *Escrow) Locked(user thor.Address) (*LockedBalance, error) {
	return e.storage.GetLocked(user)
}

// Supply is the total amount of the asset locked.
func (e *Escrow) Supply() (*big.Int, error) {
	return e.storage.supply.Get()
}

// Epoch is the index of the latest global point.
func (e *Escrow) Epoch() (uint64, error) {
	return e.storage.Epoch()
}

func (e *Escrow) PointHistory(epoch uint64) (*Point, error) {
	return e.storage.GetPoint(epoch)
}

func (e *Escrow) UserPointEpoch(user thor.Address) (uint64, error) {
	return e.storage.UserEpoch(user)
}

func (e *Escrow) UserPointHistory(user thor.Address, epoch uint64) (*Point, error) {
	return e.storage.GetUserPoint(user, epoch)
}

// SlopeChange is the slope decrement scheduled at week t.
func (e *Escrow) SlopeChange(t uint64) (*big.Int, error) {
	return e.storage.GetSlopeChange(t)
}

// search returns the largest index in [0, maxEpoch] whose point satisfies le,
// or 0 when none does. le must be monotonic over the history.
func search(maxEpoch uint64, le func(i uint64) (bool, error)) (uint64, error) {
	var lo uint64
	hi := maxEpoch
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		ok, err := le(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, nil
}

// FindTimestampEpoch returns the latest global epoch taken at or before ts.
func (e *Escrow) FindTimestampEpoch(ts uint64) (uint64, error) {
	maxEpoch, err := e.storage.Epoch()
	if err != nil {
		return 0, err
	}
	return search(maxEpoch, func(i uint64) (bool, error) {
		p, err := e.storage.GetPoint(i)
		if err != nil {
			return false, err
		}
		return p.Timestamp <= ts, nil
	})
}

// FindUserTimestampEpoch returns the latest epoch of user, up to maxEpoch, taken
// at or before ts. 0 means user has no point yet at ts.
func (e *Escrow) FindUserTimestampEpoch(user thor.Address, ts uint64, maxEpoch uint64) (uint64, error) {
	return search(maxEpoch, func(i uint64) (bool, error) {
		p, err := e.storage.GetUserPoint(user, i)
		if err != nil {
			return false, err
		}
		return p.Timestamp <= ts, nil
	})
}

func (e *Escrow) findBlockEpoch(block uint32, maxEpoch uint64) (uint64, error) {
	return search(maxEpoch, func(i uint64) (bool, error) {
		p, err := e.storage.GetPoint(i)
		if err != nil {
			return false, err
		}
		return p.Block <= block, nil
	})
}

func (e *Escrow) findUserBlockEpoch(user thor.Address, block uint32) (uint64, error) {
	maxEpoch, err := e.storage.UserEpoch(user)
	if err != nil {
		return 0, err
	}
	return search(maxEpoch, func(i uint64) (bool, error) {
		p, err := e.storage.GetUserPoint(user, i)
		if err != nil {
			return false, err
		}
		return p.Block <= block, nil
	})
}

// BalanceOf is the voting power of user at t.
func (e *Escrow) BalanceOf(user thor.Address, t uint64) (*big.Int, error) {
	maxEpoch, err := e.storage.UserEpoch(user)
	if err != nil {
		return nil, err
	}
	if maxEpoch == 0 {
		return new(big.Int), nil
	}
	epoch, err := e.FindUserTimestampEpoch(user, t, maxEpoch)
	if err != nil {
		return nil, err
	}
	p, err := e.storage.GetUserPoint(user, epoch)
	if err != nil {
		return nil, err
	}
	return p.ValueAt(t), nil
}

func (e *Escrow) BalanceOfNow(env *xenv.Environment, user thor.Address) (*big.Int, error) {
	return e.BalanceOf(user, env.Now())
}

// supplyAt evaluates the global line from point p to t, applying the
// scheduled slope decrements for at most MaxReplayPeriods weeks.
func (e *Escrow) supplyAt(p *Point, t uint64) (*big.Int, error) {
	bias := new(big.Int).Set(p.Bias)
	slope := new(big.Int).Set(p.Slope)
	lastTs := p.Timestamp
	dt := new(big.Int)

	ti := thor.FloorWeek(lastTs)
	for range MaxReplayPeriods {
		ti += thor.Week
		dSlope := new(big.Int)
		if ti > t {
			ti = t
		} else {
			var err error
			if dSlope, err = e.storage.GetSlopeChange(ti); err != nil {
				return nil, err
			}
		}
		bias.Sub(bias, dt.Mul(dt.SetUint64(ti-lastTs), slope))
		if ti == t {
			break
		}
		floorZero(slope.Sub(slope, dSlope))
		lastTs = ti
	}
	return floorZero(bias), nil
}

// TotalSupply is the total voting power at t.
func (e *Escrow) TotalSupply(t uint64) (*big.Int, error) {
	epoch, err := e.FindTimestampEpoch(t)
	if err != nil {
		return nil, err
	}
	p, err := e.storage.GetPoint(epoch)
	if err != nil {
		return nil, err
	}
	if p.Timestamp > t {
		return new(big.Int), nil
	}
	return e.supplyAt(p, t)
}

func (e *Escrow) TotalSupplyNow(env *xenv.Environment) (*big.Int, error) {
	return e.TotalSupply(env.Now())
}

// SupplyAtWeek is the total voting power at the week start ts, resolved
// directly on the global point history.
func (e *Escrow) SupplyAtWeek(ts uint64) (*big.Int, error) {
	return e.TotalSupply(thor.FloorWeek(ts))
}

// blockTime estimates the timestamp of block from the global point at
// epoch and its successor, or the head when epoch is the latest.
func (e *Escrow) blockTime(env *xenv.Environment, epoch, maxEpoch uint64, block uint32) (uint64, *Point, error) {
	p0, err := e.storage.GetPoint(epoch)
	if err != nil {
		return 0, nil, err
	}
	var dBlock, dt uint64
	if epoch < maxEpoch {
		p1, err := e.storage.GetPoint(epoch + 1)
		if err != nil {
			return 0, nil, err
		}
		dBlock = uint64(p1.Block - p0.Block)
		dt = p1.Timestamp - p0.Timestamp
	} else {
		head := env.BlockContext()
		if head.Number > p0.Block {
			dBlock = uint64(head.Number - p0.Block)
		}
		if head.Time > p0.Timestamp {
			dt = head.Time - p0.Timestamp
		}
	}
	ts := p0.Timestamp
	if dBlock != 0 && block > p0.Block {
		ts += dt * uint64(block-p0.Block) / dBlock
	}
	return ts, p0, nil
}

// BalanceOfAt is the voting power of user at block. Blocks ahead of the head give 0.
func (e *Escrow) BalanceOfAt(env *xenv.Environment, user thor.Address, block uint32) (*big.Int, error) {
	if block > env.BlockContext().Number {
		return new(big.Int), nil
	}
	uEpoch, err := e.findUserBlockEpoch(user, block)
	if err != nil {
		return nil, err
	}
	if uEpoch == 0 {
		return new(big.Int), nil
	}
	up, err := e.storage.GetUserPoint(user, uEpoch)
	if err != nil {
		return nil, err
	}
	maxEpoch, err := e.storage.Epoch()
	if err != nil {
		return nil, err
	}
	epoch, err := e.findBlockEpoch(block, maxEpoch)
	if err != nil {
		return nil, err
	}
	ts, _, err := e.blockTime(env, epoch, maxEpoch, block)
	if err != nil {
		return nil, err
	}
	return up.ValueAt(ts), nil
}

// TotalSupplyAt is the total voting power at block. Blocks ahead of the head give 0.
func (e *Escrow) TotalSupplyAt(env *xenv.Environment, block uint32) (*big.Int, error) {
	if block > env.BlockContext().Number {
		return new(big.Int), nil
	}
	maxEpoch, err := e.storage.Epoch()
	if err != nil {
		return nil, err
	}
	epoch, err := e.findBlockEpoch(block, maxEpoch)
	if err != nil {
		return nil, err
	}
	ts, p0, err := e.blockTime(env, epoch, maxEpoch, block)
	if err != nil {
		return nil, err
	}
	if block < p0.Block {
		return new(big.Int), nil
	}
	return e.supplyAt(p0, ts)
}
