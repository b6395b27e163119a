// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"

	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

// blockSlopeScale keeps precision of the blocks per second ratio.
var blockSlopeScale = big.NewInt(1e18)

func floorZero(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		v.SetInt64(0)
	}
	return v
}

// replay walks the global line from last towards now, one week boundary at a
// time, applying the scheduled slope decrements. It returns the points to
// append and whether the walk reached now, in which case the last returned
// point is taken at now.
func (e *Escrow) replay(last *Point, now uint64, blk uint32) ([]*Point, bool, error) {
	var (
		cur       = last.clone()
		lastTs    = last.Timestamp
		blkSlope  = new(big.Int)
		points    = make([]*Point, 0, 2)
		timeDelta = new(big.Int)
	)
	if now > last.Timestamp && blk > last.Block {
		blkSlope.Mul(big.NewInt(int64(blk-last.Block)), blockSlopeScale)
		blkSlope.Quo(blkSlope, new(big.Int).SetUint64(now-last.Timestamp))
	}

	ti := thor.FloorWeek(lastTs)
	for range MaxReplayPeriods {
		ti += thor.Week
		dSlope := new(big.Int)
		if ti > now {
			ti = now
		} else {
			var err error
			if dSlope, err = e.storage.GetSlopeChange(ti); err != nil {
				return nil, false, err
			}
		}
		timeDelta.SetUint64(ti - lastTs)
		floorZero(cur.Bias.Sub(cur.Bias, timeDelta.Mul(timeDelta, cur.Slope)))
		floorZero(cur.Slope.Sub(cur.Slope, dSlope))
		lastTs = ti
		cur.Timestamp = ti

		if ti == now {
			cur.Block = blk
			return append(points, cur.clone()), true, nil
		}
		interpolated := new(big.Int).SetUint64(ti - last.Timestamp)
		interpolated.Mul(interpolated, blkSlope).Quo(interpolated, blockSlopeScale)
		cur.Block = last.Block + uint32(interpolated.Uint64())
		points = append(points, cur.clone())
	}
	return points, false, nil
}

// checkpoint records the global line at now, and when user is set, replaces
// the user's old line by newLine. A user change needs the replay to reach
// now; a bare checkpoint persists whatever progress it made.
func (e *Escrow) checkpoint(
	env *xenv.Environment,
	user thor.Address,
	oldLine Line,
	oldEnd uint64,
	newLine Line,
	newEnd uint64,
) error {
	now := env.Now()
	blk := env.BlockContext().Number

	epoch, err := e.storage.Epoch()
	if err != nil {
		return err
	}
	last, err := e.storage.GetPoint(epoch)
	if err != nil {
		return err
	}
	points, reached, err := e.replay(last, now, blk)
	if err != nil {
		return err
	}
	metricReplayPeriods().Observe(int64(len(points)))

	if !user.IsZero() {
		if !reached {
			return reverts.New(reverts.InvariantViolation, "checkpoint required")
		}
		final := points[len(points)-1]
		floorZero(final.Slope.Add(final.Slope, new(big.Int).Sub(newLine.Slope, oldLine.Slope)))
		floorZero(final.Bias.Add(final.Bias, new(big.Int).Sub(newLine.Bias, oldLine.Bias)))
	} else if !reached {
		logger.Info("partial checkpoint", "from", last.Timestamp, "to", points[len(points)-1].Timestamp, "now", now)
	}
	for _, p := range points {
		if err := e.storage.PushPoint(p); err != nil {
			return err
		}
	}
	if user.IsZero() {
		return nil
	}

	// schedule the slope decrements at the lock ends
	if oldEnd > now {
		dSlope, err := e.storage.GetSlopeChange(oldEnd)
		if err != nil {
			return err
		}
		dSlope.Sub(dSlope, oldLine.Slope)
		if newEnd == oldEnd {
			dSlope.Add(dSlope, newLine.Slope)
		}
		if err := e.storage.SetSlopeChange(oldEnd, dSlope); err != nil {
			return err
		}
	}
	if newEnd > now && newEnd > oldEnd {
		dSlope, err := e.storage.GetSlopeChange(newEnd)
		if err != nil {
			return err
		}
		if err := e.storage.SetSlopeChange(newEnd, dSlope.Add(dSlope, newLine.Slope)); err != nil {
			return err
		}
	}

	return e.storage.PushUserPoint(user, &Point{
		Bias:      new(big.Int).Set(newLine.Bias),
		Slope:     new(big.Int).Set(newLine.Slope),
		Timestamp: now,
		Block:     blk,
	})
}
