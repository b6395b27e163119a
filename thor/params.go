// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "math/big"

// Constants of the ledger.
const (
	Day  uint64 = 86400
	Week uint64 = 7 * Day // period boundary for locks, rewards and supply snapshots

	BlockInterval uint64 = 10 // default time interval between two consecutive blocks.
)

// Ether is the base unit multiplier of an asset with 18 decimals.
var Ether = big.NewInt(1e18)

// FloorWeek rounds t down to the start of its week.
func FloorWeek(t uint64) uint64 {
	return t / Week * Week
}

// CeilWeek rounds t up to the next week boundary, t itself if already aligned.
func CeilWeek(t uint64) uint64 {
	return (t + Week - 1) / Week * Week
}
