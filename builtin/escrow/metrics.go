// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import "github.com/vechain/veescrow/metrics"

var (
	metricLockOps       = metrics.LazyLoadCounterVec("escrow_lock_ops_count", []string{"op"})
	metricReplayPeriods = metrics.LazyLoadHistogram("escrow_replay_periods", metrics.BucketIterations)
	metricLockedSupply  = metrics.LazyLoadGauge("escrow_locked_supply") // whole tokens
)
