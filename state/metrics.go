// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/vechain/veescrow/metrics"

var (
	metricStateLoad     = metrics.LazyLoadCounterVec("state_load_count", []string{"type", "source"})
	metricCacheHitMiss  = metrics.LazyLoadGaugeVec("state_cache_hit_miss_count", []string{"event"})
	metricCommitEntries = metrics.LazyLoadHistogram("state_commit_entries", []int64{0, 1, 5, 10, 50, 100, 500, 1000})
)
