// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/veescrow/metrics"

var (
	metricCalls        = metrics.LazyLoadCounterVec("runtime_calls_count", []string{"result"})
	metricCallDuration = metrics.LazyLoadHistogram("runtime_call_duration_ms", metrics.BucketHTTPReqs)
	metricBlockCalls   = metrics.LazyLoadHistogram("runtime_block_calls", []int64{0, 1, 2, 5, 10, 20, 50, 100, 500})
)
