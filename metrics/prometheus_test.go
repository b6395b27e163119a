// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	m := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		m[mf.GetName()] = mf
	}
	return m
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	claims := Counter("claims_count")
	claims.Add(1)
	Counter("claims_count").Add(2)

	byKind := CounterVec("calls_count", []string{"kind"})
	byKind.AddWithLabel(3, map[string]string{"kind": "lock"})
	byKind.AddWithLabel(4, map[string]string{"kind": "claim"})

	supply := Gauge("total_supply")
	supply.Set(10)
	supply.Add(-3)

	cursor := GaugeVec("time_cursor", []string{"distributor"})
	cursor.SetWithLabel(604800, map[string]string{"distributor": "fee"})

	iters := Histogram("claim_iterations", BucketIterations)
	iters.Observe(20)
	iters.Observe(50)

	HistogramVec("replay_periods", []string{"who"}, BucketIterations).
		ObserveWithLabels(7, map[string]string{"who": "global"})

	m := gather(t)
	require.Equal(t, float64(3), m["veescrow_claims_count"].Metric[0].GetCounter().GetValue())

	sum := 0.0
	for _, metric := range m["veescrow_calls_count"].Metric {
		sum += metric.GetCounter().GetValue()
	}
	require.Equal(t, float64(7), sum)

	require.Equal(t, float64(7), m["veescrow_total_supply"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(604800), m["veescrow_time_cursor"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(70), m["veescrow_claim_iterations"].Metric[0].GetHistogram().GetSampleSum())
	require.Equal(t, uint64(1), m["veescrow_replay_periods"].Metric[0].GetHistogram().GetSampleCount())
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()

	for _, a := range []any{
		Gauge("noopGauge"),
		GaugeVec("noopGauge", nil),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
		HistogramVec("noopHist", nil, nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazyGaugeVec", nil)
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", nil, nil)

	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
}
