// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()

	assert.Nil(t, m.GetOrCreateHandler())
	assert.NotPanics(t, func() {
		m.GetOrCreateCountMeter("c").Add(1)
		m.GetOrCreateCountVecMeter("cv", []string{"k"}).AddWithLabel(1, map[string]string{"nonsense": "ok"})
		m.GetOrCreateGaugeMeter("g").Set(1)
		m.GetOrCreateGaugeVecMeter("gv", nil).SetWithLabel(1, nil)
		m.GetOrCreateHistogramMeter("h", nil).Observe(1)
		m.GetOrCreateHistogramVecMeter("hv", nil, nil).ObserveWithLabels(1, nil)
	})
}
