// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"strings"

	"github.com/vechain/veescrow/metrics"
)

var (
	metricCriteriaLengthBucket = metrics.LazyLoadHistogramVec("logdb_criteria_length_bucket", []string{"type"}, []int64{0, 2, 5, 10, 25, 100, 1000})
	metricQueryParameters      = metrics.LazyLoadCounterVec("logdb_query_parameters", []string{"type", "parameters"})
	metricQueryOrderCounter    = metrics.LazyLoadCounterVec("logdb_query_order", []string{"type", "order"})
	metricLimitBucket          = metrics.LazyLoadHistogramVec("logdb_query_limit_bucket", []string{"type"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
	metricWrittenRecords = metrics.LazyLoadCounterVec("logdb_written_records", []string{"type"})
)

func metricsHandleEventsFilter(filter *EventFilter) {
	metricsHandleCommon(filter.Options, filter.Order, len(filter.CriteriaSet), "event")

	for _, c := range filter.CriteriaSet {
		used := make([]string, 0, 6)
		if c.Address != nil {
			used = append(used, "address")
		}
		for i, topic := range c.Topics {
			if topic != nil {
				used = append(used, "topic"+string(rune('0'+i)))
			}
		}
		metricQueryParameters().AddWithLabel(1, map[string]string{"type": "event", "parameters": strings.Join(used, ",")})
	}
}

func metricsHandleTransfersFilter(filter *TransferFilter) {
	metricsHandleCommon(filter.Options, filter.Order, len(filter.CriteriaSet), "transfer")

	for _, c := range filter.CriteriaSet {
		used := make([]string, 0, 4)
		if c.Origin != nil {
			used = append(used, "origin")
		}
		if c.Asset != nil {
			used = append(used, "asset")
		}
		if c.Sender != nil {
			used = append(used, "sender")
		}
		if c.Recipient != nil {
			used = append(used, "recipient")
		}
		metricQueryParameters().AddWithLabel(1, map[string]string{"type": "transfer", "parameters": strings.Join(used, ",")})
	}
}

func metricsHandleCommon(options *Options, order Order, criteriaLen int, queryType string) {
	metricCriteriaLengthBucket().ObserveWithLabels(int64(criteriaLen), map[string]string{"type": queryType})

	if order == DESC {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "desc", "type": queryType})
	} else {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "asc", "type": queryType})
	}

	if options != nil {
		limit := min(options.Limit, 1001)
		metricLimitBucket().ObserveWithLabels(int64(limit), map[string]string{"type": queryType})
	}
}
