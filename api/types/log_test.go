// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/veescrow/logdb"
	"github.com/vechain/veescrow/thor"
)

func u64(n uint64) *uint64 { return &n }

func TestConvertRange(t *testing.T) {
	tests := []struct {
		name string
		rng  *Range
		want *logdb.Range
	}{
		{"nil", nil, nil},
		{"block", &Range{Unit: BlockRangeType, From: u64(1), To: u64(2)}, &logdb.Range{Unit: logdb.Block, From: 1, To: 2}},
		{"default unit", &Range{From: u64(3)}, &logdb.Range{Unit: logdb.Block, From: 3, To: math.MaxUint32}},
		{"block clamped", &Range{To: u64(math.MaxUint64)}, &logdb.Range{Unit: logdb.Block, To: math.MaxUint32}},
		{"time", &Range{Unit: TimeRangeType, From: u64(100)}, &logdb.Range{Unit: logdb.Time, From: 100, To: math.MaxInt64}},
		{"time clamped", &Range{Unit: TimeRangeType, From: u64(math.MaxUint64), To: u64(math.MaxUint64)}, &logdb.Range{Unit: logdb.Time, From: math.MaxInt64, To: math.MaxInt64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertRange(tt.rng))
		})
	}
}

func TestRangeValidate(t *testing.T) {
	assert.NoError(t, (*Range)(nil).Validate())
	assert.NoError(t, (&Range{From: u64(1), To: u64(1)}).Validate())
	assert.Error(t, (&Range{From: u64(2), To: u64(1)}).Validate())
	assert.Error(t, (&Range{Unit: "epoch"}).Validate())
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, (*Options)(nil).Validate(10))
	assert.NoError(t, (&Options{Limit: u64(10)}).Validate(10))
	assert.EqualError(t, (&Options{Limit: u64(11)}).Validate(10), "options.limit exceeds the maximum allowed value of 10")
	assert.Error(t, (&Options{Offset: math.MaxUint64}).Validate(10))
}

func TestConvertEventFilter(t *testing.T) {
	addr := thor.BytesToAddress([]byte("addr"))
	topic := thor.BytesToBytes32([]byte("topic"))
	f := ConvertEventFilter(&EventFilter{
		CriteriaSet: []*EventCriteria{{Address: &addr, TopicSet: TopicSet{Topic2: &topic}}},
		Options:     &Options{Offset: 4, Limit: u64(5)},
		Order:       logdb.DESC,
	})
	assert.Nil(t, f.Range)
	assert.Equal(t, &logdb.Options{Offset: 4, Limit: 5}, f.Options)
	assert.Equal(t, logdb.DESC, f.Order)
	assert.Equal(t, []*logdb.EventCriteria{{Address: &addr, Topics: [5]*thor.Bytes32{nil, nil, &topic, nil, nil}}}, f.CriteriaSet)
}

func TestConvertEvent(t *testing.T) {
	topic0 := thor.BytesToBytes32([]byte("t0"))
	topic3 := thor.BytesToBytes32([]byte("t3"))
	ev := &logdb.Event{
		BlockNumber: 3,
		Index:       2,
		BlockTime:   1000,
		Address:     thor.BytesToAddress([]byte("addr")),
		Topics:      [5]*thor.Bytes32{&topic0, nil, nil, &topic3},
		Data:        []byte{0x01, 0x02},
	}

	fe := ConvertEvent(ev, false)
	assert.Equal(t, []*thor.Bytes32{&topic0, &topic3}, fe.Topics)
	assert.Equal(t, "0x0102", fe.Data)
	assert.Nil(t, fe.Meta.LogIndex)

	fe = ConvertEvent(ev, true)
	assert.Equal(t, uint32(2), *fe.Meta.LogIndex)
	assert.Equal(t, uint64(1000), fe.Meta.BlockTimestamp)
}

func TestAmount(t *testing.T) {
	assert.Equal(t, 0, BigInt(nil).Sign())
	assert.Equal(t, big.NewInt(12), BigInt(Amount(big.NewInt(12))))
}
