// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/veescrow/logdb"
	"github.com/vechain/veescrow/thor"
)

type LogMeta struct {
	BlockNumber    uint32       `json:"blockNumber"`
	BlockTimestamp uint64       `json:"blockTimestamp"`
	Origin         thor.Address `json:"origin"`
	LogIndex       *uint32      `json:"logIndex,omitempty"`
}

func newLogMeta(blockNumber, index uint32, blockTime uint64, origin thor.Address, addIndexes bool) LogMeta {
	meta := LogMeta{
		BlockNumber:    blockNumber,
		BlockTimestamp: blockTime,
		Origin:         origin,
	}
	if addIndexes {
		meta.LogIndex = &index
	}
	return meta
}

// FilteredEvent only comes from one contract
type FilteredEvent struct {
	Address thor.Address    `json:"address"`
	Topics  []*thor.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
	Meta    LogMeta         `json:"meta"`
}

// ConvertEvent converts a logdb.Event into a json format event.
func ConvertEvent(event *logdb.Event, addIndexes bool) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Data:    hexutil.Encode(event.Data),
		Meta:    newLogMeta(event.BlockNumber, event.Index, event.BlockTime, event.Origin, addIndexes),
	}

	fe.Topics = make([]*thor.Bytes32, 0)
	for i := range 5 {
		if event.Topics[i] != nil {
			fe.Topics = append(fe.Topics, event.Topics[i])
		}
	}
	return fe
}

type FilteredTransfer struct {
	Asset     thor.Address           `json:"asset"`
	Sender    thor.Address           `json:"sender"`
	Recipient thor.Address           `json:"recipient"`
	Amount    *gmath.HexOrDecimal256 `json:"amount"`
	Meta      LogMeta                `json:"meta"`
}

// ConvertTransfer converts a logdb.Transfer into a json format transfer.
func ConvertTransfer(transfer *logdb.Transfer, addIndexes bool) *FilteredTransfer {
	return &FilteredTransfer{
		Asset:     transfer.Asset,
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    Amount(transfer.Amount),
		Meta:      newLogMeta(transfer.BlockNumber, transfer.Index, transfer.BlockTime, transfer.Origin, addIndexes),
	}
}

type TopicSet struct {
	Topic0 *thor.Bytes32 `json:"topic0"`
	Topic1 *thor.Bytes32 `json:"topic1"`
	Topic2 *thor.Bytes32 `json:"topic2"`
	Topic3 *thor.Bytes32 `json:"topic3"`
	Topic4 *thor.Bytes32 `json:"topic4"`
}

type EventCriteria struct {
	Address *thor.Address `json:"address"`
	TopicSet
}

type Options struct {
	Offset         uint64  `json:"offset,omitempty"`
	Limit          *uint64 `json:"limit,omitempty"`
	IncludeIndexes bool    `json:"includeIndexes,omitempty"`
}

func (o *Options) Validate(limit uint64) error {
	if o == nil {
		return nil
	}
	if o.Limit != nil && *o.Limit > limit {
		return fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
	}
	if o.Offset > math.MaxInt64 {
		return fmt.Errorf("options.offset exceeds the maximum allowed value of %d", math.MaxInt64)
	}
	return nil
}

type RangeType string

const (
	BlockRangeType RangeType = "block"
	TimeRangeType  RangeType = "time"
)

type Range struct {
	Unit RangeType `json:"unit,omitempty"`
	From *uint64   `json:"from,omitempty"`
	To   *uint64   `json:"to,omitempty"`
}

func (r *Range) Validate() error {
	if r == nil {
		return nil
	}
	if r.Unit != "" {
		if r.Unit != BlockRangeType && r.Unit != TimeRangeType {
			return fmt.Errorf("filter.Range.Unit must be either 'block' or 'time', got '%s'", r.Unit)
		}
	}

	if r.From == nil || r.To == nil {
		return nil
	}
	if *r.From > *r.To {
		return fmt.Errorf("filter.Range.To must be greater than or equal to filter.Range.From")
	}
	return nil
}

// ConvertRange converts a validated range. Open ends run to the first and the
// last block.
func ConvertRange(r *Range) *logdb.Range {
	if r == nil {
		return nil
	}
	rng := &logdb.Range{Unit: logdb.Block, To: math.MaxUint32}
	if r.Unit == TimeRangeType {
		rng.Unit = logdb.Time
		rng.To = math.MaxInt64
	}
	if r.From != nil {
		rng.From = min(*r.From, rng.To)
	}
	if r.To != nil {
		rng.To = min(*r.To, rng.To)
	}
	return rng
}

func convertOptions(o *Options) *logdb.Options {
	opts := &logdb.Options{Offset: o.Offset}
	// validated or default value set at the API level
	if o.Limit != nil {
		opts.Limit = *o.Limit
	}
	return opts
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet,omitempty"`
	Range       *Range           `json:"range,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Order       logdb.Order      `json:"order,omitempty"`
}

func ConvertEventFilter(filter *EventFilter) *logdb.EventFilter {
	f := &logdb.EventFilter{
		Range:   ConvertRange(filter.Range),
		Options: convertOptions(filter.Options),
		Order:   filter.Order,
	}
	if len(filter.CriteriaSet) > 0 {
		f.CriteriaSet = make([]*logdb.EventCriteria, len(filter.CriteriaSet))
		for i, criterion := range filter.CriteriaSet {
			f.CriteriaSet[i] = &logdb.EventCriteria{
				Address: criterion.Address,
				Topics: [5]*thor.Bytes32{
					criterion.Topic0,
					criterion.Topic1,
					criterion.Topic2,
					criterion.Topic3,
					criterion.Topic4,
				},
			}
		}
	}
	return f
}

type TransferCriteria struct {
	Origin    *thor.Address `json:"origin"`
	Asset     *thor.Address `json:"asset"`
	Sender    *thor.Address `json:"sender"`
	Recipient *thor.Address `json:"recipient"`
}

type TransferFilter struct {
	CriteriaSet []*TransferCriteria `json:"criteriaSet,omitempty"`
	Range       *Range              `json:"range,omitempty"`
	Options     *Options            `json:"options,omitempty"`
	Order       logdb.Order         `json:"order,omitempty"`
}

func ConvertTransferFilter(filter *TransferFilter) *logdb.TransferFilter {
	f := &logdb.TransferFilter{
		Range:   ConvertRange(filter.Range),
		Options: convertOptions(filter.Options),
		Order:   filter.Order,
	}
	if len(filter.CriteriaSet) > 0 {
		f.CriteriaSet = make([]*logdb.TransferCriteria, len(filter.CriteriaSet))
		for i, criterion := range filter.CriteriaSet {
			f.CriteriaSet[i] = &logdb.TransferCriteria{
				Origin:    criterion.Origin,
				Asset:     criterion.Asset,
				Sender:    criterion.Sender,
				Recipient: criterion.Recipient,
			}
		}
	}
	return f
}
