// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vechain/veescrow/thor"
)

// Event is an indexed contract event.
type Event struct {
	BlockNumber uint32
	Index       uint32
	BlockTime   uint64
	Origin      thor.Address // signer of the call
	Address     thor.Address // emitting contract
	Topics      [5]*thor.Bytes32
	Data        []byte
}

// Transfer is an indexed asset movement.
type Transfer struct {
	BlockNumber uint32
	Index       uint32
	BlockTime   uint64
	Origin      thor.Address
	Asset       thor.Address // zero for the native asset
	Sender      thor.Address
	Recipient   thor.Address
	Amount      *big.Int
}

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is inclusive at both ends.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *thor.Address
	Topics  [5]*thor.Bytes32
}

type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

type TransferCriteria struct {
	Origin    *thor.Address
	Asset     *thor.Address
	Sender    *thor.Address
	Recipient *thor.Address
}

type TransferFilter struct {
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
