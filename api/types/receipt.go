// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

// Amount wraps v for json marshal, nil stays nil.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	a := math.HexOrDecimal256(*v)
	return &a
}

// BigInt unwraps a json amount, nil meaning zero.
func BigInt(a *math.HexOrDecimal256) *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return (*big.Int)(a)
}

// Event is an event emitted by a call.
type Event struct {
	Address thor.Address   `json:"address"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    string         `json:"data"`
}

// Transfer is an asset movement made by a call.
type Transfer struct {
	Asset     thor.Address          `json:"asset"`
	Sender    thor.Address          `json:"sender"`
	Recipient thor.Address          `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

// Receipt is the outcome of a call executed in the pending block.
type Receipt struct {
	Block     uint32       `json:"block"`
	Timestamp uint64       `json:"timestamp"`
	Origin    thor.Address `json:"origin"`
	Result    any          `json:"result,omitempty"`
	Events    []*Event     `json:"events"`
	Transfers []*Transfer  `json:"transfers"`
}

func convertEvent(ev *xenv.Event) *Event {
	return &Event{
		Address: ev.Address,
		Topics:  append([]thor.Bytes32{}, ev.Topics...),
		Data:    hexutil.Encode(ev.Data),
	}
}

func convertTransfer(tr *xenv.Transfer) *Transfer {
	return &Transfer{
		Asset:     tr.Asset,
		Sender:    tr.Sender,
		Recipient: tr.Recipient,
		Amount:    Amount(tr.Amount),
	}
}

// ConvertReceipt converts the output of a call into a json format receipt.
func ConvertReceipt(out *runtime.Output, result any) *Receipt {
	r := &Receipt{
		Block:     out.Block.Number,
		Timestamp: out.Block.Time,
		Origin:    out.Origin,
		Result:    result,
		Events:    make([]*Event, 0, len(out.Events)),
		Transfers: make([]*Transfer, 0, len(out.Transfers)),
	}
	for _, ev := range out.Events {
		r.Events = append(r.Events, convertEvent(ev))
	}
	for _, tr := range out.Transfers {
		r.Transfers = append(r.Transfers, convertTransfer(tr))
	}
	return r
}
