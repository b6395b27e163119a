// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"github.com/vechain/veescrow/chain"
	"github.com/vechain/veescrow/thor"
)

// Block is a json format block header.
type Block struct {
	Number      uint32       `json:"number"`
	ID          thor.Bytes32 `json:"id"`
	Timestamp   uint64       `json:"timestamp"`
	ChangesHash thor.Bytes32 `json:"changesHash"`
	IsBest      bool         `json:"isBest"`
}

// ConvertBlock converts a raw header into a json format block.
func ConvertBlock(h *chain.Header, best *chain.Header) *Block {
	return &Block{
		Number:      h.Number,
		ID:          h.ID(),
		Timestamp:   h.Timestamp,
		ChangesHash: h.ChangesHash,
		IsBest:      h.Number == best.Number,
	}
}
