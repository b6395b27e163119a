// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/veescrow/thor"
)

// Header is a sealed block of the runtime.
type Header struct {
	Number      uint32
	Timestamp   uint64
	ChangesHash thor.Bytes32 // digest of the state writes sealed by this block
}

// ID returns blake2b of the encoded header, prefixed by the number.
func (h *Header) ID() thor.Bytes32 {
	data, _ := rlp.EncodeToBytes(h)
	id := thor.Blake2b(data)
	binary.BigEndian.PutUint32(id[:], h.Number)
	return id
}

func (h *Header) String() string {
	return fmt.Sprintf("Header(%v #%v @%v)", h.ID(), h.Number, h.Timestamp)
}

func numberKey(n uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	return b[:]
}
