// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math"

	"github.com/pkg/errors"
)

// sequence orders records: block number in the high bits, index within the block in the low 31 bits.
type sequence int64

const maxIndex = math.MaxInt32

func newSequence(blockNum uint32, index uint32) (sequence, error) {
	if index > maxIndex {
		return 0, errors.Errorf("index %v too large", index)
	}
	return (sequence(blockNum) << 31) | sequence(index), nil
}

// firstSequence and lastSequence bound all records of a block.
func firstSequence(blockNum uint32) sequence { return sequence(blockNum) << 31 }
func lastSequence(blockNum uint32) sequence  { return firstSequence(blockNum) | maxIndex }

func (s sequence) BlockNumber() uint32 {
	return uint32(s >> 31)
}

func (s sequence) Index() uint32 {
	return uint32(s & maxIndex)
}
