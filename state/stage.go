// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/veescrow/kv"
	"github.com/vechain/veescrow/thor"
)

type change struct {
	key, val []byte
}

// Stage abstracts pending writes of a state, ordered by key.
type Stage struct {
	changes []change
	cache   *rawCache
}

func newStage(m map[string][]byte, c *rawCache) *Stage {
	changes := make([]change, 0, len(m))
	for k, v := range m {
		changes = append(changes, change{[]byte(k), v})
	}
	slices.SortFunc(changes, func(a, b change) int {
		return slices.Compare(a.key, b.key)
	})
	return &Stage{changes, c}
}

// Len returns count of changed keys.
func (s *Stage) Len() int { return len(s.changes) }

// Hash computes the digest of all changes.
func (s *Stage) Hash() thor.Bytes32 {
	hasher := thor.NewBlake2b()
	var lenBuf [binary.MaxVarintLen64]byte
	for _, c := range s.changes {
		hasher.Write(lenBuf[:binary.PutUvarint(lenBuf[:], uint64(len(c.key)))])
		hasher.Write(c.key)
		hasher.Write(lenBuf[:binary.PutUvarint(lenBuf[:], uint64(len(c.val)))])
		hasher.Write(c.val)
	}
	var h thor.Bytes32
	hasher.Sum(h[:0])
	return h
}

// Commit puts all changes into bulk and writes it.
// Extra ops already queued in bulk are written in the same batch.
func (s *Stage) Commit(bulk kv.Bulk) error {
	for _, c := range s.changes {
		var err error
		if len(c.val) == 0 {
			err = bulk.Delete(c.key)
		} else {
			err = bulk.Put(c.key, c.val)
		}
		if err != nil {
			return errors.Wrap(err, "stage")
		}
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "commit state")
	}
	for _, c := range s.changes {
		s.cache.Set(c.key, c.val)
	}
	metricCommitEntries().Observe(int64(len(s.changes)))
	return nil
}
