// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/veescrow/thor"
)

// Array is an append-only list, similar to a dynamic array in Solidity.
// The length lives at pos, element i at blake2b(i, pos).
type Array[V any] struct {
	length *Uint256
	items  *Mapping[Uint64Key, V]
}

func NewArray[V any](context *Context, pos thor.Bytes32) *Array[V] {
	return &Array[V]{
		length: NewUint256(context, pos),
		items:  NewMapping[Uint64Key, V](context, pos),
	}
}

// NewNestedArray derives a distinct array for each key, such as one history per user.
func NewNestedArray[K Key, V any](context *Context, pos thor.Bytes32, key K) *Array[V] {
	return NewArray[V](context, thor.Blake2b(key.Bytes(), pos.Bytes()))
}

func (a *Array[V]) Len() (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Get returns element i. Out of range indexes read as the zero value.
func (a *Array[V]) Get(i uint64) (V, error) {
	return a.items.Get(Uint64Key(i))
}

// Set overwrites element i, which must be in range.
func (a *Array[V]) Set(i uint64, value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if i >= n {
		return errors.Errorf("array index %d out of range %d", i, n)
	}
	return a.items.Set(Uint64Key(i), value)
}

// Push appends value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.items.Set(Uint64Key(n), value); err != nil {
		return 0, err
	}
	a.length.Set(new(big.Int).SetUint64(n + 1))
	return n, nil
}
