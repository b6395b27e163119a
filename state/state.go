// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/veescrow/kv"
	"github.com/vechain/veescrow/stackedmap"
	"github.com/vechain/veescrow/thor"
)

var (
	accountBucket = kv.Bucket("a")
	storageBucket = kv.Bucket("s")
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

type (
	accountKey thor.Address
	storageKey struct {
		addr thor.Address
		key  thor.Bytes32
	}
)

// State manages balances and storage on top of the committed kv data.
type State struct {
	db    kv.Getter
	cache *rawCache
	sm    *stackedmap.StackedMap[any, any] // keeps revisions of accounts and storage
}

// New creates a state reading committed values from db.
func New(db kv.Getter) *State {
	return newState(db, nil)
}

func newState(db kv.Getter, c *rawCache) *State {
	s := &State{db: db, cache: c}
	s.sm = stackedmap.New(s.load)
	s.sm.Push()
	return s
}

// load implements stackedmap.MapGetter.
func (s *State) load(key any) (any, bool, error) {
	switch k := key.(type) {
	case accountKey:
		data, err := s.loadRaw("account", accountBucket, k[:])
		if err != nil {
			return nil, false, err
		}
		acc, err := decodeAccount(data)
		if err != nil {
			return nil, false, err
		}
		return acc, true, nil
	case storageKey:
		data, err := s.loadRaw("storage", storageBucket, storageDBKey(k.addr, k.key))
		if err != nil {
			return nil, false, err
		}
		return rlp.RawValue(data), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) loadRaw(typ string, b kv.Bucket, key []byte) ([]byte, error) {
	full := append([]byte(b), key...)
	if v, ok := s.cache.Get(full); ok {
		metricStateLoad().AddWithLabel(1, map[string]string{"type": typ, "source": "cache"})
		return v, nil
	}
	metricStateLoad().AddWithLabel(1, map[string]string{"type": typ, "source": "db"})

	v, err := b.NewGetter(s.db).Get(key)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, err
		}
		v = nil
	}
	s.cache.Set(full, v)
	return v, nil
}

func storageDBKey(addr thor.Address, key thor.Bytes32) []byte {
	return append(addr[:], key[:]...)
}

func (s *State) getAccount(addr thor.Address) (*Account, error) {
	v, _, err := s.sm.Get(accountKey(addr))
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr thor.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return new(big.Int).Set(acc.Balance), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr thor.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance for %v", addr)}
	}
	s.sm.Put(accountKey(addr), &Account{Balance: new(big.Int).Set(balance)})
	return nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw. Empty raw deletes the slot.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Stage collects the latest value of every key changed since creation.
func (s *State) Stage() (*Stage, error) {
	changes := make(map[string][]byte)

	var jerr error
	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case accountKey:
			data, err := encodeAccount(v.(*Account))
			if err != nil {
				jerr = err
				return false
			}
			changes[string(append([]byte(accountBucket), key[:]...))] = data
		case storageKey:
			changes[string(append([]byte(storageBucket), storageDBKey(key.addr, key.key)...))] = v.(rlp.RawValue)
		}
		return true
	})
	if jerr != nil {
		return nil, &Error{jerr}
	}
	return newStage(changes, s.cache), nil
}
