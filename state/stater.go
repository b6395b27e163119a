// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/vechain/veescrow/kv"

// Stater is the state creator. States made by one stater share a raw value cache.
type Stater struct {
	db    kv.Store
	cache *rawCache
}

// NewStater create a new stater. cacheSizeMB 0 disables the cache.
func NewStater(db kv.Store, cacheSizeMB int) *Stater {
	var c *rawCache
	if cacheSizeMB > 0 {
		c = newCache(cacheSizeMB)
	}
	return &Stater{db, c}
}

// NewState create a new state object over the latest committed data.
func (s *Stater) NewState() *State {
	return newState(s.db, s.cache)
}

// Store returns the underlying store.
func (s *Stater) Store() kv.Store { return s.db }
