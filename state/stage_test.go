// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/thor"
)

func TestStage(t *testing.T) {
	stater := newStater(t)
	st := stater.NewState()

	addr := thor.BytesToAddress([]byte("acc1"))
	balance := big.NewInt(10)
	storage := map[thor.Bytes32]thor.Bytes32{
		thor.Blake2b([]byte("s1")): thor.BytesToBytes32([]byte("v1")),
		thor.Blake2b([]byte("s2")): thor.BytesToBytes32([]byte("v2")),
		thor.Blake2b([]byte("s3")): thor.BytesToBytes32([]byte("v3")),
	}

	require.NoError(t, st.SetBalance(addr, big.NewInt(5)))
	require.NoError(t, st.SetBalance(addr, balance))
	for k, v := range storage {
		st.SetStorage(addr, k, v)
	}

	stage, err := st.Stage()
	require.NoError(t, err)
	assert.Equal(t, 4, stage.Len())

	// the digest only depends on the final values
	st2 := stater.NewState()
	for k, v := range storage {
		st2.SetStorage(addr, k, v)
	}
	require.NoError(t, st2.SetBalance(addr, balance))
	stage2, err := st2.Stage()
	require.NoError(t, err)
	assert.Equal(t, stage.Hash(), stage2.Hash())

	require.NoError(t, stage.Commit(stater.Store().Bulk()))

	fresh := stater.NewState()
	got, err := fresh.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, balance, got)
	for k, v := range storage {
		got, err := fresh.GetStorage(addr, k)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	// uncached read straight from the store
	got, err = New(stater.Store()).GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, balance, got)

	// zeroing deletes
	require.NoError(t, fresh.SetBalance(addr, big.NewInt(0)))
	stage, err = fresh.Stage()
	require.NoError(t, err)
	require.NoError(t, stage.Commit(stater.Store().Bulk()))
	has, err := stater.Store().Has(append([]byte(accountBucket), addr[:]...))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCacheStats(t *testing.T) {
	c := newCache(1)
	c.Set([]byte("k"), []byte("v"))

	v, ok := c.Get([]byte("k"))
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
	_, ok = c.Get([]byte("missing"))
	assert.False(t, ok)

	changed, hit, miss := c.stats.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	var nilCache *rawCache
	_, ok = nilCache.Get([]byte("k"))
	assert.False(t, ok)
	nilCache.Set([]byte("k"), nil)
}
