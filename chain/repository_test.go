// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/kv"
	"github.com/vechain/veescrow/lvldb"
	"github.com/vechain/veescrow/thor"
)

func newTestRepo(t *testing.T) (*Repository, kv.Store) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db, &Header{Number: 0, Timestamp: 1000})
	require.NoError(t, err)
	return repo, db
}

func appendHeader(t *testing.T, repo *Repository, db kv.Store, ts uint64) *Header {
	h := &Header{Number: repo.BestHeader().Number + 1, Timestamp: ts, ChangesHash: thor.Blake2b([]byte{byte(ts)})}
	bulk := db.Bulk()
	require.NoError(t, repo.SaveHeader(bulk, h))
	require.NoError(t, bulk.Write())
	repo.SetBestHeader(h)
	return h
}

func TestRepository(t *testing.T) {
	repo, db := newTestRepo(t)
	assert.Equal(t, uint32(0), repo.BestHeader().Number)

	ch := repo.NewTicker().C()
	h1 := appendHeader(t, repo, db, 1010)
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("ticker not fired")
	}
	appendHeader(t, repo, db, 1020)

	got, err := repo.GetHeader(1)
	require.NoError(t, err)
	assert.Equal(t, h1.ID(), got.ID())

	_, err = repo.GetHeader(3)
	assert.True(t, repo.IsNotFound(err))

	assert.Error(t, repo.SaveHeader(db.Bulk(), &Header{Number: 5, Timestamp: 2000}), "gap")
	assert.Error(t, repo.SaveHeader(db.Bulk(), &Header{Number: 3, Timestamp: 1}), "time goes back")

	reopened, err := NewRepository(db, repo.GenesisHeader())
	require.NoError(t, err)
	assert.Equal(t, uint32(2), reopened.BestHeader().Number)

	_, err = NewRepository(db, &Header{Timestamp: 1})
	assert.EqualError(t, err, "genesis mismatch")
}

func TestNearestByTime(t *testing.T) {
	repo, db := newTestRepo(t)
	for _, ts := range []uint64{1010, 1020, 1020, 1050} {
		appendHeader(t, repo, db, ts)
	}

	tests := []struct {
		ts   uint64
		want uint32
	}{
		{0, 0},
		{1000, 0},
		{1015, 1},
		{1020, 3},
		{1049, 3},
		{1050, 4},
		{9999, 4},
	}
	for _, tt := range tests {
		h, err := repo.NearestByTime(tt.ts)
		require.NoError(t, err)
		assert.Equal(t, tt.want, h.Number, "ts %v", tt.ts)
	}
}
