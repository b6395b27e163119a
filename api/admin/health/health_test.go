// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/test/apitest"
	"github.com/vechain/veescrow/test/testchain"
)

func TestHealth(t *testing.T) {
	tc, err := testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(tc.Close)
	require.NoError(t, tc.Advance(10))
	best := tc.BestHeader()

	h := New(tc.Repo(), 10*time.Second)
	router := mux.NewRouter()
	h.Mount(router, "/admin/health")
	ts := apitest.NewServer(t, router)

	h.now = func() time.Time { return time.Unix(int64(best.Timestamp)+12, 0) }
	body, status := ts.Get(t, "/admin/health")
	assert.Equal(t, http.StatusOK, status)
	var st Status
	require.NoError(t, json.Unmarshal(body, &st))
	assert.True(t, st.Healthy)
	assert.Equal(t, uint64(12), st.Lag)
	assert.Equal(t, best.Number, st.BestBlock.Number)
	assert.Equal(t, best.ID(), st.BestBlock.ID)

	h.now = func() time.Time { return time.Unix(int64(best.Timestamp)+16, 0) }
	body, status = ts.Get(t, "/admin/health")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	require.NoError(t, json.Unmarshal(body, &st))
	assert.False(t, st.Healthy)

	// a clock behind the chain is no lag
	h.now = func() time.Time { return time.Unix(int64(best.Timestamp)-100, 0) }
	assert.Equal(t, uint64(0), h.Status().Lag)
}
