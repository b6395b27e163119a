// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package asset

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/lvldb"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

func TestNative(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	alice := thor.BytesToAddress([]byte("alice"))
	bob := thor.BytesToAddress([]byte("bob"))
	pool := thor.BytesToAddress([]byte("pool"))
	blk := &xenv.BlockContext{Number: 1, Time: 10}

	require.NoError(t, st.SetBalance(alice, big.NewInt(100)))
	native := NewNative(st)
	assert.True(t, native.Address().IsZero())

	env := xenv.New(alice, st, blk)
	require.NoError(t, native.Transfer(env, bob, big.NewInt(30)))

	bal, err := native.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(70), bal.Int64())
	bal, err = native.BalanceOf(bob)
	require.NoError(t, err)
	assert.Equal(t, int64(30), bal.Int64())

	err = native.Transfer(env, bob, big.NewInt(71))
	assert.True(t, reverts.Is(err, reverts.InvariantViolation))

	// a contract called by alice may pull from her
	require.NoError(t, native.TransferFrom(env.WithCaller(pool), alice, pool, big.NewInt(20)))
	bal, err = native.BalanceOf(pool)
	require.NoError(t, err)
	assert.Equal(t, int64(20), bal.Int64())

	// but not from bob
	err = native.TransferFrom(env.WithCaller(pool), bob, pool, big.NewInt(1))
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	// zero amounts are not recorded
	require.NoError(t, native.Transfer(env, bob, new(big.Int)))
	require.Len(t, env.Transfers(), 2)
	assert.Equal(t, pool, env.Transfers()[1].Recipient)
	assert.Equal(t, alice, env.Transfers()[1].Sender)
}
