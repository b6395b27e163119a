// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/test/testchain"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

func TestReadLedgerStats(t *testing.T) {
	tc, err := testchain.NewDefault()
	require.NoError(t, err)
	defer tc.Close()

	stats, err := readLedgerStats(tc.Runtime())
	require.NoError(t, err)
	assert.Zero(t, stats.votingPower.Sign())
	for _, name := range []string{builtin.FeeName, builtin.PenaltyName} {
		assert.Equal(t, uint64(1), stats.behind[name], name)
		assert.Zero(t, stats.balances[name].Sign(), name)
	}

	user := tc.Accounts()[2].Address
	amount := new(big.Int).Mul(big.NewInt(1000), thor.Ether)
	fee := new(big.Int).Mul(big.NewInt(3), thor.Ether)
	_, err = tc.Exec(user, func(env *xenv.Environment, c *builtin.Contracts) error {
		if err := c.Token.Approve(env, c.Escrow.Address(), amount); err != nil {
			return err
		}
		if err := c.Escrow.CreateLock(env, amount, env.Now()+52*thor.Week); err != nil {
			return err
		}
		return c.Native.Transfer(env, c.Fee.Address(), fee)
	})
	require.NoError(t, err)
	require.NoError(t, tc.Advance(3*thor.Week))

	stats, err = readLedgerStats(tc.Runtime())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.votingPower.Sign())
	assert.Equal(t, fee, stats.balances[builtin.FeeName])
	assert.Equal(t, uint64(4), stats.behind[builtin.FeeName])
	assert.Equal(t, int64(3), wholeUnits(stats.balances[builtin.FeeName]))
}

func TestWatchLedger(t *testing.T) {
	tc, err := testchain.NewDefault()
	require.NoError(t, err)
	defer tc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchLedger(ctx, tc.Runtime())
	}()

	for range 3 {
		_, err := tc.Mine()
		require.NoError(t, err)
	}
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
