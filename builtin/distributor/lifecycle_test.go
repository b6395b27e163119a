// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

func TestKill(t *testing.T) {
	te := newTestEnv(t)
	NewSequence(te).
		CreateLock(alice, ethers(1000), startTime+8*thor.Week).
		SendFee(ethers(5)).
		Advance(thor.Week).
		CheckpointToken(te.fee).
		Run(t)

	err := te.call(alice, te.fee.Kill)
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	require.NoError(t, te.call(admin, te.fee.Kill))
	assert.Equal(t, ethers(5), te.nativeBalance(t, emergency))
	assert.Equal(t, 0, te.nativeBalance(t, feeAddr).Sign())
	killed, err := te.fee.IsKilled()
	require.NoError(t, err)
	assert.True(t, killed)

	_, err = te.claim(te.fee, alice)
	assert.True(t, reverts.Is(err, reverts.Killed))
	err = te.call(alice, func(env *xenv.Environment) error {
		_, err := te.fee.ClaimMany(env, []thor.Address{alice})
		return err
	})
	assert.True(t, reverts.Is(err, reverts.Killed))
	err = te.call(admin, func(env *xenv.Environment) error {
		return te.fee.Burn(env, ethers(1))
	})
	assert.True(t, reverts.Is(err, reverts.Killed))

	// killing again only forwards what arrived since
	NewSequence(te).SendFee(ethers(2)).Run(t)
	require.NoError(t, te.call(admin, te.fee.Kill))
	assert.Equal(t, ethers(7), te.nativeBalance(t, emergency))
	require.NoError(t, te.call(admin, te.fee.Kill))
	assert.Equal(t, ethers(7), te.nativeBalance(t, emergency))

	// still killed after a week
	te.advance(thor.Week)
	_, err = te.claim(te.fee, alice)
	assert.True(t, reverts.Is(err, reverts.Killed))
}

func TestSweep(t *testing.T) {
	te := newTestEnv(t)
	require.NoError(t, te.call(admin, func(env *xenv.Environment) error {
		return te.token.Transfer(env, feeAddr, ethers(3))
	}))

	err := te.call(alice, func(env *xenv.Environment) error {
		return te.fee.Sweep(env, te.token)
	})
	assert.True(t, reverts.Is(err, reverts.Unauthorized))
	assert.Equal(t, "!authorized", err.Error())

	err = te.call(admin, func(env *xenv.Environment) error {
		return te.fee.Sweep(env, te.native)
	})
	assert.True(t, reverts.Is(err, reverts.InvariantViolation))
	assert.Equal(t, "!rewardToken", err.Error())

	before := te.tokenBalance(t, admin)
	require.NoError(t, te.call(admin, func(env *xenv.Environment) error {
		return te.fee.Sweep(env, te.token)
	}))
	assert.Equal(t, ethers(3), new(big.Int).Sub(te.tokenBalance(t, admin), before))
	assert.Equal(t, 0, te.tokenBalance(t, feeAddr).Sign())

	err = te.call(admin, func(env *xenv.Environment) error {
		return te.penalty.Sweep(env, te.token)
	})
	assert.Equal(t, "!rewardToken", err.Error())
}

func TestDistributorOwnership(t *testing.T) {
	te := newTestEnv(t)

	err := te.call(admin, te.penalty.ApplyTransferOwnership)
	assert.Equal(t, "admin not set", err.Error())

	require.NoError(t, te.call(admin, func(env *xenv.Environment) error {
		return te.penalty.CommitTransferOwnership(env, alice)
	}))
	future, err := te.penalty.FutureAdmin()
	require.NoError(t, err)
	assert.Equal(t, alice, future)

	err = te.call(alice, te.penalty.ApplyTransferOwnership)
	assert.Equal(t, "admin only", err.Error())
	require.NoError(t, te.call(admin, te.penalty.ApplyTransferOwnership))

	// the new admin holds the privileged entry points
	require.NoError(t, te.call(alice, te.penalty.ToggleAllowCheckpointToken))
	err = te.call(admin, te.penalty.Kill)
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	// the fee distributor is unaffected
	ok, err := te.fee.IsAdmin(admin)
	require.NoError(t, err)
	assert.True(t, ok)
}
