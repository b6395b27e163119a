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

func TestClaimSoleLocker(t *testing.T) {
	te := newTestEnv(t)
	NewSequence(te).
		CreateLock(alice, ethers(1000), startTime+8*thor.Week).
		SendFee(ethers(10)).
		Advance(thor.Week).
		CheckpointToken(te.fee).
		CheckpointTotalSupply(te.fee).
		Run(t)

	amount, err := te.claim(te.fee, alice)
	require.NoError(t, err)
	assert.Equal(t, ethers(10), amount)
	assert.Equal(t, ethers(10), te.nativeBalance(t, alice))

	// nothing more in the same week
	amount, err = te.claim(te.fee, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, amount.Sign())
	assert.Equal(t, ethers(10), te.nativeBalance(t, alice))

	balance, err := te.fee.TokenLastBalance()
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Sign())

	week, epoch, err := te.fee.UserCursor(alice)
	require.NoError(t, err)
	assert.Equal(t, startTime+thor.Week, week)
	assert.Equal(t, uint64(1), epoch)
}

func TestClaimEqualSplit(t *testing.T) {
	te := newTestEnv(t)
	NewSequence(te).
		CreateLock(alice, ethers(1000), startTime+8*thor.Week).
		CreateLock(bob, ethers(1000), startTime+8*thor.Week).
		Advance(thor.Day).
		SendFee(ethers(10)).
		Advance(thor.Week).
		CheckpointToken(te.fee).
		CheckpointTotalSupply(te.fee).
		Run(t)

	a, err := te.claim(te.fee, alice)
	require.NoError(t, err)
	b, err := te.claim(te.fee, bob)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	// the checkpoint interval spans two weeks, only the first one is claimable
	first, err := te.fee.TokensPerWeek(startTime)
	require.NoError(t, err)
	half := new(big.Int).Rsh(first, 1)
	assert.True(t, new(big.Int).Sub(half, a).CmpAbs(big.NewInt(1)) <= 0)
}

func TestClaimNoHistory(t *testing.T) {
	te := newTestEnv(t)
	NewSequence(te).
		CreateLock(alice, ethers(1000), startTime+8*thor.Week).
		SendFee(ethers(10)).
		Advance(thor.Week).
		CheckpointToken(te.fee).
		Run(t)

	amount, err := te.claim(te.fee, carol)
	require.NoError(t, err)
	assert.Equal(t, 0, amount.Sign())
}

// claimScenario locks for three users at different times and sends fees over several weeks.
func claimScenario(t *testing.T) *testEnv {
	te := newTestEnv(t)
	NewSequence(te).
		CreateLock(alice, ethers(1000), startTime+52*thor.Week).
		Advance(3*thor.Day).
		CreateLock(bob, ethers(300), startTime+20*thor.Week).
		Advance(thor.Week).
		CreateLock(carol, ethers(50), startTime+10*thor.Week).
		SendFee(ethers(7)).
		Advance(thor.Week).
		SendFee(ethers(11)).
		Advance(2 * thor.Week).
		CheckpointToken(te.fee).
		CheckpointTotalSupply(te.fee).
		Run(t)
	return te
}

func TestClaimManyEquivalence(t *testing.T) {
	single := claimScenario(t)
	batch := claimScenario(t)
	users := []thor.Address{alice, bob, carol}

	sum := new(big.Int)
	for _, u := range users {
		amount, err := single.claim(single.fee, u)
		require.NoError(t, err)
		assert.Equal(t, 1, amount.Sign())
		sum.Add(sum, amount)
	}

	var total *big.Int
	require.NoError(t, batch.call(alice, func(env *xenv.Environment) (err error) {
		total, err = batch.fee.ClaimMany(env, []thor.Address{carol, {}, alice, {}, bob})
		return
	}))
	assert.Equal(t, sum, total)

	for _, u := range users {
		assert.Equal(t, single.nativeBalance(t, u), batch.nativeBalance(t, u))
	}
	a, err := single.fee.TokenLastBalance()
	require.NoError(t, err)
	b, err := batch.fee.TokenLastBalance()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// too many slots
	err = batch.call(alice, func(env *xenv.Environment) error {
		_, err := batch.fee.ClaimMany(env, make([]thor.Address, MaxClaimMany+1))
		return err
	})
	assert.True(t, reverts.Is(err, reverts.InvariantViolation))
}

func TestClaimResumable(t *testing.T) {
	te := newTestEnv(t)
	NewSequence(te).
		CreateLock(alice, ethers(1000), startTime+100*thor.Week).
		CreateLock(bob, ethers(200), startTime+60*thor.Week).
		SendFee(ethers(60)).
		Advance(60 * thor.Week).
		CheckpointToken(te.fee).
		CheckpointTotalSupply(te.fee).
		CheckpointTotalSupply(te.fee).
		CheckpointTotalSupply(te.fee).
		CheckpointTotalSupply(te.fee).
		Run(t)

	cursor, err := te.fee.TimeCursor()
	require.NoError(t, err)
	require.Equal(t, startTime+61*thor.Week, cursor)

	for _, u := range []thor.Address{alice, bob} {
		// what an unbounded walk over the 60 weeks pays
		expected := new(big.Int)
		for w := range uint64(60) {
			ts := startTime + w*thor.Week
			bal, err := te.escrow.BalanceOf(u, ts)
			require.NoError(t, err)
			tokens, err := te.fee.TokensPerWeek(ts)
			require.NoError(t, err)
			supply, err := te.fee.VeSupply(ts)
			require.NoError(t, err)
			share := new(big.Int).Mul(bal, tokens)
			expected.Add(expected, share.Quo(share, supply))
		}

		paid := new(big.Int)
		calls := 0
		for {
			amount, err := te.claim(te.fee, u)
			require.NoError(t, err)
			if amount.Sign() == 0 {
				break
			}
			calls++
			paid.Add(paid, amount)
			require.Less(t, calls, 5)
		}
		assert.Equal(t, 2, calls, "60 weeks need two walks")
		assert.Equal(t, expected, paid)
	}
}

func TestClaimable(t *testing.T) {
	te := claimScenario(t)

	var claimable *big.Int
	require.NoError(t, te.call(bob, func(env *xenv.Environment) (err error) {
		claimable, err = te.fee.Claimable(env, bob)
		return
	}))
	week, _, err := te.fee.UserCursor(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), week, "claimable leaves the cursor untouched")
	assert.Equal(t, 0, te.nativeBalance(t, bob).Sign())

	amount, err := te.claim(te.fee, bob)
	require.NoError(t, err)
	assert.Equal(t, claimable, amount)
}

func TestRelockClaim(t *testing.T) {
	te := newTestEnv(t)
	NewSequence(te).
		CreateLock(alice, ethers(1000), startTime+10*thor.Week).
		SendPenalty(ethers(10)).
		Advance(thor.Week).
		CheckpointToken(te.penalty).
		CheckpointTotalSupply(te.penalty).
		Run(t)
	before := te.tokenBalance(t, alice)

	amount, err := te.claim(te.penalty, alice)
	require.NoError(t, err)
	assert.Equal(t, ethers(10), amount)

	lock, err := te.escrow.Locked(alice)
	require.NoError(t, err)
	assert.Equal(t, ethers(1010), lock.Amount)
	assert.Equal(t, before, te.tokenBalance(t, alice))
	assert.Equal(t, 0, te.tokenBalance(t, penaltyAddr).Sign())
	assert.Equal(t, ethers(1010), te.tokenBalance(t, escrowAddr))
}

func TestRelockWithoutActiveLock(t *testing.T) {
	te := newTestEnv(t)
	NewSequence(te).
		CreateLock(bob, ethers(100), startTime+2*thor.Week).
		SendPenalty(ethers(10)).
		Advance(thor.Week).
		CheckpointToken(te.penalty).
		Advance(thor.Week).
		CheckpointTotalSupply(te.penalty).
		Run(t)

	_, err := te.claim(te.penalty, bob)
	assert.True(t, reverts.Is(err, reverts.InvariantViolation))

	// the failed claim left everything in place
	week, _, err := te.penalty.UserCursor(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), week)
	assert.Equal(t, ethers(10), te.tokenBalance(t, penaltyAddr))
}
