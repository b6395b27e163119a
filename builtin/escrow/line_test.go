// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/veescrow/thor"
)

func TestNewLine(t *testing.T) {
	now := startTime
	end := now + 8*thor.Week
	l := NewLine(ethers(1000), now, end)

	assert.Equal(t, new(big.Int).Quo(ethers(1000), new(big.Int).SetUint64(8*thor.Week)), l.Slope)
	assert.True(t, l.Bias.Cmp(ethers(1000)) <= 0)
	assert.Equal(t, 0, l.ValueAt(now, end).Sign())
	assert.Equal(t, 0, l.ValueAt(now, end+thor.Week).Sign())
	assert.Equal(t, l.Bias, l.ValueAt(now, now-1), "times before the origin evaluate at the origin")

	assert.Equal(t, 0, NewLine(ethers(1), now, now).Bias.Sign())
	assert.Equal(t, 0, NewLine(new(big.Int), now, end).Slope.Sign())
}

func TestLineProperties(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 500 {
		var (
			amount   uint64
			now      uint32
			duration uint32
			probe1   uint32
			probe2   uint32
		)
		f.Fuzz(&amount)
		f.Fuzz(&now)
		f.Fuzz(&duration)
		f.Fuzz(&probe1)
		f.Fuzz(&probe2)

		dt := uint64(duration)%MaxLockTime + 1
		end := uint64(now) + dt
		l := NewLine(new(big.Int).SetUint64(amount), uint64(now), end)

		// bias never exceeds the amount and loses less than one unit per second
		lost := new(big.Int).Sub(new(big.Int).SetUint64(amount), l.Bias)
		if lost.Sign() < 0 || lost.Cmp(new(big.Int).SetUint64(dt)) >= 0 {
			t.Fatalf("bad bias for amount %d over %d: %s", amount, dt, spew.Sdump(l))
		}
		if l.ValueAt(uint64(now), end).Sign() != 0 {
			t.Fatalf("line not zero at end: %s", spew.Sdump(l))
		}

		t1 := uint64(now) + uint64(probe1)%(dt+thor.Week)
		t2 := t1 + uint64(probe2)%(dt+thor.Week)
		if l.ValueAt(uint64(now), t2).Cmp(l.ValueAt(uint64(now), t1)) > 0 {
			t.Fatalf("line grows between %d and %d: %s", t1, t2, spew.Sdump(l))
		}
	}
}
