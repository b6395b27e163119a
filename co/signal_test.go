// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/veescrow/co"
)

func TestSignalBroadcastBeforeWait(t *testing.T) {
	var sig co.Signal
	sig.Broadcast()

	var ws []co.Waiter
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}

	var n int
	for _, w := range ws {
		select {
		case <-w.C():
		default:
			n++
		}
	}
	assert.Equal(t, 10, n, "waiters created after a broadcast are not released by it")
}

func TestSignalBroadcastAfterWait(t *testing.T) {
	var sig co.Signal

	var ws []co.Waiter
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}
	sig.Broadcast()

	for _, w := range ws {
		select {
		case <-w.C():
		case <-time.After(time.Second):
			t.Fatal("waiter not released")
		}
	}
}

func TestGoes(t *testing.T) {
	var (
		goes co.Goes
		sig  co.Signal
		n    = make(chan int, 3)
	)
	w := sig.NewWaiter()
	for i := range 3 {
		ch := w.C()
		goes.Go(func() {
			<-ch
			n <- i
		})
	}
	sig.Broadcast()

	select {
	case <-goes.Done():
	case <-time.After(time.Second):
		t.Fatal("goes not done")
	}
	goes.Wait()
	assert.Len(t, n, 3)
}
