// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/veescrow/runtime"
)

// miner seals the pending block of the runtime at a fixed interval.
type miner struct {
	rt       *runtime.Runtime
	interval time.Duration
}

func newMiner(rt *runtime.Runtime, interval time.Duration) *miner {
	return &miner{rt: rt, interval: interval}
}

// Run blocks until ctx is done. It fails only when a block can not be sealed.
func (m *miner) Run(ctx context.Context) error {
	logger.Info("mining started", "interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			header, err := m.rt.Mine()
			if header == nil {
				return errors.Wrap(err, "seal block")
			}
			if err != nil {
				// the header and state are in, only the records are missing
				logger.Warn("block sealed without its logs", "number", header.Number, "err", err)
				continue
			}
			logger.Info("sealed block", "number", header.Number, "id", header.ID(), "time", header.Timestamp)
		}
	}
}
