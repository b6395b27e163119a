// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"math/big"

	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/builtin/distributor"
	"github.com/vechain/veescrow/metrics"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

var (
	metricVotingPower        = metrics.LazyLoadGauge("escrow_voting_power")                           // whole tokens
	metricDistributorBalance = metrics.LazyLoadGaugeVec("distributor_balance", []string{"name"})      // whole units
	metricWeeksBehind        = metrics.LazyLoadGaugeVec("distributor_weeks_behind", []string{"name"}) // unrecorded supply weeks
)

// ledgerStats is what the watcher reports after each sealed block.
type ledgerStats struct {
	votingPower *big.Int
	balances    map[string]*big.Int
	behind      map[string]uint64
}

func readLedgerStats(rt *runtime.Runtime) (*ledgerStats, error) {
	stats := &ledgerStats{
		balances: make(map[string]*big.Int),
		behind:   make(map[string]uint64),
	}
	err := rt.View(thor.Address{}, func(env *xenv.Environment, c *builtin.Contracts) (err error) {
		if stats.votingPower, err = c.Escrow.TotalSupplyNow(env); err != nil {
			return err
		}
		for _, name := range []string{builtin.FeeName, builtin.PenaltyName} {
			d, _ := c.Distributor(name)
			if stats.balances[name], err = d.Reward().BalanceOf(d.Address()); err != nil {
				return err
			}
			var cursor uint64
			if cursor, err = d.TimeCursor(); err != nil {
				return err
			}
			if week := thor.FloorWeek(env.Now()); cursor <= week {
				stats.behind[name] = (week-cursor)/thor.Week + 1
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func wholeUnits(v *big.Int) int64 {
	return new(big.Int).Quo(v, thor.Ether).Int64()
}

// watchLedger refreshes the ledger gauges whenever a block is sealed, until ctx is done.
func watchLedger(ctx context.Context, rt *runtime.Runtime) error {
	ticker := rt.Repo().NewTicker()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			stats, err := readLedgerStats(rt)
			if err != nil {
				return err
			}
			metricVotingPower().Set(wholeUnits(stats.votingPower))
			for name, bal := range stats.balances {
				labels := map[string]string{"name": name}
				metricDistributorBalance().SetWithLabel(wholeUnits(bal), labels)
				metricWeeksBehind().SetWithLabel(int64(stats.behind[name]), labels)
				if stats.behind[name] > distributor.MaxSupplyWeeks {
					logger.Warn("distributor supply records lag, run catchup", "name", name, "weeks", stats.behind[name])
				}
			}
		}
	}
}
