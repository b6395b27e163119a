// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

func catchupAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	_, closeLogs, err := initLogger(ctx)
	if err != nil {
		return err
	}
	defer closeLogs()

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	ledger, err := openLedger(ctx, gene, true)
	if err != nil {
		return err
	}
	defer ledger.Close()

	return catchup(exitSignal, ledger.rt, ctx.Uint64(maxCallsFlag.Name), os.Stdout)
}

// weeksBehind counts the weeks, the current one included, whose supply the
// named distributor has not recorded yet.
func weeksBehind(rt *runtime.Runtime, name string) (uint64, error) {
	var behind uint64
	err := rt.View(thor.Address{}, func(env *xenv.Environment, c *builtin.Contracts) error {
		d, ok := c.Distributor(name)
		if !ok {
			return errors.Errorf("distributor %v not found", name)
		}
		cursor, err := d.TimeCursor()
		if err != nil {
			return err
		}
		if week := thor.FloorWeek(env.Now()); cursor <= week {
			behind = (week-cursor)/thor.Week + 1
		}
		return nil
	})
	return behind, err
}

// catchup repeats the permissionless supply checkpoint of every distributor
// until its cursor passes the current week, then seals the block.
func catchup(ctx context.Context, rt *runtime.Runtime, maxCalls uint64, out io.Writer) error {
	names := []string{builtin.FeeName, builtin.PenaltyName}

	var total uint64
	for _, name := range names {
		behind, err := weeksBehind(rt, name)
		if err != nil {
			return err
		}
		total += behind
	}
	if total == 0 {
		logger.Info("distributors up to date")
		return nil
	}

	bar := pb.New64(int64(total)).SetMaxWidth(90)
	bar.Output = out
	bar.Start()
	defer bar.Finish()

	var calls uint64
	for _, name := range names {
		for {
			behind, err := weeksBehind(rt, name)
			if err != nil {
				return err
			}
			if behind == 0 {
				break
			}
			if calls >= maxCalls {
				return errors.Errorf("gave up after %v calls, %v weeks left", calls, behind)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if _, err := rt.Exec(thor.Address{}, func(env *xenv.Environment, c *builtin.Contracts) error {
				d, _ := c.Distributor(name)
				return d.CheckpointTotalSupply(env)
			}); err != nil {
				return errors.WithMessagef(err, "checkpoint %v", name)
			}
			calls++

			after, err := weeksBehind(rt, name)
			if err != nil {
				return err
			}
			bar.Add64(int64(behind - after))
		}
	}

	header, err := rt.Mine()
	if err != nil {
		return err
	}
	logger.Info("distributors caught up", "calls", calls, "block", header.Number)
	return nil
}
