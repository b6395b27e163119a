// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/veescrow/api"
	"github.com/vechain/veescrow/api/node"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "cmd")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "veescrow",
		Usage:     "Vote-escrow ledger with weekly fee and penalty distributors",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			persistFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			blockIntervalFlag,
			verbosityFlag,
			jsonLogsFlag,
			logDirFlag,
			pprofFlag,
			skipLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "catchup",
				Usage: "bring the distributors' weekly supply records up to the current week",
				Flags: []cli.Flag{
					genesisFlag,
					dataDirFlag,
					cacheFlag,
					maxCallsFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: catchupAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel, closeLogs, err := initLogger(ctx)
	if err != nil {
		return err
	}
	defer closeLogs()

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	interval := time.Duration(ctx.Uint64(blockIntervalFlag.Name)) * time.Second
	if interval <= 0 {
		return fmt.Errorf("--%s must be positive", blockIntervalFlag.Name)
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	ledger, err := openLedger(ctx, gene, ctx.Bool(persistFlag.Name))
	if err != nil {
		return err
	}
	defer ledger.Close()

	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		logger.Info("metrics server started", "url", url)
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := api.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs, ledger.repo, interval)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		logger.Info("admin server started", "url", url)
	}

	genesisID := ledger.repo.GenesisHeader().ID()
	handler := api.New(ledger.rt, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		SkipLogs:             ctx.Bool(skipLogsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		NodeInfo: node.Info{
			Version:       fullVersion(),
			GenesisID:     genesisID,
			BlockInterval: uint64(interval / time.Second),
		},
	})
	apiURL, stopAPI, err := startAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	printStartupMessage(gene, ledger, apiURL)

	g, gctx := errgroup.WithContext(exitSignal)
	g.Go(func() error {
		return newMiner(ledger.rt, interval).Run(gctx)
	})
	g.Go(func() error {
		return watchLedger(gctx, ledger.rt)
	})
	return g.Wait()
}

func startAPIServer(addr string, handler http.Handler) (string, func(), error) {
	return serve(addr, "API", handler, "/")
}
