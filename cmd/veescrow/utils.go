// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/veescrow/api/utils/fpath"
	"github.com/vechain/veescrow/api/utils/rotatewriter"
	"github.com/vechain/veescrow/chain"
	"github.com/vechain/veescrow/co"
	"github.com/vechain/veescrow/genesis"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/logdb"
	"github.com/vechain/veescrow/lvldb"
	"github.com/vechain/veescrow/metrics"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/state"
)

// initLogger installs the root logger. The returned level can be changed at runtime.
func initLogger(ctx *cli.Context) (*slog.LevelVar, func(), error) {
	lvl := &slog.LevelVar{}
	lvl.Set(log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name))))

	var (
		output   io.Writer = os.Stderr
		useColor           = isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
		closer             = func() {}
	)
	if dir := ctx.String(logDirFlag.Name); dir != "" {
		w, err := rotatewriter.New(rotatewriter.WithDir(dir))
		if err != nil {
			return nil, nil, err
		}
		if err := w.Start(); err != nil {
			return nil, nil, err
		}
		output, useColor = w, false
		closer = func() { w.Close() }
	}

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(output, lvl)
	} else {
		handler = log.NewTerminalHandlerWithLevel(output, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return lvl, closer, nil
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	cfg, err := genesis.LoadConfig(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "genesis [%v]", path)
	}
	name := filepath.Base(path)
	return genesis.New(name[:len(name)-len(filepath.Ext(name))], cfg)
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

// makeInstanceDir names the instance dir after the genesis id, so that
// different networks never share databases.
func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return "", err
	}
	id, err := gene.ID()
	if err != nil {
		return "", errors.Wrap(err, "build genesis")
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", id.Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, instanceDir string) (*lvldb.LevelDB, int, error) {
	cacheMB := normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name)))
	logger.Debug("cache size(MB)", "size", cacheMB)

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, 0, errors.WithMessagef(err, "open main database [%v]", dir)
	}
	return db, cacheMB / 2, nil
}

func normalizeCacheSize(sizeMB int) int {
	return max(sizeMB, 32)
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 64
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}
	return min(limit/2, 5120)
}

func openLogDB(instanceDir string) (*logdb.LogDB, error) {
	dir := filepath.Join(instanceDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		return nil, errors.WithMessagef(err, "open log database [%v]", dir)
	}
	return db, nil
}

// ledger is the opened storage with the runtime on top of it.
type ledger struct {
	instanceDir string
	mainDB      *lvldb.LevelDB
	logDB       *logdb.LogDB
	repo        *chain.Repository
	rt          *runtime.Runtime
}

// openLedger opens databases on disk when persist is set, in memory otherwise.
// The log db is left out with --skip-logs.
func openLedger(ctx *cli.Context, gene *genesis.Genesis, persist bool) (*ledger, error) {
	l := &ledger{instanceDir: "Memory"}
	if err := l.open(ctx, gene, persist); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

func (l *ledger) open(ctx *cli.Context, gene *genesis.Genesis, persist bool) (err error) {
	cacheMB := 0
	if persist {
		if l.instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if l.mainDB, cacheMB, err = openMainDB(ctx, l.instanceDir); err != nil {
			return err
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if l.logDB, err = openLogDB(l.instanceDir); err != nil {
				return err
			}
		}
	} else {
		if l.mainDB, err = lvldb.NewMem(); err != nil {
			return errors.WithMessage(err, "open main database")
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if l.logDB, err = logdb.NewMem(); err != nil {
				return errors.WithMessage(err, "open log database")
			}
		}
	}

	if l.repo, err = gene.Setup(l.mainDB, l.logDB); err != nil {
		return errors.WithMessage(err, "initialize ledger")
	}
	l.rt, err = runtime.New(state.NewStater(l.mainDB, cacheMB), l.repo, l.logDB)
	return err
}

func (l *ledger) Close() {
	if l.logDB != nil {
		logger.Info("closing log database...")
		if err := l.logDB.Close(); err != nil {
			logger.Warn("failed to close log database", "err", err)
		}
	}
	if l.mainDB != nil {
		logger.Info("closing main database...")
		if err := l.mainDB.Close(); err != nil {
			logger.Warn("failed to close main database", "err", err)
		}
	}
}

func serve(addr, name string, handler http.Handler, path string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen %v addr [%v]", name, addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + path, func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return serve(addr, "metrics", handlers.CompressHandler(router), "/metrics")
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(gene *genesis.Genesis, l *ledger, apiURL string) {
	best := l.repo.BestHeader()
	size := "n/a"
	if l.instanceDir != "Memory" {
		if n, err := fpath.SizeOfDir(l.instanceDir); err == nil {
			size = fmt.Sprintf("%.1f MiB", float64(n)/(1024*1024))
		}
	}

	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Best block   [ %v #%v @%v ]
    Instance dir [ %v (%v) ]
    API portal   [ %v ]
`,
		"veescrow/"+fullVersion(),
		l.repo.GenesisHeader().ID(), gene.Name(),
		best.ID(), best.Number, time.Unix(int64(best.Timestamp), 0),
		l.instanceDir, size,
		apiURL)
}
