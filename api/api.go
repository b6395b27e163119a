// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/veescrow/api/accounts"
	"github.com/vechain/veescrow/api/blocks"
	"github.com/vechain/veescrow/api/distributors"
	"github.com/vechain/veescrow/api/escrow"
	"github.com/vechain/veescrow/api/events"
	"github.com/vechain/veescrow/api/gauge"
	"github.com/vechain/veescrow/api/middleware"
	"github.com/vechain/veescrow/api/node"
	"github.com/vechain/veescrow/api/rewards"
	"github.com/vechain/veescrow/api/transfers"
	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	PprofOn              bool
	SkipLogs             bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	LogsLimit            uint64
	NodeInfo             node.Info
}

// New return api router
func New(rt *runtime.Runtime, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()
	router.Use(utils.NewAuthenticator(nil).Middleware)

	accounts.New(rt).
		Mount(router, "/accounts")
	escrow.New(rt).
		Mount(router, "/escrow")
	distributors.New(rt).
		Mount(router, "/distributors")
	rewards.New(rt).
		Mount(router, "/rewards")
	gauge.New(rt).
		Mount(router, "/gauge")
	blocks.New(rt.Repo()).
		Mount(router, "/blocks")
	node.New(rt, opts.NodeInfo).
		Mount(router, "/node")

	if !opts.SkipLogs {
		events.New(rt.LogDB(), opts.LogsLimit).
			Mount(router, "/logs/event")
		transfers.New(rt.LogDB(), opts.LogsLimit).
			Mount(router, "/logs/transfer")
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", utils.SignatureHeader, utils.ExpiryHeader, utils.NonceHeader, utils.CallerHeader}),
	)(handler)

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	handler = middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)

	return handler.ServeHTTP
}
