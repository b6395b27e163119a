// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/veescrow/api/admin/health"
	"github.com/vechain/veescrow/api/admin/settings"
	"github.com/vechain/veescrow/chain"
)

func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, repo *chain.Repository, blockInterval time.Duration) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	settings.New(logLevel, apiLogs, repo).Mount(sub, "/settings")
	health.New(repo, blockInterval).Mount(sub, "/health")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
