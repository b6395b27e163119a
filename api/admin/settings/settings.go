// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package settings exposes the runtime toggles of the node: the log level and
// whether every api request is logged.
package settings

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/chain"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/thor"
)

var logger = log.WithContext("pkg", "settings")

var levels = []struct {
	name  string
	level slog.Level
}{
	{"crit", log.LevelCrit},
	{"error", log.LevelError},
	{"warn", log.LevelWarn},
	{"info", log.LevelInfo},
	{"debug", log.LevelDebug},
	{"trace", log.LevelTrace},
}

func levelName(l slog.Level) string {
	for _, e := range levels {
		if e.level == l {
			return e.name
		}
	}
	return l.String()
}

// Settings is the view of the node the toggles apply to.
type Settings struct {
	LogLevel  string       `json:"logLevel"`
	APILogs   bool         `json:"apiLogs"`
	Genesis   thor.Bytes32 `json:"genesis"`
	BestBlock uint32       `json:"bestBlock"`
}

// Update changes the fields it carries and leaves the others.
type Update struct {
	LogLevel *string `json:"logLevel"`
	APILogs  *bool   `json:"apiLogs"`
}

type Handler struct {
	logLevel *slog.LevelVar
	apiLogs  *atomic.Bool
	repo     *chain.Repository
	mu       sync.Mutex
}

func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, repo *chain.Repository) *Handler {
	return &Handler{logLevel: logLevel, apiLogs: apiLogs, repo: repo}
}

func (h *Handler) current() *Settings {
	return &Settings{
		LogLevel:  levelName(h.logLevel.Level()),
		APILogs:   h.apiLogs.Load(),
		Genesis:   h.repo.GenesisHeader().ID(),
		BestBlock: h.repo.BestHeader().Number,
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, _ *http.Request) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return utils.WriteJSON(w, h.current())
}

func (h *Handler) handleUpdate(w http.ResponseWriter, req *http.Request) error {
	var body Update
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if body.LogLevel != nil {
		found := false
		for _, e := range levels {
			if e.name == *body.LogLevel {
				h.logLevel.Set(e.level)
				found = true
				break
			}
		}
		if !found {
			return utils.BadRequest(errors.Errorf("logLevel: unknown level %q", *body.LogLevel))
		}
	}
	if body.APILogs != nil {
		h.apiLogs.Store(*body.APILogs)
	}
	s := h.current()
	logger.Info("settings updated", "logLevel", s.LogLevel, "apiLogs", s.APILogs)
	return utils.WriteJSON(w, s)
}

func (h *Handler) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/settings").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGet))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /admin/settings").
		HandlerFunc(utils.WrapHandlerFunc(h.handleUpdate))
}
