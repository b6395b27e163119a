// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/chain"
	"github.com/vechain/veescrow/thor"
)

const delayBuffer = 5 * time.Second

type BestBlock struct {
	Number    uint32       `json:"number"`
	ID        thor.Bytes32 `json:"id"`
	Timestamp uint64       `json:"timestamp"`
}

type Status struct {
	Healthy   bool       `json:"healthy"`
	BestBlock *BestBlock `json:"bestBlock"`
	// Lag is the seconds passed since the best block was sealed.
	Lag uint64 `json:"lag"`
}

// Health reports whether blocks are being sealed on time.
type Health struct {
	repo          *chain.Repository
	blockInterval time.Duration
	now           func() time.Time
}

func New(repo *chain.Repository, blockInterval time.Duration) *Health {
	return &Health{
		repo:          repo,
		blockInterval: blockInterval,
		now:           time.Now,
	}
}

func (h *Health) Status() *Status {
	best := h.repo.BestHeader()
	var lag uint64
	if now := uint64(h.now().Unix()); now > best.Timestamp {
		lag = now - best.Timestamp
	}
	return &Status{
		Healthy: time.Duration(lag)*time.Second <= h.blockInterval+delayBuffer,
		BestBlock: &BestBlock{
			Number:    best.Number,
			ID:        best.ID(),
			Timestamp: best.Timestamp,
		},
		Lag: lag,
	}
}

func (h *Health) handleGetHealth(w http.ResponseWriter, _ *http.Request) error {
	status := h.Status()
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, status)
}

func (h *Health) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
