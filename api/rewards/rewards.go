// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/api/types"
	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/xenv"
)

type Rewards struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Rewards {
	return &Rewards{rt}
}

func (r *Rewards) handleGetState(w http.ResponseWriter, _ *http.Request) error {
	return utils.View(w, r.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		pool := c.Rewards
		s := &State{
			Address: pool.Address(),
			Reward:  pool.Reward().Address(),
		}
		var err error
		if s.Admin, err = pool.Admin(); err != nil {
			return nil, err
		}
		if s.PeriodFinish, err = pool.PeriodFinish(); err != nil {
			return nil, err
		}
		rate, err := pool.RewardRate()
		if err != nil {
			return nil, err
		}
		rpt, err := pool.RewardPerToken(env.Now())
		if err != nil {
			return nil, err
		}
		queued, err := pool.QueuedRewards()
		if err != nil {
			return nil, err
		}
		current, err := pool.CurrentRewards()
		if err != nil {
			return nil, err
		}
		historical, err := pool.HistoricalRewards()
		if err != nil {
			return nil, err
		}
		balance, err := pool.Reward().BalanceOf(pool.Address())
		if err != nil {
			return nil, err
		}
		s.RewardRate = types.Amount(rate)
		s.RewardPerToken = types.Amount(rpt)
		s.QueuedRewards = types.Amount(queued)
		s.CurrentRewards = types.Amount(current)
		s.HistoricalRewards = types.Amount(historical)
		s.Balance = types.Amount(balance)
		return s, nil
	})
}

func (r *Rewards) handleGetEarned(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return utils.View(w, r.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		earned, err := c.Rewards.Earned(user, env.Now())
		if err != nil {
			return nil, err
		}
		return &Earned{types.Amount(earned)}, nil
	})
}

func (r *Rewards) handleQueue(w http.ResponseWriter, req *http.Request) error {
	var body QueueRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	return utils.Call(w, req, r.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Rewards.QueueNewRewards(env, types.BigInt(body.Amount))
	})
}

func (r *Rewards) handleGetReward(w http.ResponseWriter, req *http.Request) error {
	var body GetRewardRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil && err != io.EOF {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return utils.Call(w, req, r.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		reward, err := c.Rewards.GetReward(env, body.Relock)
		if err != nil {
			return nil, err
		}
		return types.Amount(reward), nil
	})
}

func (r *Rewards) handleSweep(w http.ResponseWriter, req *http.Request) error {
	var body SweepRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Asset == nil {
		return utils.BadRequest(errors.New("body: asset required"))
	}
	return utils.Call(w, req, r.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		a, ok := c.Asset(*body.Asset)
		if !ok {
			return nil, utils.BadRequest(errors.Errorf("asset %v not found", body.Asset))
		}
		return nil, c.Rewards.Sweep(env, a)
	})
}

func (r *Rewards) handleCommitTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	var body AddressRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Address == nil {
		return utils.BadRequest(errors.New("body: address required"))
	}
	return utils.Call(w, req, r.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Rewards.CommitTransferOwnership(env, *body.Address)
	})
}

func (r *Rewards) handleApplyTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	return utils.Call(w, req, r.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Rewards.ApplyTransferOwnership(env)
	})
}

func (r *Rewards) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /rewards").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetState))
	sub.Path("/earned/{address}").
		Methods(http.MethodGet).
		Name("GET /rewards/earned/{address}").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetEarned))
	sub.Path("/get-reward").
		Methods(http.MethodPost).
		Name("POST /rewards/get-reward").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetReward))

	sub.Path("/admin/queue").
		Methods(http.MethodPost).
		Name("POST /rewards/admin/queue").
		HandlerFunc(utils.WrapHandlerFunc(r.handleQueue))
	sub.Path("/admin/sweep").
		Methods(http.MethodPost).
		Name("POST /rewards/admin/sweep").
		HandlerFunc(utils.WrapHandlerFunc(r.handleSweep))
	sub.Path("/admin/commit-transfer-ownership").
		Methods(http.MethodPost).
		Name("POST /rewards/admin/commit-transfer-ownership").
		HandlerFunc(utils.WrapHandlerFunc(r.handleCommitTransferOwnership))
	sub.Path("/admin/apply-transfer-ownership").
		Methods(http.MethodPost).
		Name("POST /rewards/admin/apply-transfer-ownership").
		HandlerFunc(utils.WrapHandlerFunc(r.handleApplyTransferOwnership))
}
