// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauge

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/api/types"
	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

type Gauge struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Gauge {
	return &Gauge{rt}
}

func (g *Gauge) handleGetState(w http.ResponseWriter, _ *http.Request) error {
	return utils.View(w, g.rt, func(_ *xenv.Environment, c *builtin.Contracts) (any, error) {
		gauge := c.Gauge
		s := &State{
			Address: gauge.Address(),
			LP:      gauge.LP().Address(),
			Rewards: []*Reward{},
		}
		var err error
		if s.Admin, err = gauge.Admin(); err != nil {
			return nil, err
		}
		supply, err := gauge.TotalSupply()
		if err != nil {
			return nil, err
		}
		working, err := gauge.WorkingSupply()
		if err != nil {
			return nil, err
		}
		s.TotalSupply = types.Amount(supply)
		s.WorkingSupply = types.Amount(working)

		tokens, err := gauge.RewardTokens()
		if err != nil {
			return nil, err
		}
		for _, token := range tokens {
			data, err := gauge.RewardData(token)
			if err != nil {
				return nil, err
			}
			s.Rewards = append(s.Rewards, &Reward{
				Token:        token,
				Distributor:  data.Distributor,
				PeriodFinish: data.PeriodFinish,
				Rate:         types.Amount(data.Rate),
				LastUpdate:   data.LastUpdate,
				Integral:     types.Amount(data.Integral),
			})
		}
		return s, nil
	})
}

func (g *Gauge) handleGetUser(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return utils.View(w, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		gauge := c.Gauge
		u := &User{Rewards: []*UserReward{}}
		balance, err := gauge.BalanceOf(user)
		if err != nil {
			return nil, err
		}
		working, err := gauge.WorkingBalanceOf(user)
		if err != nil {
			return nil, err
		}
		u.Balance = types.Amount(balance)
		u.WorkingBalance = types.Amount(working)
		if u.LastCheckpoint, err = gauge.LastCheckpointOf(user); err != nil {
			return nil, err
		}
		if u.RewardsReceiver, err = gauge.RewardsReceiver(user); err != nil {
			return nil, err
		}

		tokens, err := gauge.RewardTokens()
		if err != nil {
			return nil, err
		}
		for _, token := range tokens {
			claimable, err := gauge.ClaimableReward(env, user, token)
			if err != nil {
				return nil, err
			}
			claimed, err := gauge.ClaimedReward(user, token)
			if err != nil {
				return nil, err
			}
			u.Rewards = append(u.Rewards, &UserReward{token, types.Amount(claimable), types.Amount(claimed)})
		}
		return u, nil
	})
}

func (g *Gauge) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body DepositRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	var recipient thor.Address
	if body.Recipient != nil {
		recipient = *body.Recipient
	}
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.Deposit(env, types.BigInt(body.Amount), recipient, body.Claim)
	})
}

func (g *Gauge) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.Withdraw(env, types.BigInt(body.Amount), body.Claim)
	})
}

func (g *Gauge) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil && err != io.EOF {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	var user, receiver thor.Address
	if body.User != nil {
		user = *body.User
	}
	if body.Receiver != nil {
		receiver = *body.Receiver
	}
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.ClaimRewards(env, user, receiver)
	})
}

func (g *Gauge) handleSetReceiver(w http.ResponseWriter, req *http.Request) error {
	var body ReceiverRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	var receiver thor.Address
	if body.Receiver != nil {
		receiver = *body.Receiver
	}
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.SetRewardsReceiver(env, receiver)
	})
}

func (g *Gauge) handleUserCheckpoint(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.UserCheckpoint(env, user)
	})
}

func (g *Gauge) handleKick(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.Kick(env, user)
	})
}

func (g *Gauge) handleAddReward(w http.ResponseWriter, req *http.Request) error {
	var body AddRewardRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Token == nil {
		return utils.BadRequest(errors.New("body: token required"))
	}
	if body.Distributor == nil {
		return utils.BadRequest(errors.New("body: distributor required"))
	}
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.AddReward(env, *body.Token, *body.Distributor)
	})
}

func (g *Gauge) handleSetRewardDistributor(w http.ResponseWriter, req *http.Request) error {
	var body AddRewardRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Token == nil {
		return utils.BadRequest(errors.New("body: token required"))
	}
	if body.Distributor == nil {
		return utils.BadRequest(errors.New("body: distributor required"))
	}
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.SetRewardDistributor(env, *body.Token, *body.Distributor)
	})
}

func (g *Gauge) handleDepositReward(w http.ResponseWriter, req *http.Request) error {
	var body DepositRewardRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Token == nil {
		return utils.BadRequest(errors.New("body: token required"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.DepositRewardToken(env, *body.Token, types.BigInt(body.Amount))
	})
}

func (g *Gauge) handleCommitTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	var body AddressRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Address == nil {
		return utils.BadRequest(errors.New("body: address required"))
	}
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.CommitTransferOwnership(env, *body.Address)
	})
}

func (g *Gauge) handleApplyTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	return utils.Call(w, req, g.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Gauge.ApplyTransferOwnership(env)
	})
}

func (g *Gauge) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /gauge").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetState))
	sub.Path("/deposit").
		Methods(http.MethodPost).
		Name("POST /gauge/deposit").
		HandlerFunc(utils.WrapHandlerFunc(g.handleDeposit))
	sub.Path("/withdraw").
		Methods(http.MethodPost).
		Name("POST /gauge/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(g.handleWithdraw))
	sub.Path("/claim").
		Methods(http.MethodPost).
		Name("POST /gauge/claim").
		HandlerFunc(utils.WrapHandlerFunc(g.handleClaim))
	sub.Path("/rewards-receiver").
		Methods(http.MethodPost).
		Name("POST /gauge/rewards-receiver").
		HandlerFunc(utils.WrapHandlerFunc(g.handleSetReceiver))
	sub.Path("/deposit-reward").
		Methods(http.MethodPost).
		Name("POST /gauge/deposit-reward").
		HandlerFunc(utils.WrapHandlerFunc(g.handleDepositReward))
	sub.Path("/reward-distributor").
		Methods(http.MethodPost).
		Name("POST /gauge/reward-distributor").
		HandlerFunc(utils.WrapHandlerFunc(g.handleSetRewardDistributor))

	sub.Path("/admin/add-reward").
		Methods(http.MethodPost).
		Name("POST /gauge/admin/add-reward").
		HandlerFunc(utils.WrapHandlerFunc(g.handleAddReward))
	sub.Path("/admin/commit-transfer-ownership").
		Methods(http.MethodPost).
		Name("POST /gauge/admin/commit-transfer-ownership").
		HandlerFunc(utils.WrapHandlerFunc(g.handleCommitTransferOwnership))
	sub.Path("/admin/apply-transfer-ownership").
		Methods(http.MethodPost).
		Name("POST /gauge/admin/apply-transfer-ownership").
		HandlerFunc(utils.WrapHandlerFunc(g.handleApplyTransferOwnership))

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /gauge/{address}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetUser))
	sub.Path("/{address}/checkpoint").
		Methods(http.MethodPost).
		Name("POST /gauge/{address}/checkpoint").
		HandlerFunc(utils.WrapHandlerFunc(g.handleUserCheckpoint))
	sub.Path("/{address}/kick").
		Methods(http.MethodPost).
		Name("POST /gauge/{address}/kick").
		HandlerFunc(utils.WrapHandlerFunc(g.handleKick))
}
