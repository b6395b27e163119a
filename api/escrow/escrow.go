// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/api/types"
	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/builtin/escrow"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

type Escrow struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Escrow {
	return &Escrow{rt}
}

// at is the moment a voting power query is evaluated at, read from the t
// (timestamp) or block query parameter. Neither means now.
type at struct {
	time  *uint64
	block *uint32
}

func parseAt(req *http.Request) (*at, error) {
	var a at
	query := req.URL.Query()
	if query.Has("t") && query.Has("block") {
		return nil, utils.BadRequest(errors.New("t and block are mutually exclusive"))
	}
	if query.Has("t") {
		t, err := utils.Uint64Query(req, "t", 0)
		if err != nil {
			return nil, err
		}
		a.time = &t
	}
	if query.Has("block") {
		n, err := utils.Uint64Query(req, "block", 0)
		if err != nil {
			return nil, err
		}
		if n > math.MaxUint32 {
			return nil, utils.BadRequest(errors.New("block: number out of max uint32"))
		}
		block := uint32(n)
		a.block = &block
	}
	return &a, nil
}

func (e *Escrow) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	return utils.View(w, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		cfg := &Config{
			Address:     c.Escrow.Address(),
			Token:       c.Escrow.Token(),
			MaxLockTime: escrow.MaxLockTime,
		}
		var err error
		if cfg.Admin, err = c.Escrow.Admin(); err != nil {
			return nil, err
		}
		if cfg.FutureAdmin, err = c.Escrow.FutureAdmin(); err != nil {
			return nil, err
		}
		if cfg.RewardPool, err = c.Escrow.RewardPool(); err != nil {
			return nil, err
		}
		if cfg.FundsUnlocked, err = c.Escrow.FundsUnlocked(); err != nil {
			return nil, err
		}
		if cfg.Epoch, err = c.Escrow.Epoch(); err != nil {
			return nil, err
		}
		supply, err := c.Escrow.Supply()
		if err != nil {
			return nil, err
		}
		total, err := c.Escrow.TotalSupplyNow(env)
		if err != nil {
			return nil, err
		}
		cfg.Supply = types.Amount(supply)
		cfg.TotalSupply = types.Amount(total)
		return cfg, nil
	})
}

func (e *Escrow) handleGetLock(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return utils.View(w, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		locked, err := c.Escrow.Locked(user)
		if err != nil {
			return nil, err
		}
		epoch, err := c.Escrow.UserPointEpoch(user)
		if err != nil {
			return nil, err
		}
		balance, err := c.Escrow.BalanceOfNow(env, user)
		if err != nil {
			return nil, err
		}
		return &Lock{
			Amount:  types.Amount(locked.Amount),
			End:     locked.End,
			Epoch:   epoch,
			Balance: types.Amount(balance),
		}, nil
	})
}

func (e *Escrow) handleGetUserPoint(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	epoch, err := utils.Uint64Var(req, "epoch")
	if err != nil {
		return err
	}
	return utils.View(w, e.rt, func(_ *xenv.Environment, c *builtin.Contracts) (any, error) {
		p, err := c.Escrow.UserPointHistory(user, epoch)
		if err != nil {
			return nil, err
		}
		return convertPoint(p), nil
	})
}

func (e *Escrow) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	at, err := parseAt(req)
	if err != nil {
		return err
	}
	return utils.View(w, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		var (
			balance *big.Int
			err     error
		)
		switch {
		case at.block != nil:
			balance, err = c.Escrow.BalanceOfAt(env, user, *at.block)
		case at.time != nil:
			balance, err = c.Escrow.BalanceOf(user, *at.time)
		default:
			balance, err = c.Escrow.BalanceOfNow(env, user)
		}
		if err != nil {
			return nil, err
		}
		return &Balance{types.Amount(balance)}, nil
	})
}

func (e *Escrow) handleGetSupply(w http.ResponseWriter, req *http.Request) error {
	at, err := parseAt(req)
	if err != nil {
		return err
	}
	return utils.View(w, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		var (
			supply *big.Int
			err    error
		)
		switch {
		case at.block != nil:
			supply, err = c.Escrow.TotalSupplyAt(env, *at.block)
		case at.time != nil:
			supply, err = c.Escrow.TotalSupply(*at.time)
		default:
			supply, err = c.Escrow.TotalSupplyNow(env)
		}
		if err != nil {
			return nil, err
		}
		return &Supply{types.Amount(supply)}, nil
	})
}

func (e *Escrow) handleGetPoint(w http.ResponseWriter, req *http.Request) error {
	epoch, err := utils.Uint64Var(req, "epoch")
	if err != nil {
		return err
	}
	return utils.View(w, e.rt, func(_ *xenv.Environment, c *builtin.Contracts) (any, error) {
		p, err := c.Escrow.PointHistory(epoch)
		if err != nil {
			return nil, err
		}
		return convertPoint(p), nil
	})
}

func (e *Escrow) handleGetSlopeChange(w http.ResponseWriter, req *http.Request) error {
	t, err := utils.Uint64Var(req, "time")
	if err != nil {
		return err
	}
	return utils.View(w, e.rt, func(_ *xenv.Environment, c *builtin.Contracts) (any, error) {
		slope, err := c.Escrow.SlopeChange(thor.FloorWeek(t))
		if err != nil {
			return nil, err
		}
		return &SlopeChange{thor.FloorWeek(t), types.Amount(slope)}, nil
	})
}

func (e *Escrow) handleGetDepositor(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return utils.View(w, e.rt, func(_ *xenv.Environment, c *builtin.Contracts) (any, error) {
		allowed, err := c.Escrow.IsDepositor(addr)
		if err != nil {
			return nil, err
		}
		return &Depositor{addr, allowed}, nil
	})
}

func (e *Escrow) handleCreateLock(w http.ResponseWriter, req *http.Request) error {
	var body LockRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.CreateLock(env, types.BigInt(body.Amount), body.UnlockTime)
	})
}

func (e *Escrow) handleIncreaseAmount(w http.ResponseWriter, req *http.Request) error {
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.IncreaseAmount(env, types.BigInt(body.Amount))
	})
}

func (e *Escrow) handleDepositFor(w http.ResponseWriter, req *http.Request) error {
	var body DepositForRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Owner == nil || body.Amount == nil {
		return utils.BadRequest(errors.New("body: owner and amount required"))
	}
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.DepositFor(env, *body.Owner, types.BigInt(body.Amount))
	})
}

func (e *Escrow) handleExtendUnlockTime(w http.ResponseWriter, req *http.Request) error {
	var body UnlockTimeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.ExtendUnlockTime(env, body.UnlockTime)
	})
}

func (e *Escrow) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.Withdraw(env)
	})
}

func (e *Escrow) handleCheckpoint(w http.ResponseWriter, req *http.Request) error {
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.Checkpoint(env)
	})
}

func (e *Escrow) handleCommitTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	var body AddressRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Address == nil {
		return utils.BadRequest(errors.New("body: address required"))
	}
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.CommitTransferOwnership(env, *body.Address)
	})
}

func (e *Escrow) handleApplyTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.ApplyTransferOwnership(env)
	})
}

func (e *Escrow) handleSetRewardPool(w http.ResponseWriter, req *http.Request) error {
	var body AddressRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Address == nil {
		return utils.BadRequest(errors.New("body: address required"))
	}
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.SetRewardPool(env, *body.Address)
	})
}

func (e *Escrow) handleSetDepositor(w http.ResponseWriter, req *http.Request) error {
	var body DepositorRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Address == nil {
		return utils.BadRequest(errors.New("body: address required"))
	}
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.SetDepositor(env, *body.Address, body.Allowed)
	})
}

func (e *Escrow) handleSetFundsUnlocked(w http.ResponseWriter, req *http.Request) error {
	var body FundsUnlockedRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return utils.Call(w, req, e.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Escrow.SetFundsUnlocked(env, body.Unlocked)
	})
}

func (e *Escrow) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /escrow").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetConfig))
	sub.Path("/locks/{address}").
		Methods(http.MethodGet).
		Name("GET /escrow/locks/{address}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetLock))
	sub.Path("/locks/{address}/points/{epoch}").
		Methods(http.MethodGet).
		Name("GET /escrow/locks/{address}/points/{epoch}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetUserPoint))
	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("GET /escrow/balances/{address}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetBalance))
	sub.Path("/supply").
		Methods(http.MethodGet).
		Name("GET /escrow/supply").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetSupply))
	sub.Path("/points/{epoch}").
		Methods(http.MethodGet).
		Name("GET /escrow/points/{epoch}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetPoint))
	sub.Path("/slope-changes/{time}").
		Methods(http.MethodGet).
		Name("GET /escrow/slope-changes/{time}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetSlopeChange))
	sub.Path("/depositors/{address}").
		Methods(http.MethodGet).
		Name("GET /escrow/depositors/{address}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetDepositor))

	sub.Path("/create-lock").
		Methods(http.MethodPost).
		Name("POST /escrow/create-lock").
		HandlerFunc(utils.WrapHandlerFunc(e.handleCreateLock))
	sub.Path("/increase-amount").
		Methods(http.MethodPost).
		Name("POST /escrow/increase-amount").
		HandlerFunc(utils.WrapHandlerFunc(e.handleIncreaseAmount))
	sub.Path("/deposit-for").
		Methods(http.MethodPost).
		Name("POST /escrow/deposit-for").
		HandlerFunc(utils.WrapHandlerFunc(e.handleDepositFor))
	sub.Path("/extend-unlock-time").
		Methods(http.MethodPost).
		Name("POST /escrow/extend-unlock-time").
		HandlerFunc(utils.WrapHandlerFunc(e.handleExtendUnlockTime))
	sub.Path("/withdraw").
		Methods(http.MethodPost).
		Name("POST /escrow/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(e.handleWithdraw))
	sub.Path("/checkpoint").
		Methods(http.MethodPost).
		Name("POST /escrow/checkpoint").
		HandlerFunc(utils.WrapHandlerFunc(e.handleCheckpoint))

	sub.Path("/admin/commit-transfer-ownership").
		Methods(http.MethodPost).
		Name("POST /escrow/admin/commit-transfer-ownership").
		HandlerFunc(utils.WrapHandlerFunc(e.handleCommitTransferOwnership))
	sub.Path("/admin/apply-transfer-ownership").
		Methods(http.MethodPost).
		Name("POST /escrow/admin/apply-transfer-ownership").
		HandlerFunc(utils.WrapHandlerFunc(e.handleApplyTransferOwnership))
	sub.Path("/admin/reward-pool").
		Methods(http.MethodPost).
		Name("POST /escrow/admin/reward-pool").
		HandlerFunc(utils.WrapHandlerFunc(e.handleSetRewardPool))
	sub.Path("/admin/depositors").
		Methods(http.MethodPost).
		Name("POST /escrow/admin/depositors").
		HandlerFunc(utils.WrapHandlerFunc(e.handleSetDepositor))
	sub.Path("/admin/funds-unlocked").
		Methods(http.MethodPost).
		Name("POST /escrow/admin/funds-unlocked").
		HandlerFunc(utils.WrapHandlerFunc(e.handleSetFundsUnlocked))
}
