// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"math"
	"strconv"

	"github.com/vechain/veescrow/chain"
)

const revBest int64 = -1

type Revision struct {
	val any
}

// ParseRevision parses a query parameter into a block number.
func ParseRevision(revision string) (*Revision, error) {
	if revision == "" || revision == "best" {
		return &Revision{revBest}, nil
	}

	n, err := strconv.ParseUint(revision, 0, 0)
	if err != nil {
		return nil, err
	}
	if n > math.MaxUint32 {
		return nil, errors.New("block number out of max uint32")
	}
	return &Revision{uint32(n)}, err
}

// GetHeader returns the header of the block the revision points to.
func GetHeader(rev *Revision, repo *chain.Repository) (*chain.Header, error) {
	switch rev := rev.val.(type) {
	case uint32:
		return repo.GetHeader(rev)
	case int64:
		if rev == revBest {
			return repo.BestHeader(), nil
		}
	}
	return nil, errors.New("invalid revision")
}
