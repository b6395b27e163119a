// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/test/testchain"
	"github.com/vechain/veescrow/thor"
)

func TestParseRevision(t *testing.T) {
	testCases := []struct {
		revision string
		err      string
		expected *Revision
	}{
		{
			revision: "",
			expected: &Revision{revBest},
		},
		{
			revision: "1234",
			expected: &Revision{uint32(1234)},
		},
		{
			revision: "0x10",
			expected: &Revision{uint32(16)},
		},
		{
			revision: "best",
			expected: &Revision{revBest},
		},
		{
			revision: "finalized",
			err:      "strconv.ParseUint: parsing \"finalized\": invalid syntax",
		},
		{
			revision: fmt.Sprintf("%v", uint64(math.MaxUint64)),
			err:      "block number out of max uint32",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.revision, func(t *testing.T) {
			result, err := ParseRevision(tc.revision)
			if tc.err != "" {
				assert.EqualError(t, err, tc.err)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tc.expected, result)
			}
		})
	}
}

func TestGetHeader(t *testing.T) {
	tc, err := testchain.NewDefault()
	require.NoError(t, err)
	defer tc.Close()

	require.NoError(t, tc.Advance(thor.BlockInterval))
	require.NoError(t, tc.Advance(thor.BlockInterval))

	h, err := GetHeader(&Revision{revBest}, tc.Repo())
	require.NoError(t, err)
	assert.Equal(t, uint32(2), h.Number)

	h, err = GetHeader(&Revision{uint32(1)}, tc.Repo())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), h.Number)

	_, err = GetHeader(&Revision{uint32(1234)}, tc.Repo())
	assert.True(t, tc.Repo().IsNotFound(err))

	_, err = GetHeader(&Revision{"bad"}, tc.Repo())
	assert.EqualError(t, err, "invalid revision")
}
