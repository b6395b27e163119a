// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeDir(t *testing.T) {
	t.Setenv("HOME", "/somewhere")
	home, err := HomeDir()
	require.NoError(t, err)
	assert.Equal(t, "/somewhere", home)
	assert.Equal(t, "/somewhere/.veescrow", DefaultDataDir())
}

func TestSizeOfDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 10), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 5), 0o600))

	size, err := SizeOfDir(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(15), size)

	_, err = SizeOfDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := PathExists(dir)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = PathExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}
