// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rotatewriter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickingClock() func() time.Time {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestNewRotatingLogWriter(t *testing.T) {
	dir := t.TempDir()

	writer, err := New(
		WithDir(dir),
		WithFileBaseName("derp"),
		WithFileMaxSize(1024),
		WithMaxNumberFiles(2),
		withClock(tickingClock()),
	)
	require.NoError(t, err)
	require.NoError(t, writer.Start())
	defer writer.Close()

	createdFile := writer.(*Writer).currentFile.Name()

	data := bytes.Repeat([]byte{'x'}, 1000)
	n, err := writer.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, createdFile, writer.(*Writer).currentFile.Name())

	_, err = writer.Write(data)
	require.NoError(t, err)
	assert.NotEqual(t, createdFile, writer.(*Writer).currentFile.Name())

	for range 3 {
		_, err = writer.Write(data)
		require.NoError(t, err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "derp-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, writer.(*Writer).currentFile.Name())
}

func TestOversizedWrite(t *testing.T) {
	writer, err := New(WithDir(t.TempDir()), WithFileMaxSize(10), withClock(tickingClock()))
	require.NoError(t, err)
	require.NoError(t, writer.Start())
	defer writer.Close()

	name := writer.(*Writer).currentFile.Name()
	// an empty file takes the write whatever its size
	_, err = writer.Write(make([]byte, 100))
	require.NoError(t, err)
	assert.Equal(t, name, writer.(*Writer).currentFile.Name())

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, int64(100), info.Size())
}

func TestWriteAfterClose(t *testing.T) {
	writer, err := New(WithDir(t.TempDir()))
	require.NoError(t, err)

	_, err = writer.Write([]byte("early"))
	assert.Error(t, err)

	require.NoError(t, writer.Start())
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close())
	_, err = writer.Write([]byte("late"))
	assert.Error(t, err)
}

func TestNewRejects(t *testing.T) {
	_, err := New()
	assert.EqualError(t, err, "log dir not set")

	_, err = New(WithDir(t.TempDir()), WithFileMaxSize(0))
	assert.EqualError(t, err, "max file size must be positive")
}

func TestStdoutWriter(t *testing.T) {
	writer := StdoutWriter()
	require.NoError(t, writer.Start())
	n, err := writer.Write([]byte("hello\n"))
	assert.Nil(t, err)
	assert.Equal(t, 6, n)
	assert.NoError(t, writer.Close())
}
