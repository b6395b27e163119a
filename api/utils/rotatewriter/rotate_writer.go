// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rotatewriter writes logs into size bounded files, keeping a fixed number of them.
package rotatewriter

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type RotateWriter interface {
	io.WriteCloser
	Start() error
}

type Option func(*Writer)

func WithDir(dir string) Option             { return func(w *Writer) { w.dirPath = dir } }
func WithFileBaseName(name string) Option   { return func(w *Writer) { w.fileBaseName = name } }
func WithFileMaxSize(size int64) Option     { return func(w *Writer) { w.maxFileSize = size } }
func WithMaxNumberFiles(n int) Option       { return func(w *Writer) { w.maxNumFiles = n } }
func withClock(now func() time.Time) Option { return func(w *Writer) { w.now = now } }

type Writer struct {
	dirPath      string
	fileBaseName string
	maxFileSize  int64
	maxNumFiles  int
	now          func() time.Time

	mu          sync.Mutex
	currentFile *os.File
	currentSize int64
}

// New creates a writer. Files are named <base>-<timestamp>.log under the dir.
func New(opts ...Option) (RotateWriter, error) {
	w := &Writer{
		fileBaseName: "veescrow",
		maxFileSize:  64 * 1024 * 1024,
		maxNumFiles:  10,
		now:          time.Now,
	}
	for _, o := range opts {
		o(w)
	}
	if w.dirPath == "" {
		return nil, errors.New("log dir not set")
	}
	if w.maxFileSize <= 0 {
		return nil, errors.New("max file size must be positive")
	}
	if err := os.MkdirAll(w.dirPath, 0o700); err != nil {
		return nil, errors.Wrap(err, "create log dir")
	}
	return w, nil
}

// StdoutWriter returns a RotateWriter that never rotates and writes to stdout.
func StdoutWriter() RotateWriter {
	return stdout{}
}

type stdout struct{}

func (stdout) Start() error                { return nil }
func (stdout) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdout) Close() error                { return nil }

func (w *Writer) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return errors.Wrap(w.openNextFile(), "open log file")
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentFile == nil {
		return 0, io.ErrClosedPipe
	}
	if w.currentSize > 0 && w.currentSize+int64(len(p)) > w.maxFileSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.currentFile.Write(p)
	w.currentSize += int64(n)
	return n, err
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentFile == nil {
		return nil
	}
	err := w.currentFile.Close()
	w.currentFile = nil
	return err
}

func (w *Writer) openNextFile() error {
	if w.currentFile != nil {
		if err := w.currentFile.Close(); err != nil {
			return err
		}
	}
	w.currentSize = 0

	now := w.now()
	filePath := filepath.Join(w.dirPath, w.fileBaseName+"-"+now.Format("2006-01-02T15-04-05")+".log")
	if _, err := os.Stat(filePath); err == nil {
		filePath = filepath.Join(w.dirPath, w.fileBaseName+"-"+now.Format("2006-01-02T15-04-05.000000")+".log")
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	w.currentFile = file
	return nil
}

func (w *Writer) rotate() error {
	if err := w.openNextFile(); err != nil {
		return err
	}
	if w.maxNumFiles > 0 {
		return w.deleteOldLogFiles()
	}
	return nil
}

func (w *Writer) deleteOldLogFiles() error {
	files, err := filepath.Glob(filepath.Join(w.dirPath, w.fileBaseName+"-*.log"))
	if err != nil {
		return err
	}
	// timestamps sort lexically
	sort.Strings(files)

	for i := 0; i < len(files)-w.maxNumFiles; i++ {
		if files[i] == w.currentFile.Name() {
			continue
		}
		if err := os.Remove(files[i]); err != nil {
			return err
		}
	}
	return nil
}
