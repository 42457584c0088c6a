package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// RotatingFileWriter is an io.WriteCloser that implements size-based log
// rotation. When the current file would exceed its size limit, it is
// rotated: the current file becomes <path>.1, the previous .1 becomes .2,
// and so on. At most maxFiles backups are retained; older ones are deleted.
//
// All operations are safe for concurrent use.
type RotatingFileWriter struct {
	mu           sync.Mutex
	path         string
	maxSizeBytes int64
	maxFiles     int
	currentSize  int64
	file         *os.File
}

// NewRotatingFileWriter opens path for appending, creating it and its parent
// directories if needed. maxSizeMB is the size in megabytes that triggers
// rotation (minimum 1). maxFiles is the number of backups to keep (minimum
// 0, meaning the file is truncated on rotation).
func NewRotatingFileWriter(path string, maxSizeMB, maxFiles int) (*RotatingFileWriter, error) {
	return newRotatingFileWriter(path, int64(max(maxSizeMB, 1))*1024*1024, maxFiles)
}

func newRotatingFileWriter(path string, maxSizeBytes int64, maxFiles int) (*RotatingFileWriter, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("logging: mkdir %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("logging: stat %s: %w", path, err)
	}

	return &RotatingFileWriter{
		path:         path,
		maxSizeBytes: maxSizeBytes,
		maxFiles:     max(maxFiles, 0),
		currentSize:  info.Size(),
		file:         f,
	}, nil
}

// Write writes p to the current file, rotating first if p would take the
// file past its limit. A single write is never split across files, so a
// write larger than the limit goes to a fresh file on its own.
func (w *RotatingFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	if w.currentSize > 0 && w.currentSize+int64(len(p)) > w.maxSizeBytes {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("logging: rotate: %w", err)
		}
	}

	n, err := w.file.Write(p)
	w.currentSize += int64(n)
	return n, err
}

// Close closes the underlying file.
func (w *RotatingFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// rotate must be called with w.mu held.
func (w *RotatingFileWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}

	// highest first, so that no backup is overwritten
	backups := w.listBackups()
	slices.Reverse(backups)
	for _, num := range backups {
		src := w.backupPath(num)
		if num+1 > w.maxFiles {
			_ = os.Remove(src)
		} else {
			_ = os.Rename(src, w.backupPath(num+1))
		}
	}

	if w.maxFiles > 0 {
		_ = os.Rename(w.path, w.backupPath(1))
	} else {
		_ = os.Remove(w.path)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		w.file = nil
		return err
	}
	w.file = f
	w.currentSize = 0
	return nil
}

// backupPath returns the path for backup number n (e.g., "arbor.log.1").
func (w *RotatingFileWriter) backupPath(n int) string {
	return w.path + "." + strconv.Itoa(n)
}

// listBackups returns the existing backup numbers in ascending order.
func (w *RotatingFileWriter) listBackups() []int {
	entries, err := os.ReadDir(filepath.Dir(w.path))
	if err != nil {
		return nil
	}

	prefix := filepath.Base(w.path) + "."
	var nums []int
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n >= 1 {
			nums = append(nums, n)
		}
	}

	slices.Sort(nums)
	return nums
}

var _ io.WriteCloser = (*RotatingFileWriter)(nil)
