package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	logFileName    = "batchdl.log"
	backupStamp    = "20060102-150405.000000000"
	logDirPerm     = 0o755
	logFilePerm    = 0o600
	bytesPerMB     = 1024 * 1024
)

// RotatingFile is an append-only log file that is renamed to a timestamped
// backup once it would exceed its size limit. Old backups are pruned by
// count and age.
type RotatingFile struct {
	mu         sync.Mutex
	dir        string
	maxSize    int64
	maxBackups int
	maxAge     time.Duration
	compress   bool
	file       *os.File
	size       int64
}

// NewRotatingFile opens (or creates) batchdl.log in cfg.Dir.
func NewRotatingFile(cfg FileConfig) (*RotatingFile, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("log directory is empty")
	}
	if err := os.MkdirAll(cfg.Dir, logDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r := &RotatingFile{
		dir:        cfg.Dir,
		maxSize:    int64(cfg.MaxSizeMB) * bytesPerMB,
		maxBackups: cfg.MaxBackups,
		maxAge:     time.Duration(cfg.MaxAgeDays) * 24 * time.Hour,
		compress:   cfg.Compress,
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the path of the active log file.
func (r *RotatingFile) Path() string {
	return filepath.Join(r.dir, logFileName)
}

func (r *RotatingFile) open() error {
	file, err := os.OpenFile(r.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	r.file = file
	r.size = info.Size()
	return nil
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}

	if r.maxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *RotatingFile) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	r.file = nil

	backup := r.Path() + "." + time.Now().Format(backupStamp)
	for i := 1; fileExists(backup) || fileExists(backup+".gz"); i++ {
		backup = fmt.Sprintf("%s.%s-%d", r.Path(), time.Now().Format(backupStamp), i)
	}
	if err := os.Rename(r.Path(), backup); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	if r.compress {
		// An uncompressed backup is still a usable backup.
		if err := gzipFile(backup); err == nil {
			_ = os.Remove(backup)
		}
	}

	r.prune()
	return r.open()
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func gzipFile(path string) (err error) {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, logFilePerm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		return err
	}
	return zw.Close()
}

// prune removes backups older than maxAge, then the oldest beyond maxBackups.
func (r *RotatingFile) prune() {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return
	}

	var backups []string
	now := time.Now()

	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), logFileName+".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if r.maxAge > 0 && now.Sub(info.ModTime()) > r.maxAge {
			_ = os.Remove(filepath.Join(r.dir, e.Name()))
			continue
		}
		backups = append(backups, e.Name())
	}

	if r.maxBackups <= 0 || len(backups) <= r.maxBackups {
		return
	}

	// Names embed the rotation time, so lexical order is age order
	// even when mtimes tie.
	sort.Strings(backups)
	for _, name := range backups[:len(backups)-r.maxBackups] {
		_ = os.Remove(filepath.Join(r.dir, name))
	}
}

// Close closes the active file.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
