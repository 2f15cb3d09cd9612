package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"ccview.dev/cli/internal/application/ports"
)

// Log file limits
const (
	DefaultMaxFileSize int64 = 10 * 1024 * 1024
	DefaultMaxFiles          = 5
)

// RotatingFile is an append-only log file. Once a write would take it past
// its size cap it is renamed to path.1, older copies shift up by one, and
// the copy past maxFiles is removed.
type RotatingFile struct {
	mu       sync.Mutex
	path     string
	maxSize  int64
	maxFiles int
	file     *os.File
	size     int64
}

// OpenRotatingFile opens path for appending, creating its directory if needed
func OpenRotatingFile(path string, maxSize int64, maxFiles int) (*RotatingFile, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r := &RotatingFile{path: path, maxSize: maxSize, maxFiles: maxFiles}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	r.file, r.size = f, info.Size()
	return nil
}

// Write appends p, rotating first when p would not fit
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}
	if r.size > 0 && r.size+int64(len(p)) > r.maxSize {
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

	shiftErr := shiftBackups(r.path, r.maxFiles)
	if err := r.open(); err != nil {
		return err
	}
	return shiftErr
}

// Path returns the live log file
func (r *RotatingFile) Path() string {
	return r.path
}

// Close closes the live file
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

func backupName(path string, n int) string {
	return path + "." + strconv.Itoa(n)
}

func shiftBackups(path string, maxFiles int) error {
	if err := os.Remove(backupName(path, maxFiles)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove oldest log: %w", err)
	}
	for i := maxFiles - 1; i >= 1; i-- {
		if err := os.Rename(backupName(path, i), backupName(path, i+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to rotate log %d: %w", i, err)
		}
	}
	if err := os.Rename(path, backupName(path, 1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to rotate current log: %w", err)
	}
	return nil
}

// FileArchive implements ports.LogArchive over a RotatingFile's path
type FileArchive struct {
	path     string
	maxFiles int
}

// NewFileArchive reads the log at path and up to maxFiles rotated copies
func NewFileArchive(path string, maxFiles int) *FileArchive {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &FileArchive{path: path, maxFiles: maxFiles}
}

// Path returns the live log file
func (a *FileArchive) Path() string {
	return a.path
}

// Files lists the existing log files, oldest first
func (a *FileArchive) Files() []string {
	var files []string
	for i := a.maxFiles; i >= 1; i-- {
		if name := backupName(a.path, i); fileExists(name) {
			files = append(files, name)
		}
	}
	if fileExists(a.path) {
		files = append(files, a.path)
	}
	return files
}

// Export decodes every JSON line across the archive, oldest first. Lines
// that are not JSON objects are skipped.
func (a *FileArchive) Export() ([]ports.LogEntry, error) {
	entries := []ports.LogEntry{}
	for _, name := range a.Files() {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			var entry ports.LogEntry
			if json.Unmarshal(scanner.Bytes(), &entry) == nil && entry != nil {
				entries = append(entries, entry)
			}
		}
		err = scanner.Err()
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
	return entries, nil
}

// Clear truncates every file in the archive
func (a *FileArchive) Clear() error {
	var errs []error
	for _, name := range a.Files() {
		if err := os.Truncate(name, 0); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats counts exported entries by level
func (a *FileArchive) Stats() (*ports.LogStats, error) {
	entries, err := a.Export()
	if err != nil {
		return nil, err
	}
	stats := &ports.LogStats{Total: len(entries), ByLevel: map[string]int{}, Files: a.Files()}
	for _, entry := range entries {
		level := entry.Level()
		if level == "" {
			level = "unknown"
		}
		stats.ByLevel[level]++
	}
	return stats, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
