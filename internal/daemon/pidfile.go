// Package daemon manages the single-instance lock and PID file for the
// `percolated serve` command.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/gofrs/flock"
)

// ErrPIDFileNotFound is returned when the PID file doesn't exist.
var ErrPIDFileNotFound = errors.New("PID file not found")

// ErrAlreadyRunning is returned by TryLock when another process already
// holds the instance lock.
var ErrAlreadyRunning = errors.New("another percolated instance is already running")

// PIDFile manages a daemon process ID file plus the cross-process flock
// that makes "already running" detection race-free: two processes racing
// to start `percolated serve` can both pass a bare file-exists check, but
// only one can hold the flock.
type PIDFile struct {
	path  string
	flock *flock.Flock
}

// NewPIDFile creates a new PIDFile manager for the given path. The flock
// guarding it lives alongside it at path+".lock".
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{
		path:  path,
		flock: flock.New(path + ".lock"),
	}
}

// Path returns the PID file path.
func (p *PIDFile) Path() string {
	return p.path
}

// TryLock attempts to acquire the instance lock without blocking, then
// writes the current process's PID to path. Returns ErrAlreadyRunning if
// another process holds the lock.
func (p *PIDFile) TryLock() error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}

	acquired, err := p.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	if !acquired {
		return ErrAlreadyRunning
	}

	return p.Write()
}

// Write writes the current process's PID to the file.
func (p *PIDFile) Write() error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}

	pid := os.Getpid()
	data := []byte(strconv.Itoa(pid))

	if err := os.WriteFile(p.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	return nil
}

// Read reads the PID from the file.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrPIDFileNotFound
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}

	return pid, nil
}

// Unlock releases the instance lock and removes the PID file; the lock
// file itself is left in place. Safe to call even if TryLock was never
// called or already failed.
func (p *PIDFile) Unlock() error {
	if err := p.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release instance lock: %w", err)
	}
	return p.Remove()
}

// Remove deletes the PID file. Returns nil if the file doesn't exist.
func (p *PIDFile) Remove() error {
	err := os.Remove(p.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning checks if a process with the stored PID is running. Returns
// false if the PID file doesn't exist or the process isn't running.
func (p *PIDFile) IsRunning() bool {
	pid, err := p.Read()
	if err != nil {
		return false
	}

	return processExists(pid)
}

// Signal sends a signal to the process with the stored PID.
func (p *PIDFile) Signal(sig syscall.Signal) error {
	pid, err := p.Read()
	if err != nil {
		return fmt.Errorf("failed to read PID: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}

	if err := process.Signal(sig); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}

	return nil
}

// processExists checks if a process with the given PID exists.
func processExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix, FindProcess always succeeds, so we need to send signal 0
	// to check if the process actually exists
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
