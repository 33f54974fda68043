// Package infra implements infrastructure concerns (process, emitter, folder opening).
package infra

import (
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/parcel/internal/domain"
)

// ProcessManagerImpl implements domain.ProcessManager using gopsutil.
type ProcessManagerImpl struct{}

// NewProcessManager creates a new process manager.
func NewProcessManager() domain.ProcessManager {
	return &ProcessManagerImpl{}
}

// CountByName returns how many running processes match name (case-insensitive).
func (pm *ProcessManagerImpl) CountByName(name string) (int, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue // Process may have exited
		}
		if strings.EqualFold(pname, name) {
			count++
		}
	}
	return count, nil
}

// KillByName terminates every process matching name (case-insensitive) and
// returns how many were killed. Kill failures on individual processes are
// skipped; a process may have exited between enumeration and kill.
func (pm *ProcessManagerImpl) KillByName(name string) (int, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, err
	}

	killed := 0
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue
		}
		if !strings.EqualFold(pname, name) {
			continue
		}
		if err := p.Kill(); err != nil {
			continue
		}
		killed++
	}
	return killed, nil
}

// GetCurrentPID returns the current process PID.
func (pm *ProcessManagerImpl) GetCurrentPID() int {
	return os.Getpid()
}

// Ensure ProcessManagerImpl implements domain.ProcessManager.
var _ domain.ProcessManager = (*ProcessManagerImpl)(nil)
