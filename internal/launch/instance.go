package launch

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Instance is the result of primary-instance election. The first launch to
// take the lock becomes the primary and owns the session; every other launch
// forwards its arguments to the primary and exits.
type Instance struct {
	lock    *flock.Flock
	primary bool
}

// Elect tries to become the primary instance by taking a non-blocking
// file lock. A held lock means another instance is already running.
func Elect(lockPath string) (*Instance, error) {
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock %s: %w", lockPath, err)
	}
	return &Instance{lock: lock, primary: ok}, nil
}

// IsPrimary reports whether this process won the election.
func (i *Instance) IsPrimary() bool {
	return i.primary
}

// Release drops the lock. Only meaningful for the primary; a no-op otherwise.
func (i *Instance) Release() error {
	if !i.primary {
		return nil
	}
	return i.lock.Unlock()
}
