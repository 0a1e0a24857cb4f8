package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"ytlantern/internal/services"
)

// ErrLeaseHeld indicates another process holds the job directory lease.
var ErrLeaseHeld = errors.New("job lease already held")

// Lease is an advisory exclusive lock on one job directory. It stops two
// concurrent downloads of the same video and format from clobbering each
// other's partial files.
type Lease struct {
	lock *flock.Flock
}

const leaseFileName = ".lease"

// AcquireLease takes the job directory lease without blocking. The
// directory must already exist.
func AcquireLease(dir string) (*Lease, error) {
	lock := flock.New(filepath.Join(dir, leaseFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "storage", "acquire lease", fmt.Sprintf("lock %s", dir), err)
	}
	if !locked {
		return nil, services.Wrap(ErrLeaseHeld, "storage", "acquire lease", fmt.Sprintf("another download is active in %s", dir), nil)
	}
	return &Lease{lock: lock}, nil
}

// Release drops the lease. Safe to call on a nil lease.
func (l *Lease) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
