package hls

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"hlsmaker/internal/services"
)

// LockFileName is created inside the output directory while a run owns it.
const LockFileName = ".hlsmaker.lock"

// ErrOutputBusy reports that another run holds the output directory lock.
var ErrOutputBusy = fmt.Errorf("%w: output directory is in use by another run", services.ErrFilesystem)

func lockOutput(dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "hls", "lock output", dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrOutputBusy, dir)
	}
	return lock, nil
}
