package pipeline

import (
	"fmt"

	"github.com/gofrs/flock"

	"github.com/ytget/yt-mp3/internal/model"
)

// runLock guards against a second process converting at the same time.
// A zero path disables it.
type runLock struct {
	lock *flock.Flock
}

func newRunLock(path string) *runLock {
	if path == "" {
		return &runLock{}
	}
	return &runLock{lock: flock.New(path)}
}

func (l *runLock) acquire() error {
	if l.lock == nil {
		return nil
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock %s: %w", l.lock.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w: another process holds %s", model.ErrBusy, l.lock.Path())
	}
	return nil
}

func (l *runLock) release() error {
	if l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
