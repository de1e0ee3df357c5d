package updater

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// pathLocks serializes merge cycles per document path inside this process.
// Each path owns a one-slot channel so waiting can be abandoned on ctx.
type pathLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newPathLocks() *pathLocks {
	return &pathLocks{slots: make(map[string]chan struct{})}
}

func (l *pathLocks) slot(path string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[path]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[path] = ch
	}
	return ch
}

// acquire blocks until path is free or ctx is done.
func (l *pathLocks) acquire(ctx context.Context, path string) (func(), error) {
	ch := l.slot(path)
	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

const flockPollInterval = 25 * time.Millisecond

// acquireFileLock takes an exclusive advisory lock shared with other
// processes, polling until ctx is done. An empty dir disables it.
func acquireFileLock(ctx context.Context, dir, path string) (func(), error) {
	if dir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	sum := sha1.Sum([]byte(path))
	name := filepath.Join(dir, hex.EncodeToString(sum[:])+".lock")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	for {
		ok, err := tryLock(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("lock %s: %w", name, err)
		}
		if ok {
			return func() {
				unlock(f)
				f.Close()
			}, nil
		}
		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-time.After(flockPollInterval):
		}
	}
}
