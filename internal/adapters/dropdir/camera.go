// Package dropdir is a camera collaborator backed by a directory. An
// external scanner drops text files into the directory, one decoded QR
// candidate per line, and the camera reports each file's candidates.
package dropdir

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/bft-labs/qrship/pkg/log"
	"github.com/bft-labs/qrship/pkg/scan"
)

const (
	// LockName is the lock file that keeps two receivers off one directory.
	LockName = ".qrship.lock"

	// ScanExt is the extension of scan files.
	ScanExt = ".txt"

	debounceDelay = 50 * time.Millisecond
)

// ErrUnavailable is returned by Run when the directory cannot be used. The
// lifecycle carries the reason as a status.
var ErrUnavailable = errors.New("dropdir: scan directory unavailable")

// CandidateHandler receives the candidates of one scan file.
type CandidateHandler func(candidates []string)

// Camera watches a scan directory and drives a scan lifecycle.
type Camera struct {
	dir       string
	lifecycle *scan.Lifecycle
	handler   CandidateHandler
	logger    log.Logger
}

// New creates a camera for dir. Logger may be nil.
func New(dir string, lifecycle *scan.Lifecycle, handler CandidateHandler, logger log.Logger) *Camera {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Camera{dir: dir, lifecycle: lifecycle, handler: handler, logger: logger}
}

// Run acquires the directory and reports candidates until ctx is done or
// the directory goes away. Scan files already present are read first.
func (c *Camera) Run(ctx context.Context) error {
	if _, err := os.ReadDir(c.dir); err != nil {
		return c.unavailable(err)
	}
	c.apply(scan.EventDeviceFound, "scan directory present")
	c.apply(scan.EventPermissionGranted, "scan directory readable")

	lock := flock.New(filepath.Join(c.dir, LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return c.unavailable(err)
	}
	if !ok {
		c.apply(scan.EventStreamFailed, "scan directory locked by another receiver")
		return fmt.Errorf("%w: locked by another receiver", ErrUnavailable)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.apply(scan.EventStreamFailed, err.Error())
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		c.apply(scan.EventStreamFailed, err.Error())
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.apply(scan.EventStreamOpened, "watching "+c.dir)
	c.readExisting()

	pending := make(map[string]struct{})
	debounce := time.NewTimer(debounceDelay)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			c.apply(scan.EventNoDevice, "scan directory released")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) == filepath.Clean(c.dir) && event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				c.apply(scan.EventNoDevice, "scan directory removed")
				return fmt.Errorf("%w: directory removed", ErrUnavailable)
			}
			if filepath.Ext(event.Name) != ScanExt {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[event.Name] = struct{}{}
			debounce.Reset(debounceDelay)

		case <-debounce.C:
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			sort.Strings(names)
			clear(pending)
			for _, name := range names {
				c.readFile(name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("scan directory watch error", log.Err(err))
		}
	}
}

func (c *Camera) unavailable(err error) error {
	switch {
	case os.IsNotExist(err):
		c.apply(scan.EventNoDevice, "scan directory missing")
	case os.IsPermission(err):
		c.apply(scan.EventPermissionNeeded, "scan directory not accessible")
	default:
		c.apply(scan.EventStreamFailed, err.Error())
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (c *Camera) apply(e scan.Event, reason string) {
	if err := c.lifecycle.Apply(e, reason); err != nil {
		c.logger.Debug("camera event ignored", log.String("event", e.String()), log.Err(err))
	}
}

func (c *Camera) readExisting() {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*"+ScanExt))
	if err != nil {
		return
	}
	sort.Strings(matches)
	for _, name := range matches {
		c.readFile(name)
	}
}

func (c *Camera) readFile(name string) {
	data, err := os.ReadFile(name)
	if err != nil {
		// Removed between the event and the read.
		c.logger.Debug("scan file unreadable", log.String("file", name), log.Err(err))
		return
	}
	candidates := splitCandidates(data)
	if len(candidates) == 0 {
		return
	}
	c.logger.Debug("scan file read",
		log.String("file", filepath.Base(name)),
		log.Int("candidates", len(candidates)),
	)
	c.reopen()
	c.handler(candidates)
}

// reopen reports the stream open again when another producer, such as the
// udev monitor after a replug, moved the lifecycle back to Accessing while
// the directory is still watched.
func (c *Camera) reopen() {
	if c.lifecycle.Status() == scan.StatusAccessing {
		c.apply(scan.EventStreamOpened, "scan directory still watched")
	}
}

// splitCandidates returns the non-empty trimmed lines of data.
func splitCandidates(data []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out
}
