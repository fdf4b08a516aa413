// Package udev reports video capture devices appearing and disappearing to a
// scan lifecycle, using kernel uevents over netlink.
package udev

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"github.com/bft-labs/qrship/pkg/log"
	"github.com/bft-labs/qrship/pkg/scan"
)

// Monitor listens for video4linux add and remove uevents.
type Monitor struct {
	lifecycle *scan.Lifecycle
	logger    log.Logger

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewMonitor creates a monitor feeding lifecycle. Logger may be nil.
func NewMonitor(lifecycle *scan.Lifecycle, logger log.Logger) *Monitor {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Monitor{lifecycle: lifecycle, logger: logger}
}

// Start begins listening. A failure to open the netlink socket is logged and
// not returned: hotplug reporting is optional.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("udev monitor unavailable; camera hotplug will not be reported",
			log.Err(err),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, conn, quit)

	m.logger.Info("udev monitor started")
	return nil
}

// Stop shuts the monitor down. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	close(m.quit)
	m.quit = nil
	_ = m.conn.Close()
	m.conn = nil
	m.running = false

	m.logger.Info("udev monitor stopped")
}

// Running reports whether the monitor is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) monitorLoop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("udev monitor error", log.Err(err))
		}
	}
}

// buildMatcher matches SUBSYSTEM=video4linux with ACTION=add|remove.
func buildMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "video4linux",
		},
	})
	return rules
}

func (m *Monitor) handleEvent(uevent netlink.UEvent) {
	device := deviceName(uevent)

	var event scan.Event
	switch uevent.Action {
	case netlink.ADD:
		event = scan.EventDeviceFound
	case netlink.REMOVE:
		event = scan.EventNoDevice
	default:
		return
	}

	err := m.lifecycle.Apply(event, "udev "+string(uevent.Action)+" "+device)
	if errors.Is(err, scan.ErrInvalidTransition) {
		m.logger.Debug("ignoring camera event",
			log.String("device", device),
			log.String("event", event.String()),
			log.String("status", m.lifecycle.Status().String()),
		)
	}
}

// deviceName gets the device node from a uevent, e.g. /dev/video0.
func deviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		if strings.HasPrefix(devname, "/") {
			return devname
		}
		return "/dev/" + devname
	}

	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return "unknown"
	}
	parts := strings.Split(devpath, "/")
	return "/dev/" + parts[len(parts)-1]
}
