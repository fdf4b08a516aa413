package udev

import (
	"testing"

	"github.com/pilebones/go-udev/netlink"

	"github.com/bft-labs/qrship/pkg/scan"
)

func TestBuildMatcher(t *testing.T) {
	matcher := buildMatcher()

	tests := []struct {
		name  string
		event netlink.UEvent
		want  bool
	}{
		{
			name:  "camera added",
			event: netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "video4linux"}},
			want:  true,
		},
		{
			name:  "camera removed",
			event: netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"SUBSYSTEM": "video4linux"}},
			want:  true,
		},
		{
			name:  "camera changed",
			event: netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "video4linux"}},
			want:  false,
		},
		{
			name:  "block device added",
			event: netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "block"}},
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matcher.Evaluate(tt.event); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleEvent(t *testing.T) {
	lifecycle := scan.NewLifecycle(nil, nil)
	m := NewMonitor(lifecycle, nil)

	steps := []struct {
		action netlink.KObjAction
		want   scan.Status
	}{
		{netlink.REMOVE, scan.StatusNoDevice},
		{netlink.REMOVE, scan.StatusNoDevice},
		{netlink.ADD, scan.StatusAccessing},
		{netlink.CHANGE, scan.StatusAccessing},
	}
	for i, s := range steps {
		m.handleEvent(netlink.UEvent{
			Action: s.action,
			Env:    map[string]string{"SUBSYSTEM": "video4linux", "DEVNAME": "video0"},
		})
		if got := lifecycle.Status(); got != s.want {
			t.Fatalf("step %d (%s): status = %v, want %v", i, s.action, got, s.want)
		}
	}
}

func TestDeviceName(t *testing.T) {
	tests := []struct {
		env  map[string]string
		want string
	}{
		{map[string]string{"DEVNAME": "/dev/video2"}, "/dev/video2"},
		{map[string]string{"DEVNAME": "video0"}, "/dev/video0"},
		{map[string]string{"DEVPATH": "/devices/pci0000:00/usb1/video4linux/video1"}, "/dev/video1"},
		{map[string]string{}, "unknown"},
	}
	for _, tt := range tests {
		if got := deviceName(netlink.UEvent{Env: tt.env}); got != tt.want {
			t.Errorf("deviceName(%v) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestMonitorStopIdempotency(t *testing.T) {
	m := NewMonitor(scan.NewLifecycle(nil, nil), nil)
	m.Stop()
	m.Stop()
	if m.Running() {
		t.Error("Running() = true on a monitor that never started")
	}
}
