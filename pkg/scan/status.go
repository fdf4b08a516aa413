package scan

// Status is the camera status.
type Status int

const (
	StatusNoDevice Status = iota
	StatusPermissionNeeded
	StatusAccessing
	StatusReady
	StatusError
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusNoDevice:
		return "NoDevice"
	case StatusPermissionNeeded:
		return "PermissionNeeded"
	case StatusAccessing:
		return "Accessing"
	case StatusReady:
		return "Ready"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Event is a camera acquisition event reported by a camera collaborator.
type Event int

const (
	// EventNoDevice reports that device enumeration found no camera, or the camera went away.
	EventNoDevice Event = iota

	// EventDeviceFound reports that a camera is present.
	EventDeviceFound

	// EventPermissionNeeded reports that access was denied or must be requested.
	EventPermissionNeeded

	// EventPermissionGranted reports that the user granted camera access.
	EventPermissionGranted

	// EventStreamOpened reports that frames are flowing.
	EventStreamOpened

	// EventStreamFailed reports that opening or keeping the stream failed.
	EventStreamFailed
)

// String returns a human-readable representation of the event.
func (e Event) String() string {
	switch e {
	case EventNoDevice:
		return "NoDevice"
	case EventDeviceFound:
		return "DeviceFound"
	case EventPermissionNeeded:
		return "PermissionNeeded"
	case EventPermissionGranted:
		return "PermissionGranted"
	case EventStreamOpened:
		return "StreamOpened"
	case EventStreamFailed:
		return "StreamFailed"
	default:
		return "Unknown"
	}
}

// StatusListener receives edge-triggered status notifications.
type StatusListener interface {
	// OnStatusChange is called once per actual status change.
	OnStatusChange(previous, current Status, reason string)

	// OnReadyChange is called only when the status moves into or out of Ready.
	OnReadyChange(ready bool)
}

// next returns the status an event leads to from s, or false if the event
// is not valid in s.
func next(s Status, e Event) (Status, bool) {
	switch e {
	case EventNoDevice:
		return StatusNoDevice, true
	case EventDeviceFound:
		switch s {
		case StatusNoDevice, StatusError:
			return StatusAccessing, true
		case StatusAccessing, StatusPermissionNeeded, StatusReady:
			return s, true
		}
	case EventPermissionNeeded:
		switch s {
		case StatusAccessing, StatusReady, StatusPermissionNeeded:
			return StatusPermissionNeeded, true
		}
	case EventPermissionGranted:
		switch s {
		case StatusPermissionNeeded:
			return StatusAccessing, true
		case StatusAccessing, StatusReady:
			return s, true
		}
	case EventStreamOpened:
		switch s {
		case StatusAccessing, StatusReady:
			return StatusReady, true
		}
	case EventStreamFailed:
		switch s {
		case StatusAccessing, StatusReady, StatusPermissionNeeded, StatusError:
			return StatusError, true
		}
	}
	return s, false
}
