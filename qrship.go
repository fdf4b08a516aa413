// Package qrship moves a payload between two devices over an animated QR code.
//
// The sending side plays the payload as an endless stream of text frames; the
// receiving side scans frames in whatever order and multiplicity the camera
// delivers and reassembles the payload once enough information has arrived.
//
// Example usage, both sides in one process:
//
//	sender, err := qrship.NewSender(sink)
//	if err != nil {
//		return err
//	}
//	defer sender.Close()
//	session, _ := sender.Play(payload, qrship.PlaybackOptions{Title: "backup"})
//
//	receiver, err := qrship.NewReceiver(qrship.WithOnComplete(func(p []byte) { ... }))
//	receiver.Ingest(scannedText)
//
// The building blocks live in pkg/fountain (codec), pkg/assembler (receive
// session), pkg/scan (camera status) and pkg/playback (send session).
package qrship

import (
	"fmt"

	"github.com/bft-labs/qrship/pkg/assembler"
	"github.com/bft-labs/qrship/pkg/fountain"
	"github.com/bft-labs/qrship/pkg/log"
	"github.com/bft-labs/qrship/pkg/playback"
	"github.com/bft-labs/qrship/pkg/scan"
)

// Version information for qrship.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)

// Sender plays payloads into a frame sink.
type Sender = playback.Controller

// PlaybackOptions configures one Play call.
type PlaybackOptions = playback.Options

// Frame is one frame handed to a FrameSink.
type Frame = playback.Frame

// FrameSink displays frames.
type FrameSink = playback.FrameSink

// Receiver reassembles one payload from scanned frames.
type Receiver = assembler.Assembler

// Outcome is the result of ingesting one scanned frame.
type Outcome = assembler.Outcome

// ReceiverOption configures a Receiver.
type ReceiverOption = assembler.Option

// Receiver options.
var (
	WithOnComplete     = assembler.WithOnComplete
	WithStateListener  = assembler.WithStateListener
	WithReceiverLogger = assembler.WithLogger
)

// Errors re-exported for errors.Is checks.
var (
	ErrMalformedFrame    = fountain.ErrMalformedFrame
	ErrSessionMismatch   = fountain.ErrSessionMismatch
	ErrInvalidTransition = scan.ErrInvalidTransition
	ErrClosed            = playback.ErrClosed
	ErrNoSession         = playback.ErrNoSession
)

// NewSender creates a playback controller. Close it to stop its goroutine.
func NewSender(sink FrameSink, opts ...playback.Option) (*Sender, error) {
	if err := CheckModuleVersions(); err != nil {
		return nil, err
	}
	return playback.NewController(sink, opts...), nil
}

// NewReceiver creates an empty receive session.
func NewReceiver(opts ...ReceiverOption) (*Receiver, error) {
	if err := CheckModuleVersions(); err != nil {
		return nil, err
	}
	return assembler.New(opts...), nil
}

// ModuleVersions returns the version of every sub-module.
func ModuleVersions() map[string]string {
	return map[string]string{
		"qrship":    Version,
		"fountain":  fountain.Version,
		"assembler": assembler.Version,
		"scan":      scan.Version,
		"playback":  playback.Version,
		"log":       log.Version,
	}
}

// moduleVersion pairs a module's version with its minimum compatible version.
type moduleVersion struct {
	version    string
	minVersion string
}

// CheckModuleVersions reports an error if any sub-module is older than its
// minimum compatible version.
func CheckModuleVersions() error {
	return checkVersions(map[string]moduleVersion{
		"fountain":  {fountain.Version, fountain.MinCompatibleVersion},
		"assembler": {assembler.Version, assembler.MinCompatibleVersion},
		"scan":      {scan.Version, scan.MinCompatibleVersion},
		"playback":  {playback.Version, playback.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
	})
}

func checkVersions(modules map[string]moduleVersion) error {
	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
