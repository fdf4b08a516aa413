// Package playback drives the sending side of an animated QR transfer.
//
// A [Controller] owns one goroutine and one ticker. [Controller.Play] splits a
// payload, shows the first frame at once and then hands the next frame to the
// [FrameSink] on every tick until the consumer calls [Controller.Finish].
//
// Only one session is in flight per controller. Play replaces the current
// session outright. The replaced session's Done channel never closes; callers
// that overlap Play calls must not wait on the old session.
//
// Changing the refresh speed restarts the ticker without touching the
// encoder position, so the frame sequence stays contiguous. Close stops the
// goroutine and waits for it, after which the sink sees no further frames.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package playback
