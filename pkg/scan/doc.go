// Package scan tracks camera readiness on the receiving side and gates
// frame decoding on it.
//
// Camera status is independent of decode progress. It changes only through
// events pushed by a camera collaborator:
//
//	NoDevice --DeviceFound--> Accessing --StreamOpened--> Ready
//	Accessing --PermissionNeeded--> PermissionNeeded --PermissionGranted--> Accessing
//	Accessing|Ready|PermissionNeeded --StreamFailed--> Error --DeviceFound--> Accessing
//	any --NoDevice--> NoDevice
//
// A new [Lifecycle] starts in Accessing. Notifications are edge-triggered:
// an event that leaves the status unchanged notifies nobody, and
// OnReadyChange fires only when the status crosses the Ready boundary.
//
// [Scanner] binds a Lifecycle to an assembler.Assembler so that candidates
// are ingested only while the camera is Ready.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package scan
