// Package lifecycle defines the contract every runtime subsystem ("manager")
// implements to be sequenced by a driver, and a reusable skeleton that supplies
// the bookkeeping so subsystems only write the hooks they need.
//
// A manager moves through a fixed sequence of phases:
//
//	Uninitialized -> Preloading -> PreloadComplete -> Initialized -> Releasing -> Released
//
// Preload and release are progress-reportable: Preload and Release return
// immediately and the driver polls PreloadProgress/ReleaseProgress once per
// frame until the matching IsPreloadDone/IsReleaseDone latch flips. Tick is
// only accepted while Initialized.
//
// Files:
//
//   - phase.go: Phase and Op enumerations.
//   - contract.go: the Manager interface, Env, Registry and the hook interfaces.
//   - skeleton.go: Skeleton, the default Manager built from hooks.
//   - errors.go: Fault and the sentinel errors.
//   - events.go: Event and EventPublisher used for instrumentation.
//
// Nothing in this package is safe for concurrent use; a driver calls one
// operation at a time.
package lifecycle
