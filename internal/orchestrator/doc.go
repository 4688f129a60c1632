// Package orchestrator drives a set of lifecycle managers through their
// phases. It is structured into small files by concern:
//
//   - orchestrator.go: Orchestrator type, constructor, registration.
//   - config.go: Config, Policy and package defaults; New applies defaults.
//   - stage.go: Stage enumeration.
//   - step.go: Start/Step/Shutdown, the per-frame state machine.
//   - run.go: Run, the clock-driven frame loop.
//   - errors.go: error types and helpers (IsAborted, IsStage).
//   - metrics.go: Prometheus collectors and the metrics event publisher.
//   - status.go: Status/Ready/Progress reporting.
//
// Managers are called one at a time in registration order (release runs in
// reverse order). A manager that faults is handled per Config.Policy: it is
// either isolated (marked failed and skipped from then on) or the whole run
// is aborted and the healthy managers are released.
package orchestrator
