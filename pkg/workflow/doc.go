// Package workflow parses and runs declarative YAML workflows.
//
// A workflow maps trigger events to named jobs. Jobs are independent: they
// run concurrently, in isolation from each other, and the failure of one
// job never prevents another from running. Inside a job, steps execute
// strictly sequentially and are gated by a condition that defaults to
// success(), so a single failing step skips every later step of its job
// unless that step opted into failure() or always().
//
// A step is either an inline shell block, interpreted by a builtin POSIX
// shell so behavior does not depend on the host shell, or a reference to a
// reusable action resolved through a Registry. A step either succeeds
// (exit code zero) or fails; there are no retries and no partial success.
//
// Observers can follow a run through the model.RunOption hook interface.
// The drawer and measure subpackages provide ready-made observers that
// render the run graph and record per-step wall time.
package workflow
