// Package model provides the data structures shared by the workflow packages.
// It defines the workflow document (workflows, jobs, steps), the status and
// conclusion taxonomy of a run, the per-run result types, and the RunOption
// hook interface implemented by observers such as the drawer and the measure.
package model
