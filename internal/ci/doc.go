// Package ci runs every task affected by a change set, optionally split
// across several parallel jobs.
//
// A CI run gathers the touched files from version control, selects every
// CI eligible task they affect, keeps this job's shard of that list, plans
// the targets together with their dependents, and drives the runner.
package ci
