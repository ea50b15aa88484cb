package ci

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/monogrid/internal/target"
)

// ErrInvalidShard is returned for an impossible job index or job total.
var ErrInvalidShard = errors.New("invalid job sharding")

// Shard selects a contiguous slice of the runnable targets.
type Shard struct {
	Job      int
	JobTotal int
}

// Batch returns the targets assigned to this shard. Targets are sorted
// first; every job gets len/total targets, and the last job also takes the
// remainder. The union over all jobs covers each target exactly once.
func (s Shard) Batch(targets []target.Target) ([]target.Target, error) {
	if s.JobTotal <= 0 {
		return nil, fmt.Errorf("%w: job total must be positive, got %d", ErrInvalidShard, s.JobTotal)
	}
	if s.Job < 0 || s.Job >= s.JobTotal {
		return nil, fmt.Errorf("%w: job index %d is outside 0..%d", ErrInvalidShard, s.Job, s.JobTotal-1)
	}

	sorted := append([]target.Target(nil), targets...)
	target.Sort(sorted)

	batchSize := len(sorted) / s.JobTotal
	switch {
	case s.Job == s.JobTotal-1:
		return sorted[batchSize*s.Job:], nil
	case s.Job == 0:
		return sorted[:batchSize], nil
	}
	return sorted[batchSize*s.Job : batchSize*(s.Job+1)], nil
}

// DistributeTargetsAcrossJobs returns this job's batch. A nil shard is a
// single job that runs everything.
func DistributeTargetsAcrossJobs(targets []target.Target, shard *Shard) ([]target.Target, error) {
	if shard == nil {
		return targets, nil
	}
	return shard.Batch(targets)
}
