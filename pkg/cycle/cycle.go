// Package cycle runs the synchronizer on an interval.
package cycle

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/sidkik/dirsync/pkg/sync"
)

// Syncer performs a single synchronization pass.
type Syncer interface {
	Sync(fromRoot, toRoot string, mode sync.Mode) sync.Stats
}

// Runner mirrors Source into Replica once per Interval.
type Runner struct {
	Source   string
	Replica  string
	Interval time.Duration

	Syncer Syncer
	Clock  clockwork.Clock
	Log    logrus.FieldLogger
}

// RunOnce runs one cycle. It first copies new and changed files from the
// source to the replica, and then deletes entries from the replica that
// aren't in the source.
func (r Runner) RunOnce() sync.Stats {
	stats := r.Syncer.Sync(r.Source, r.Replica, sync.Mirror)
	stats.Add(r.Syncer.Sync(r.Replica, r.Source, sync.Purge))

	r.Log.WithFields(logrus.Fields{
		"created": stats.Created,
		"updated": stats.Updated,
		"deleted": stats.Deleted,
		"failed":  stats.Failed,
	}).Debug("Cycle complete")
	return stats
}

// Run runs cycles until `ctx` is cancelled. Cancellation is only checked
// between cycles, so a cycle in progress always completes.
func (r Runner) Run(ctx context.Context) error {
	for {
		r.RunOnce()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.Clock.After(r.Interval):
		}
	}
}
