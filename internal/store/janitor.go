package store

import (
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/robfig/cron/v3"
)

const DefaultPruneSpec = "@every 1h"

type Pruner interface {
	PruneBefore(cutoff time.Time) (int64, error)
}

// Janitor deletes rows older than the retention window on a cron schedule.
type Janitor struct {
	pruner    Pruner
	retention time.Duration
	now       func() time.Time
	cron      *cron.Cron
}

func NewJanitor(p Pruner, retention time.Duration, spec string) (*Janitor, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", retention)
	}
	if spec == "" {
		spec = DefaultPruneSpec
	}
	j := &Janitor{pruner: p, retention: retention, now: time.Now, cron: cron.New()}
	if _, err := j.cron.AddFunc(spec, func() { _, _ = j.RunOnce() }); err != nil {
		return nil, fmt.Errorf("schedule prune %q: %w", spec, err)
	}
	return j, nil
}

// RunOnce prunes immediately.
func (j *Janitor) RunOnce() (int64, error) {
	cutoff := j.now().Add(-j.retention)
	n, err := j.pruner.PruneBefore(cutoff)
	if err != nil {
		hlog.Errorf("store prune error: %v", err)
		return n, err
	}
	if n > 0 {
		hlog.Infof("store prune: removed %d rows older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running prune to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
