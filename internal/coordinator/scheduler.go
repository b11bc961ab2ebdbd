package coordinator

import (
	"context"
	"fmt"
	"time"

	"tgnvoda/internal/components/assert"
	"tgnvoda/internal/components/chrono"
	"tgnvoda/internal/components/telemetry"
)

const report_scheduler_add = "scheduler.add"

// Scheduler refreshes coordinators on their configured interval.
type Scheduler struct {
	cron chrono.CronAPI
	tel  telemetry.API
}

func NewScheduler(cron chrono.CronAPI, tel telemetry.API) Scheduler {
	assert.NotNil(cron)
	assert.NotNil(tel)
	return Scheduler{cron: cron, tel: telemetry.NewScopedAPI("scheduler", tel)}
}

// Add runs a first refresh right away and then one every interval. The job
// is scheduled even when the first refresh fails, that error is returned.
func (s Scheduler) Add(ctx context.Context, c *Coordinator, interval time.Duration) error {
	assert.Positive(int64(interval), "interval")

	firstErr := c.Refresh(ctx)

	err := s.cron.Cron(chrono.EverySpec(interval), func() {
		if ctx.Err() != nil {
			return
		}
		// failures are already reported and kept on the snapshot
		_ = c.Refresh(ctx)
	})
	if err != nil {
		s.tel.ReportBroken(report_scheduler_add, err, c.EntryID)
		return fmt.Errorf("schedule %s: %w", c.EntryID, err)
	}

	return firstErr
}
