package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

const perfStatsInterval = 30 * time.Second

var perfMeter = otel.Meter("go.perf_stats")

// InstrumentPerfStats records process cpu, memory and goroutine gauges until
// ctx is done. Gauges go to whatever meter provider is installed, a no-op
// provider drops them.
func InstrumentPerfStats(ctx context.Context) error {
	cpuGauge, err := perfMeter.Float64Gauge("cpu_usage")
	if err != nil {
		return err
	}
	memoryGauge, err := perfMeter.Int64Gauge("allocated_mb")
	if err != nil {
		return err
	}
	liveObjectsGauge, err := perfMeter.Int64Gauge("live_objects")
	if err != nil {
		return err
	}
	goroutineGauge, err := perfMeter.Int64Gauge("goroutine_count")
	if err != nil {
		return err
	}

	go func() {
		var memStats runtime.MemStats
		ticker := time.NewTicker(perfStatsInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runtime.ReadMemStats(&memStats)

				// an interval of 0 compares against the previous call
				cpuUsage, err := cpu.Percent(0, false)
				if err == nil && len(cpuUsage) > 0 {
					cpuGauge.Record(ctx, cpuUsage[0])
				} else if err != nil {
					slog.WarnContext(ctx, "failed to read cpu usage", "err", err)
				}

				memoryGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
				liveObjectsGauge.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
				goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
