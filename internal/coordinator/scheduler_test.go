package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"tgnvoda/internal/components/telemetry"
	"tgnvoda/internal/scrapers/tgnvoda"

	"github.com/stretchr/testify/require"
)

type fakeCron struct {
	specs     []string
	callbacks []func()
	err       error
}

func (f *fakeCron) Cron(spec string, callback func()) error {
	if f.err != nil {
		return f.err
	}
	f.specs = append(f.specs, spec)
	f.callbacks = append(f.callbacks, callback)
	return nil
}

func (f *fakeCron) Stop() context.Context {
	return context.Background()
}

func TestSchedulerAdd(t *testing.T) {
	client := &fakeClient{data: sampleData()}
	c, _, _ := newTestCoordinator(t, client)
	cron := &fakeCron{}
	scheduler := NewScheduler(cron, &telemetry.Recorder{})

	err := scheduler.Add(context.Background(), c, 30*time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"@every 30m0s"}, cron.specs)
	require.Equal(t, []string{"authenticate", "fetch"}, client.Calls())

	cron.callbacks[0]()
	require.Len(t, client.Calls(), 4)
}

func TestSchedulerAddFirstRefreshFails(t *testing.T) {
	client := &fakeClient{authErr: tgnvoda.ErrAuth}
	c, _, _ := newTestCoordinator(t, client)
	cron := &fakeCron{}
	scheduler := NewScheduler(cron, &telemetry.Recorder{})

	err := scheduler.Add(context.Background(), c, time.Minute)
	require.ErrorIs(t, err, tgnvoda.ErrAuth)
	require.Len(t, cron.specs, 1)
}

func TestSchedulerAddCronError(t *testing.T) {
	client := &fakeClient{data: sampleData()}
	c, _, rec := newTestCoordinator(t, client)
	cron := &fakeCron{err: errors.New("bad spec")}
	scheduler := NewScheduler(cron, rec)

	err := scheduler.Add(context.Background(), c, time.Minute)
	require.ErrorContains(t, err, "bad spec")
	require.Len(t, rec.Reports("broken", report_scheduler_add), 1)
}

func TestSchedulerSkipsCancelled(t *testing.T) {
	client := &fakeClient{data: sampleData()}
	c, _, _ := newTestCoordinator(t, client)
	cron := &fakeCron{}
	scheduler := NewScheduler(cron, &telemetry.Recorder{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Add(ctx, c, time.Minute))
	cancel()

	cron.callbacks[0]()
	require.Len(t, client.Calls(), 2)
}
