// Package coordinator keeps one refreshed snapshot of portal data per account
// and runs on-demand submit and history calls against the same session.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tgnvoda/internal/components/assert"
	"tgnvoda/internal/components/chrono"
	"tgnvoda/internal/components/telemetry"
	"tgnvoda/internal/scrapers/tgnvoda"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("tgnvoda/internal/coordinator")
	meter  = otel.Meter("tgnvoda/internal/coordinator")
)

const (
	report_coordinator_refresh = "coordinator.refresh"
	report_coordinator_submit  = "coordinator.submit-readings"
	report_coordinator_history = "coordinator.history"
	report_coordinator_fails   = "coordinator.consecutive-failures"
)

// a whole login + fetch sequence is abandoned after this long
const sequenceTimeout = 2 * time.Minute

// Client is the part of tgnvoda.Client the coordinator drives.
type Client interface {
	AccountID() string
	Authenticate(ctx context.Context) error
	FetchAccountAndBilling(ctx context.Context) (tgnvoda.AccountBilling, error)
	SubmitReadings(ctx context.Context, readings map[string]float64) (tgnvoda.SubmitResult, error)
	GetHistory(ctx context.Context, from, to string) ([]tgnvoda.HistoryEntry, error)
}

var _ Client = (*tgnvoda.Client)(nil)

// Snapshot is an immutable view of the last refresh. Data keeps the last
// successfully fetched value even after later refreshes fail.
type Snapshot struct {
	Data      *tgnvoda.AccountBilling
	UpdatedAt time.Time
	Err       error
	Failures  int
}

// Available reports whether the data is fresh, that is the most recent
// refresh succeeded.
func (s Snapshot) Available() bool {
	return s.Data != nil && s.Err == nil
}

type Coordinator struct {
	EntryID string

	client Client
	bus    *EventBus
	clock  chrono.API
	tel    telemetry.API

	refreshes metric.Int64Counter

	// serializes every call into the client, the session is not safe for concurrent use
	session sync.Mutex

	snapshotMutex sync.RWMutex
	snapshot      Snapshot
}

func New(entryID string, client Client, bus *EventBus, clock chrono.API, tel telemetry.API) (*Coordinator, error) {
	assert.NotEmptyStr(entryID)
	assert.NotNil(client)
	assert.NotNil(bus)
	assert.NotNil(clock)
	assert.NotNil(tel)

	refreshes, err := meter.Int64Counter(
		"tgnvoda.refreshes",
		metric.WithDescription("portal refreshes by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		EntryID:   entryID,
		client:    client,
		bus:       bus,
		clock:     clock,
		tel:       telemetry.NewScopedAPI(entryID, tel),
		refreshes: refreshes,
	}, nil
}

func (c *Coordinator) AccountID() string {
	return c.client.AccountID()
}

func (c *Coordinator) Snapshot() Snapshot {
	c.snapshotMutex.RLock()
	defer c.snapshotMutex.RUnlock()
	return c.snapshot
}

func (c *Coordinator) store(update func(prev Snapshot) Snapshot) Snapshot {
	c.snapshotMutex.Lock()
	defer c.snapshotMutex.Unlock()
	c.snapshot = update(c.snapshot)
	return c.snapshot
}

// Refresh logs in and fetches account and billing data into a new snapshot.
func (c *Coordinator) Refresh(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "coordinator:Refresh")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, sequenceTimeout)
	defer cancel()

	c.session.Lock()
	data, err := c.loginAndFetch(ctx)
	c.session.Unlock()

	now := c.clock.Now()
	if err != nil {
		snap := c.store(func(prev Snapshot) Snapshot {
			return Snapshot{
				Data:      prev.Data,
				UpdatedAt: prev.UpdatedAt,
				Err:       err,
				Failures:  prev.Failures + 1,
			}
		})
		c.tel.ReportBroken(report_coordinator_refresh, err)
		c.tel.ReportCount(report_coordinator_fails, int64(snap.Failures))
		c.refreshes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("entry", c.EntryID),
			attribute.Bool("success", false),
		))
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		return fmt.Errorf("refresh %s: %w", c.EntryID, err)
	}

	c.store(func(Snapshot) Snapshot {
		return Snapshot{Data: &data, UpdatedAt: now}
	})
	c.refreshes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entry", c.EntryID),
		attribute.Bool("success", true),
	))
	c.tel.ReportDebug("refreshed", c.EntryID, now)
	return nil
}

func (c *Coordinator) loginAndFetch(ctx context.Context) (tgnvoda.AccountBilling, error) {
	err := c.client.Authenticate(ctx)
	if err != nil {
		return tgnvoda.AccountBilling{}, err
	}
	return c.client.FetchAccountAndBilling(ctx)
}

// SubmitReadings logs in and submits readings keyed by meter row id.
func (c *Coordinator) SubmitReadings(ctx context.Context, readings map[string]float64) (tgnvoda.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "coordinator:SubmitReadings")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, sequenceTimeout)
	defer cancel()

	c.session.Lock()
	defer c.session.Unlock()

	err := c.client.Authenticate(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "login failed")
		return tgnvoda.SubmitResult{}, err
	}
	result, err := c.client.SubmitReadings(ctx, readings)
	if err != nil {
		c.tel.ReportBroken(report_coordinator_submit, err)
		span.SetStatus(codes.Error, "submit failed")
		return tgnvoda.SubmitResult{}, err
	}

	c.tel.ReportDebug(report_coordinator_submit, len(result.Applied), result.Success, result.Messages)
	return result, nil
}

// History logs in, fetches the reading history and publishes it on the bus.
func (c *Coordinator) History(ctx context.Context, from, to string) ([]tgnvoda.HistoryEntry, error) {
	ctx, span := tracer.Start(ctx, "coordinator:History")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, sequenceTimeout)
	defer cancel()

	c.session.Lock()
	items, err := c.historySequence(ctx, from, to)
	c.session.Unlock()
	if err != nil {
		c.tel.ReportBroken(report_coordinator_history, err)
		span.SetStatus(codes.Error, "history failed")
		return nil, err
	}

	c.bus.Publish(HistoryEvent{EntryID: c.EntryID, Items: items})
	c.tel.ReportCount(report_coordinator_history, int64(len(items)))
	return items, nil
}

func (c *Coordinator) historySequence(ctx context.Context, from, to string) ([]tgnvoda.HistoryEntry, error) {
	err := c.client.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return c.client.GetHistory(ctx, from, to)
}

// Sensors projects the current snapshot into sensor states.
func (c *Coordinator) Sensors() []SensorState {
	return Project(c.EntryID, c.AccountID(), c.Snapshot())
}
