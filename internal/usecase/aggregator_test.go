package usecase

import (
	"context"
	"sort"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-monitor/internal/domain/report"
	"store-monitor/internal/domain/store"
	"store-monitor/internal/domain/uptime"
	"store-monitor/internal/logger"
	"store-monitor/internal/worker"
)

func syntheticPolls(stores []uuid.UUID, start time.Time, n int) []store.PollObservation {
	out := make([]store.PollObservation, 0, len(stores)*n)
	for si, id := range stores {
		for i := 0; i < n; i++ {
			out = append(out, store.PollObservation{
				StoreID:      id,
				TimestampUTC: start.Add(time.Duration(i*37+si*11) * time.Minute),
				Active:       (i+si)%3 != 0,
			})
		}
	}
	return out
}

func sortedRows(rows []report.Row) []report.Row {
	out := append([]report.Row(nil), rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].StoreID.String() < out[j].StoreID.String() })
	return out
}

func TestAggregator_SameRowsForOneAndManyWorkers(t *testing.T) {
	now := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)
	bounds, err := uptime.Bounds(uptime.LastWeek, now)
	require.NoError(t, err)

	stores := make([]uuid.UUID, 12)
	zones := map[uuid.UUID]string{}
	var rules []store.BusinessHourRule
	names := []string{"America/Chicago", "Asia/Kolkata", "Europe/Berlin", ""}
	for i := range stores {
		stores[i] = uuid.New()
		zones[stores[i]] = names[i%len(names)]
		if i%2 == 0 {
			rules = append(rules, store.BusinessHourRule{
				StoreID:    stores[i],
				DayOfWeek:  i % 7,
				StartLocal: store.TimeOfDay{Hour: 9},
				EndLocal:   store.TimeOfDay{Hour: 17},
			})
		}
	}
	polls := syntheticPolls(stores, bounds.Start, 250)
	byStore := uptime.GroupRules(rules)
	chicago, _ := time.LoadLocation("America/Chicago")

	run := func(workers int) WindowResult {
		a := NewAggregator(worker.NewPool(workers), logger.Discard())
		res, err := a.Aggregate(context.Background(), WindowInput{
			Kind:     uptime.LastWeek,
			Bounds:   bounds,
			Polls:    polls,
			Rules:    byStore,
			Timezone: newTimezoneResolver(zones, chicago, logger.Discard()),
		})
		require.NoError(t, err)
		return res
	}

	one := run(1)
	many := run(8)
	require.Len(t, one.Rows, len(stores))
	assert.Equal(t, sortedRows(one.Rows), sortedRows(many.Rows))
	assert.Zero(t, one.Failed)

	for _, r := range one.Rows {
		assert.Equal(t, uptime.LastWeek, r.Window)
		assert.Greater(t, r.UptimeMinutes+r.DowntimeMinutes, 0.0)
	}
}

func TestAggregator_IsolatesStoreFailure(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)
	bounds, _ := uptime.Bounds(uptime.LastHour, now)
	good, bad := uuid.New(), uuid.New()

	a := NewAggregator(worker.NewPool(2), logger.Discard())
	a.compute = func(in uptime.StoreInput, iv uptime.Interval) uptime.Result {
		if in.StoreID == bad {
			panic("corrupt input")
		}
		return uptime.ComputeStore(in, iv)
	}

	res, err := a.Aggregate(context.Background(), WindowInput{
		Kind:   uptime.LastHour,
		Bounds: bounds,
		Polls: []store.PollObservation{
			{StoreID: good, TimestampUTC: now.Add(-30 * time.Minute), Active: false},
			{StoreID: bad, TimestampUTC: now.Add(-10 * time.Minute), Active: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 1, res.Failed)

	for _, r := range res.Rows {
		switch r.StoreID {
		case good:
			assert.InDelta(t, 30, r.UptimeMinutes, 1e-9)
			assert.InDelta(t, 30, r.DowntimeMinutes, 1e-9)
		case bad:
			assert.Zero(t, r.UptimeMinutes)
			assert.Zero(t, r.DowntimeMinutes)
		}
	}
}

func TestAggregator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAggregator(worker.NewPool(1), logger.Discard())
	_, err := a.Aggregate(ctx, WindowInput{
		Kind:  uptime.LastHour,
		Polls: []store.PollObservation{{StoreID: uuid.New(), TimestampUTC: time.Now()}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimezoneResolver_FallsBack(t *testing.T) {
	chicago, _ := time.LoadLocation("America/Chicago")
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	r := newTimezoneResolver(map[uuid.UUID]string{a: "Asia/Kolkata", b: "Not/AZone"}, chicago, logger.Discard())

	assert.Equal(t, "Asia/Kolkata", r.Resolve(a).String())
	assert.Equal(t, chicago, r.Resolve(b))
	assert.Equal(t, chicago, r.Resolve(c))
}
