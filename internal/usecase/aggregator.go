package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/domain/report"
	"store-monitor/internal/domain/store"
	"store-monitor/internal/domain/uptime"
	"store-monitor/internal/logger"
	"store-monitor/internal/worker"
)

// WindowInput is the reference and poll data for one report window.
type WindowInput struct {
	Kind     uptime.WindowKind
	Bounds   uptime.Interval
	Polls    []store.PollObservation
	Rules    map[uuid.UUID]map[int][]store.BusinessHourRule
	Timezone *timezoneResolver
}

type WindowResult struct {
	Rows   []report.Row
	Failed int
}

type Aggregator struct {
	pool   *worker.Pool
	logger *logrus.Logger

	// compute is swapped in tests to induce per-store failures.
	compute func(uptime.StoreInput, uptime.Interval) uptime.Result
}

func NewAggregator(pool *worker.Pool, l *logrus.Logger) *Aggregator {
	if pool == nil {
		pool = worker.NewPool(0)
	}
	return &Aggregator{pool: pool, logger: logger.OrDefault(l), compute: uptime.ComputeStore}
}

type storeOutcome struct {
	row    report.Row
	failed bool
}

// Aggregate computes one row per store seen in in.Polls. Stores are
// evaluated in parallel on the pool. A store whose computation panics is
// logged and reported as a zero row instead of failing the window.
func (a *Aggregator) Aggregate(ctx context.Context, in WindowInput) (WindowResult, error) {
	inputs := a.buildInputs(in)

	tasks := make([]worker.Task[storeOutcome], 0, len(inputs))
	for _, si := range inputs {
		tasks = append(tasks, func(ctx context.Context) (storeOutcome, error) {
			return a.evaluate(in.Kind, in.Bounds, si), nil
		})
	}

	outcomes, err := worker.Run(ctx, a.pool, tasks)
	if err != nil {
		return WindowResult{}, err
	}

	res := WindowResult{Rows: make([]report.Row, 0, len(outcomes))}
	for _, o := range outcomes {
		if o.failed {
			res.Failed++
		}
		res.Rows = append(res.Rows, o.row)
	}
	return res, nil
}

func (a *Aggregator) evaluate(kind uptime.WindowKind, bounds uptime.Interval, si uptime.StoreInput) (out storeOutcome) {
	out.row = report.Row{StoreID: si.StoreID, Window: kind}
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithFields(logrus.Fields{
				"store_id": si.StoreID,
				"window":   kind,
				"err":      fmt.Sprint(r),
			}).Error("[Report] store computation failed")
			out = storeOutcome{row: report.Row{StoreID: si.StoreID, Window: kind}, failed: true}
		}
	}()

	res := a.compute(si, bounds)
	out.row.UptimeMinutes = res.UptimeMinutes()
	out.row.DowntimeMinutes = res.DowntimeMinutes()
	return out
}

// buildInputs groups polls per store and resolves every location before the
// fan-out, so workers only read.
func (a *Aggregator) buildInputs(in WindowInput) []uptime.StoreInput {
	byStore := map[uuid.UUID][]store.PollObservation{}
	for _, p := range in.Polls {
		byStore[p.StoreID] = append(byStore[p.StoreID], p)
	}

	ids := make([]uuid.UUID, 0, len(byStore))
	for id := range byStore {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	tz := in.Timezone
	if tz == nil {
		tz = newTimezoneResolver(nil, nil, a.logger)
	}

	out := make([]uptime.StoreInput, 0, len(ids))
	for _, id := range ids {
		out = append(out, uptime.StoreInput{
			StoreID:  id,
			Location: tz.Resolve(id),
			Rules:    in.Rules[id],
			Polls:    byStore[id],
		})
	}
	return out
}
