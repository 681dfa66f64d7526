package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"store-monitor/internal/domain/report"
	"store-monitor/internal/domain/store"
	"store-monitor/internal/repository"
)

var errKVDown = errors.New("kv down")

type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  map[string]time.Duration
	down bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
}

func (kv *fakeKV) GetJSON(_ context.Context, key string, out any) (bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.down {
		return false, errKVDown
	}
	b, ok := kv.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (kv *fakeKV) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.down {
		return errKVDown
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	kv.data[key] = b
	kv.ttl[key] = ttl
	return nil
}

func (kv *fakeKV) SetJSONIfAbsent(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	kv.mu.Lock()
	if kv.down {
		kv.mu.Unlock()
		return false, errKVDown
	}
	_, exists := kv.data[key]
	kv.mu.Unlock()
	if exists {
		return false, nil
	}
	return true, kv.SetJSON(ctx, key, value, ttl)
}

func (kv *fakeKV) expire(key string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.data, key)
}

type fakeStoreRepo struct {
	polls    []store.PollObservation
	rules    []store.BusinessHourRule
	zones    map[uuid.UUID]string
	pollsErr error
	rulesErr error
}

func (r *fakeStoreRepo) ListPollsBetween(_ context.Context, start, end time.Time) ([]store.PollObservation, error) {
	if r.pollsErr != nil {
		return nil, r.pollsErr
	}
	out := make([]store.PollObservation, 0, len(r.polls))
	for _, p := range r.polls {
		if !p.TimestampUTC.Before(start) && !p.TimestampUTC.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeStoreRepo) ListBusinessHours(context.Context) ([]store.BusinessHourRule, error) {
	return r.rules, r.rulesErr
}

func (r *fakeStoreRepo) ListTimezones(context.Context) (map[uuid.UUID]string, error) {
	return r.zones, nil
}

type fakeReportRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]report.Record
	taken   map[uuid.UUID]bool
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{records: map[uuid.UUID]report.Record{}, taken: map[uuid.UUID]bool{}}
}

func (r *fakeReportRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[id]
	return ok || r.taken[id], nil
}

func (r *fakeReportRepo) Upsert(_ context.Context, id uuid.UUID, completed bool, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	rec, ok := r.records[id]
	if !ok {
		rec = report.Record{ReportID: id, CreatedAt: now}
	}
	rec.Completed = completed
	if path != "" {
		rec.ArtifactPath = path
	}
	rec.UpdatedAt = now
	r.records[id] = rec
	return nil
}

func (r *fakeReportRepo) Get(_ context.Context, id uuid.UUID) (report.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return report.Record{}, repository.ErrNotFound
	}
	return rec, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	jobs []report.Job
}

func (n *recordingNotifier) Notify(_ context.Context, job report.Job) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
}

func (n *recordingNotifier) statuses() []report.Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]report.Status, 0, len(n.jobs))
	for _, j := range n.jobs {
		out = append(out, j.Status)
	}
	return out
}
