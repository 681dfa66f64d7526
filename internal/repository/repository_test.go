package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-monitor/internal/database"
	"store-monitor/internal/logger"
)

type fakeRows struct {
	rows [][]any
	i    int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Next() bool {
	r.i++
	return r.i <= len(r.rows)
}
func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.rows[r.i-1], dest)
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.vals, dest)
}

func assign(vals []any, dest []any) error {
	if len(vals) != len(dest) {
		return fmt.Errorf("scan dest mismatch")
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *uuid.UUID:
			*d = vals[i].(uuid.UUID)
		case *time.Time:
			*d = vals[i].(time.Time)
		case *bool:
			*d = vals[i].(bool)
		case *int16:
			*d = vals[i].(int16)
		case *string:
			*d = vals[i].(string)
		case **string:
			if vals[i] == nil {
				*d = nil
			} else {
				s := vals[i].(string)
				*d = &s
			}
		default:
			return fmt.Errorf("unsupported scan type %T", dest[i])
		}
	}
	return nil
}

type fakeQuerier struct {
	rows    [][]any
	row     fakeRow
	lastSQL string
	args    []any
}

func (q *fakeQuerier) Exec(_ context.Context, query string, args ...any) (int64, error) {
	q.lastSQL, q.args = query, args
	return 1, nil
}

func (q *fakeQuerier) Query(_ context.Context, query string, args ...any) (database.Rows, error) {
	q.lastSQL, q.args = query, args
	return &fakeRows{rows: q.rows}, nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, query string, args ...any) database.Row {
	q.lastSQL, q.args = query, args
	return q.row
}

var _ database.Querier = (*fakeQuerier)(nil)

func TestStoreRepository_ListBusinessHoursSkipsBadTimes(t *testing.T) {
	id := uuid.New()
	q := &fakeQuerier{rows: [][]any{
		{id, int16(0), "09:00:00", "17:30:00"},
		{id, int16(1), "bogus", "17:30:00"},
	}}
	r := NewPostgresStoreRepository(q, logger.Discard())

	rules, err := r.ListBusinessHours(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 0, rules[0].DayOfWeek)
	assert.Equal(t, "09:00:00", rules[0].StartLocal.String())
	assert.Equal(t, "17:30:00", rules[0].EndLocal.String())
}

func TestStoreRepository_ListPollsBetweenNormalizesUTC(t *testing.T) {
	id := uuid.New()
	loc := time.FixedZone("x", 5*3600)
	q := &fakeQuerier{rows: [][]any{{id, time.Date(2024, 6, 10, 12, 0, 0, 0, loc), true}}}
	r := NewPostgresStoreRepository(q, nil)

	start := time.Date(2024, 6, 10, 6, 0, 0, 0, time.UTC)
	polls, err := r.ListPollsBetween(context.Background(), start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, polls, 1)
	assert.Equal(t, time.UTC, polls[0].TimestampUTC.Location())
	assert.Equal(t, 7, polls[0].TimestampUTC.Hour())
	assert.Equal(t, start, q.args[0])
}

func TestStoreRepository_ListTimezones(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	q := &fakeQuerier{rows: [][]any{{a, "Asia/Kolkata"}, {b, "America/New_York"}}}

	m, err := NewPostgresStoreRepository(q, nil).ListTimezones(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{a: "Asia/Kolkata", b: "America/New_York"}, m)
}

func TestReportRepository_GetNotFound(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	_, err := NewPostgresReportRepository(q).Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportRepository_GetNullPath(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()
	q := &fakeQuerier{row: fakeRow{vals: []any{id, false, nil, now, now}}}

	rec, err := NewPostgresReportRepository(q).Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ReportID)
	assert.False(t, rec.Completed)
	assert.Empty(t, rec.ArtifactPath)
}

func TestReportRepository_UpsertPassesNullPathWhenEmpty(t *testing.T) {
	q := &fakeQuerier{}
	id := uuid.New()
	require.NoError(t, NewPostgresReportRepository(q).Upsert(context.Background(), id, false, ""))
	assert.Equal(t, id, q.args[0])
	assert.Nil(t, q.args[2])

	require.NoError(t, NewPostgresReportRepository(q).Upsert(context.Background(), id, true, "report_data/x.csv"))
	assert.Equal(t, true, q.args[1])
	assert.Equal(t, "report_data/x.csv", q.args[2])
}

func TestReportRepository_NilDB(t *testing.T) {
	var r *PostgresReportRepository
	_, err := r.Exists(context.Background(), uuid.New())
	assert.ErrorIs(t, err, database.ErrNilDB)
}
