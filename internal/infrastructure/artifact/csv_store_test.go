package artifact

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-monitor/internal/domain/report"
	"store-monitor/internal/domain/uptime"
)

func TestCSVStore_SaveWritesUnitsPerWindow(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir)
	id := uuid.New()
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	path, err := s.Save(context.Background(), id, []report.Row{
		{StoreID: b, Window: uptime.LastHour, UptimeMinutes: 60},
		{StoreID: a, Window: uptime.LastWeek, UptimeMinutes: 600, DowntimeMinutes: 90},
		{StoreID: a, Window: uptime.LastHour, UptimeMinutes: 45.5, DowntimeMinutes: 14.5},
		{StoreID: a, Window: uptime.LastDay, UptimeMinutes: 1380, DowntimeMinutes: 60},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_"+id.String()+".csv"), path)
	assert.Equal(t, path, s.Path(id))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, recs, 5)
	assert.Equal(t, Header, recs[0])
	assert.Equal(t, []string{a.String(), "45.50", "14.50", "", "", "", ""}, recs[1])
	assert.Equal(t, []string{a.String(), "", "", "23.00", "1.00", "", ""}, recs[2])
	assert.Equal(t, []string{a.String(), "", "", "", "", "10.00", "1.50"}, recs[3])
	assert.Equal(t, []string{b.String(), "60.00", "0.00", "", "", "", ""}, recs[4])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCSVStore_SaveEmptyReport(t *testing.T) {
	s := NewCSVStore(filepath.Join(t.TempDir(), "nested"))
	path, err := s.Save(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "store_id,uptime_last_hour,downtime_last_hour,uptime_last_day,downtime_last_day,uptime_last_week,downtime_last_week\n", string(b))
}

func TestCSVStore_SaveHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewCSVStore(t.TempDir())
	id := uuid.New()

	_, err := s.Save(ctx, id, []report.Row{{StoreID: uuid.New(), Window: uptime.LastHour}})
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(s.Path(id))
	assert.True(t, os.IsNotExist(statErr))
}
