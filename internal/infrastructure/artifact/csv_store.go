package artifact

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"store-monitor/internal/domain/report"
	"store-monitor/internal/domain/uptime"
)

var Header = []string{
	"store_id",
	"uptime_last_hour",
	"downtime_last_hour",
	"uptime_last_day",
	"downtime_last_day",
	"uptime_last_week",
	"downtime_last_week",
}

// CSVStore keeps one CSV file per report under Dir.
type CSVStore struct {
	Dir string
}

func NewCSVStore(dir string) *CSVStore {
	if dir == "" {
		dir = "report_data"
	}
	return &CSVStore{Dir: dir}
}

func (s *CSVStore) Path(id uuid.UUID) string {
	return filepath.Join(s.Dir, fmt.Sprintf("report_%s.csv", id))
}

// Save writes rows sorted by store then window. Each line fills only its own
// window's pair: minutes for last_hour, hours for last_day and last_week.
// The file appears under its final name only once fully written.
func (s *CSVStore) Save(ctx context.Context, id uuid.UUID, rows []report.Row) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.Dir, fmt.Sprintf(".report_%s_*.csv", id))
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		tmp.Close()
		return "", err
	}
	for _, r := range sortRows(rows) {
		if err := ctx.Err(); err != nil {
			tmp.Close()
			return "", err
		}
		if err := w.Write(record(r)); err != nil {
			tmp.Close()
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := s.Path(id)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}

func sortRows(rows []report.Row) []report.Row {
	order := map[uptime.WindowKind]int{}
	for i, k := range uptime.Windows {
		order[k] = i
	}
	out := append([]report.Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].StoreID.String(), out[j].StoreID.String()
		if a != b {
			return a < b
		}
		return order[out[i].Window] < order[out[j].Window]
	})
	return out
}

func record(r report.Row) []string {
	rec := make([]string, len(Header))
	rec[0] = r.StoreID.String()

	up, down := r.UptimeMinutes, r.DowntimeMinutes
	col := 1
	switch r.Window {
	case uptime.LastHour:
		col = 1
	case uptime.LastDay:
		col, up, down = 3, up/60, down/60
	case uptime.LastWeek:
		col, up, down = 5, up/60, down/60
	}
	rec[col] = strconv.FormatFloat(up, 'f', 2, 64)
	rec[col+1] = strconv.FormatFloat(down, 'f', 2, 64)
	return rec
}
