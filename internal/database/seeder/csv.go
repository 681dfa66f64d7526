package seeder

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"store-monitor/internal/database"
)

const defaultBatchSize = 1000

type record map[string]string

func (r record) get(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

type importStats struct {
	Read     int
	Inserted int64
	Skipped  int
}

// readCSV streams every data row of r to fn keyed by header name. Rows fn
// rejects are counted as skipped and logged.
func readCSV(r io.Reader, log *logrus.Entry, required []string, fn func(line int, rec record) error) (importStats, error) {
	var stats importStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return stats, fmt.Errorf("empty csv")
		}
		return stats, err
	}
	cols := make([]string, len(header))
	present := map[string]struct{}{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cols[i] = h
		present[h] = struct{}{}
	}
	for _, alts := range required {
		found := false
		for _, k := range strings.Split(alts, "|") {
			if _, ok := present[k]; ok {
				found = true
				break
			}
		}
		if !found {
			return stats, fmt.Errorf("csv missing column %s", alts)
		}
	}

	line := 1
	for {
		row, err := cr.Read()
		line++
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return stats, err
			}
		}
		stats.Read++
		if err != nil {
			stats.Skipped++
			log.WithError(err).WithField("line", line).Warn("[Seeder] skipping unreadable row")
			continue
		}
		rec := make(record, len(cols))
		for i, c := range cols {
			if i < len(row) {
				rec[c] = row[i]
			}
		}
		if err := fn(line, rec); err != nil {
			var skip skipError
			if errors.As(err, &skip) {
				stats.Skipped++
				log.WithError(skip.err).WithField("line", line).Warn("[Seeder] skipping row")
				continue
			}
			return stats, err
		}
	}
}

type skipError struct{ err error }

func (e skipError) Error() string { return e.err.Error() }

func skip(err error) error { return skipError{err: err} }

func openCSV(path string) (*os.File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty csv path")
	}
	return os.Open(path)
}

// batcher groups statements into transactions of at most size rows.
type batcher struct {
	db    database.DB
	size  int
	tx    database.Tx
	count int
	total int64
}

func newBatcher(db database.DB, size int) *batcher {
	if size <= 0 {
		size = defaultBatchSize
	}
	return &batcher{db: db, size: size}
}

func (b *batcher) Exec(ctx context.Context, query string, args ...any) error {
	if b.tx == nil {
		tx, err := b.db.Begin(ctx)
		if err != nil {
			return err
		}
		b.tx = tx
	}
	n, err := b.tx.Exec(ctx, query, args...)
	if err != nil {
		_ = b.tx.Rollback(context.Background())
		b.tx = nil
		return err
	}
	b.total += n
	b.count++
	if b.count >= b.size {
		return b.Flush(ctx)
	}
	return nil
}

func (b *batcher) Flush(ctx context.Context) error {
	if b.tx == nil {
		return nil
	}
	tx := b.tx
	b.tx = nil
	b.count = 0
	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(context.Background())
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *batcher) Abort() {
	if b.tx != nil {
		_ = b.tx.Rollback(context.Background())
		b.tx = nil
	}
}
