package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuirsvp/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "tuirsvp.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListReadings(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		id, err := st.InsertReading(ctx, model.ReadingStats{
			StartedAt:  start,
			EndedAt:    start.Add(time.Minute),
			Source:     "article.txt",
			WordsTotal: 300,
			WordsRead:  100 * (i + 1),
			WPM:        300,
			DurationMs: 60000,
			Completed:  i == 2,
		})
		if err != nil {
			t.Fatalf("insert reading: %v", err)
		}
		ids = append(ids, id)
	}

	all, err := st.ListReadings(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list readings: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(all))
	}
	if all[0].ReadingID != ids[0] || !all[2].Completed || all[1].Completed {
		t.Fatalf("unexpected readings: %+v", all)
	}
	if all[1].WordsRead != 200 || all[1].Source != "article.txt" || !all[1].EndedAt.Equal(base.Add(time.Hour+time.Minute)) {
		t.Fatalf("unexpected reading fields: %+v", all[1])
	}

	since := base.Add(90 * time.Minute)
	filtered, err := st.ListReadings(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list readings since: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ReadingID != ids[2] {
		t.Fatalf("unexpected filtered readings: %+v", filtered)
	}

	last, err := st.ListReadings(ctx, model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("list last readings: %v", err)
	}
	if len(last) != 2 || last[0].ReadingID != ids[1] {
		t.Fatalf("unexpected last readings: %+v", last)
	}
}
