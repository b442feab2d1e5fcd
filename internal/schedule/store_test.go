package schedule

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"support-intake-go/internal/types"
)

// backends runs fn against a fresh instance of every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	t.Run("json", func(t *testing.T) {
		s, err := OpenJSON(t.TempDir())
		if err != nil {
			t.Fatalf("OpenJSON: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(":memory:")
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

var fixedNow = time.Date(2025, 3, 18, 9, 30, 0, 0, time.Local)

func strPtr(s string) *string { return &s }

func TestNew(t *testing.T) {
	tests := []struct {
		label    string
		priority types.Priority
		date     string
	}{
		{"1 star", types.PriorityHigh, "2025-03-19"},
		{"2 stars", types.PriorityHigh, "2025-03-19"},
		{"3 stars", types.PriorityMedium, "2025-03-20"},
		{"4 stars", types.PriorityLow, "2025-03-21"},
		{"5 stars", types.PriorityLow, "2025-03-21"},
		{"neutral", types.PriorityLow, "2025-03-21"},
	}
	for _, tt := range tests {
		s := New("help me", tt.label, fixedNow)
		if s.Priority != tt.priority || s.Date != tt.date {
			t.Errorf("New(%q) priority=%s date=%s, want %s %s", tt.label, s.Priority, s.Date, tt.priority, tt.date)
		}
		if s.Time != "10:00 AM" {
			t.Errorf("Time = %q", s.Time)
		}
		if s.Status != types.StatusPending {
			t.Errorf("Status = %q", s.Status)
		}
		if s.CreatedAt != "2025-03-18 09:30:00" {
			t.Errorf("CreatedAt = %q", s.CreatedAt)
		}
		if s.Sentiment != tt.label || s.Query != "help me" {
			t.Errorf("Sentiment/Query = %q/%q", s.Sentiment, s.Query)
		}
		if s.ID != "" {
			t.Errorf("ID assigned before Append: %q", s.ID)
		}
	}
}

func TestNewID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := NewID()
		if len(id) != 8 {
			t.Fatalf("NewID() = %q, want 8 chars", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestUniqueID_Exhausted(t *testing.T) {
	_, err := uniqueID(func(string) (bool, error) { return true, nil })
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
}

func TestStore_AppendListRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		labels := []string{"1 star", "3 stars", "5 stars", "2 stars"}
		var created []types.Schedule
		for i, l := range labels {
			rec, err := s.Append(ctx, New("query "+string(rune('A'+i)), l, fixedNow))
			if err != nil {
				t.Fatalf("Append: %v", err)
			}
			if len(rec.ID) != 8 {
				t.Fatalf("Append ID = %q", rec.ID)
			}
			created = append(created, rec)
		}

		got, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != len(created) {
			t.Fatalf("List len = %d, want %d", len(got), len(created))
		}
		ids := map[string]bool{}
		for i := range got {
			if got[i] != created[i] {
				t.Errorf("record %d = %+v, want %+v", i, got[i], created[i])
			}
			ids[got[i].ID] = true
		}
		if len(ids) != len(created) {
			t.Errorf("ids not unique: %v", ids)
		}
	})
}

func TestStore_ListEmpty(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		got, err := s.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("List = %#v, want empty non-nil slice", got)
		}
	})
}

func TestStore_UpdateOnlyPatchedFields(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		first, err := s.Append(ctx, New("call me", "2 stars", fixedNow))
		if err != nil {
			t.Fatal(err)
		}
		second, err := s.Append(ctx, New("support please", "4 stars", fixedNow))
		if err != nil {
			t.Fatal(err)
		}

		ok, err := s.Update(ctx, first.ID, Patch{
			Status:    strPtr("Completed"),
			Notes:     strPtr("called back"),
			UpdatedAt: strPtr("2025-03-19 10:05:00"),
		})
		if err != nil || !ok {
			t.Fatalf("Update = %v, %v", ok, err)
		}

		got, found, err := s.Get(ctx, first.ID)
		if err != nil || !found {
			t.Fatalf("Get = %v, %v", found, err)
		}
		want := first
		want.Status = "Completed"
		want.Notes = "called back"
		want.UpdatedAt = "2025-03-19 10:05:00"
		if got != want {
			t.Errorf("updated = %+v, want %+v", got, want)
		}

		other, _, err := s.Get(ctx, second.ID)
		if err != nil {
			t.Fatal(err)
		}
		if other != second {
			t.Errorf("untouched record changed: %+v", other)
		}
	})
}

func TestStore_UpdatePartialPatch(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec, err := s.Append(ctx, New("callback", "3 stars", fixedNow))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Update(ctx, rec.ID, Patch{Notes: strPtr("first note")}); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Update(ctx, rec.ID, Patch{Status: strPtr("Scheduled")}); err != nil {
			t.Fatal(err)
		}
		got, _, err := s.Get(ctx, rec.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != "Scheduled" || got.Notes != "first note" || got.UpdatedAt != "" {
			t.Errorf("got %+v", got)
		}
	})
}

func TestStore_UpdateUnknownID(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec, err := s.Append(ctx, New("schedule", "1 star", fixedNow))
		if err != nil {
			t.Fatal(err)
		}
		ok, err := s.Update(ctx, "missing1", Patch{Status: strPtr("Done")})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if ok {
			t.Fatal("Update(unknown) = true")
		}
		all, err := s.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 1 || all[0] != rec {
			t.Errorf("store mutated: %+v", all)
		}
		if _, found, _ := s.Get(ctx, "missing1"); found {
			t.Error("Get(unknown) found a record")
		}
	})
}

func TestJSONStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenJSON(dir)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := s.Append(context.Background(), New("call back", "5 stars", fixedNow))
	if err != nil {
		t.Fatal(err)
	}

	s2, err := OpenJSON(dir)
	if err != nil {
		t.Fatal(err)
	}
	all, err := s2.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0] != rec {
		t.Errorf("reopened store = %+v", all)
	}
}

func TestJSONStore_CorruptFileIsStorageError(t *testing.T) {
	s, err := OpenJSON(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := s.List(ctx); !errors.Is(err, ErrStorage) {
		t.Errorf("List err = %v, want ErrStorage", err)
	}
	if _, err := s.Append(ctx, New("q", "1 star", fixedNow)); !errors.Is(err, ErrStorage) {
		t.Errorf("Append err = %v, want ErrStorage", err)
	}
	if _, err := s.Update(ctx, "x", Patch{}); !errors.Is(err, ErrStorage) {
		t.Errorf("Update err = %v, want ErrStorage", err)
	}
}

func TestSQLiteStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s1, err := OpenSQLite(dir)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatal(err)
	}
	s1.Close()

	s2, err := OpenSQLite(dir)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()
	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(v1) == 0 || len(v1) != len(v2) {
		t.Errorf("migrations %v -> %v", v1, v2)
	}
}

func TestParseMigrationVersion(t *testing.T) {
	if v, err := parseMigrationVersion("001_schedules.sql"); err != nil || v != 1 {
		t.Errorf("parse = %d, %v", v, err)
	}
	if _, err := parseMigrationVersion("schedules.sql"); err == nil {
		t.Error("expected error for missing prefix")
	}
	if _, err := parseMigrationVersion("abc_schedules.sql"); err == nil {
		t.Error("expected error for non-numeric prefix")
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open("mongo", t.TempDir()); err == nil {
		t.Error("expected error for unknown backend")
	}
	s, err := Open("json", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*JSONStore); !ok {
		t.Errorf("Open(json) = %T", s)
	}
	s2, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if _, ok := s2.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) = %T", s2)
	}
}
