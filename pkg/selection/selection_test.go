package selection

import (
	"errors"
	"testing"
	"time"

	"github.com/sdejongh/camharvest/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func names(records []models.RemoteFile) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func equalNames(t *testing.T, got []models.RemoteFile, want ...string) {
	t.Helper()
	gotNames := names(got)
	if len(gotNames) != len(want) {
		t.Fatalf("got %v, want %v", gotNames, want)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("got %v, want %v", gotNames, want)
		}
	}
}

var inventory = []models.RemoteFile{
	{Name: "zebra.jpg", ModTime: day(2024, 3, 10)},
	{Name: "Apple.jpg", ModTime: day(2024, 1, 5)},
	{Name: "mango.mp4", ModTime: day(2023, 12, 31)},
	{Name: "IMG_0001.tmp", ModTime: day(2024, 1, 6)},
	{Name: "nectar.jpg", ModTime: day(2024, 1, 5)},
}

// ============== Filter Tests ==============

func TestFilterDisabledReturnsInput(t *testing.T) {
	cfg := &models.SyncConfig{}
	kept, rejected := Filter(inventory, cfg)

	if rejected != 0 {
		t.Errorf("rejected = %d, want 0", rejected)
	}
	equalNames(t, kept, names(inventory)...)
}

func TestFilterLetterRange(t *testing.T) {
	t.Run("AppleAndZebra", func(t *testing.T) {
		cfg := &models.SyncConfig{LetterFilter: models.LetterRange{Enabled: true, Start: "A", End: "M"}}
		records := []models.RemoteFile{{Name: "apple.jpg"}, {Name: "zebra.jpg"}}

		kept, rejected := Filter(records, cfg)
		equalNames(t, kept, "apple.jpg")
		if rejected != 1 {
			t.Errorf("rejected = %d, want 1", rejected)
		}
	})

	t.Run("CaseInsensitiveBounds", func(t *testing.T) {
		cfg := &models.SyncConfig{LetterFilter: models.LetterRange{Enabled: true, Start: "a", End: "m"}}
		kept, rejected := Filter(inventory, cfg)
		equalNames(t, kept, "Apple.jpg", "mango.mp4", "IMG_0001.tmp")
		if rejected != 2 {
			t.Errorf("rejected = %d, want 2", rejected)
		}
	})

	t.Run("EmptyBoundDisablesRule", func(t *testing.T) {
		cfg := &models.SyncConfig{LetterFilter: models.LetterRange{Enabled: true, Start: "", End: "M"}}
		rules, warnings := NewRules(cfg)
		if len(warnings) != 1 {
			t.Fatalf("warnings = %v, want 1", warnings)
		}
		var w *models.ConfigParseWarning
		if !errors.As(warnings[0], &w) || w.Field != "letter_filter.start" {
			t.Errorf("warning = %v", warnings[0])
		}
		kept, rejected := rules.Apply(inventory)
		if rejected != 0 || len(kept) != len(inventory) {
			t.Errorf("disabled rule should keep everything, rejected = %d", rejected)
		}
	})
}

func TestFilterDateRange(t *testing.T) {
	t.Run("InclusiveBounds", func(t *testing.T) {
		cfg := &models.SyncConfig{DateFilter: models.DateRange{Enabled: true, Start: "2024-01-05", End: "2024-01-06"}}
		kept, rejected := Filter(inventory, cfg)
		equalNames(t, kept, "Apple.jpg", "IMG_0001.tmp", "nectar.jpg")
		if rejected != 2 {
			t.Errorf("rejected = %d, want 2", rejected)
		}
	})

	t.Run("StartAndEndOfDay", func(t *testing.T) {
		cfg := &models.SyncConfig{DateFilter: models.DateRange{Enabled: true, Start: "2024-01-05", End: "2024-01-05"}}
		records := []models.RemoteFile{
			{Name: "midnight.jpg", ModTime: time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local)},
			{Name: "last.jpg", ModTime: time.Date(2024, 1, 5, 23, 59, 59, 0, time.Local)},
			{Name: "next.jpg", ModTime: time.Date(2024, 1, 6, 0, 0, 0, 0, time.Local)},
			{Name: "before.jpg", ModTime: time.Date(2024, 1, 4, 23, 59, 59, 0, time.Local)},
		}
		kept, _ := Filter(records, cfg)
		equalNames(t, kept, "midnight.jpg", "last.jpg")
	})

	t.Run("MalformedDateSkipsRule", func(t *testing.T) {
		cfg := &models.SyncConfig{DateFilter: models.DateRange{Enabled: true, Start: "2024/01/05", End: "2024-01-06"}}
		rules, warnings := NewRules(cfg)
		if len(warnings) != 1 {
			t.Fatalf("warnings = %v, want 1", warnings)
		}
		if rules.Active() {
			t.Error("rule should be disabled")
		}
		kept, rejected := rules.Apply(inventory)
		if rejected != 0 || len(kept) != len(inventory) {
			t.Errorf("rejected = %d, want 0", rejected)
		}
	})
}

func TestFilterExcludePatterns(t *testing.T) {
	cfg := &models.SyncConfig{ExcludePatterns: []string{"*.TMP", "*.mp4", "[", ""}}
	rules, warnings := NewRules(cfg)
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want 1 for the bad pattern", warnings)
	}

	kept, rejected := rules.Apply(inventory)
	equalNames(t, kept, "zebra.jpg", "Apple.jpg", "nectar.jpg")
	if rejected != 2 {
		t.Errorf("rejected = %d, want 2", rejected)
	}
}

func TestFilterRulesAreIndependent(t *testing.T) {
	cfg := &models.SyncConfig{
		LetterFilter: models.LetterRange{Enabled: true, Start: "A", End: "N"},
		DateFilter:   models.DateRange{Enabled: true, Start: "2024-01-01", End: "2024-12-31"},
	}
	rules, warnings := NewRules(cfg)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}

	for _, f := range inventory {
		want := (&Rules{letter: rules.letter}).Keep(f) && (&Rules{date: rules.date}).Keep(f)
		if got := rules.Keep(f); got != want {
			t.Errorf("Keep(%s) = %v, want %v", f.Name, got, want)
		}
	}
}

// ============== Order Tests ==============

func TestOrder(t *testing.T) {
	t.Run("OldestFirstIsStable", func(t *testing.T) {
		got := Order(inventory, models.SortOldestFirst, 0)
		equalNames(t, got, "mango.mp4", "Apple.jpg", "nectar.jpg", "IMG_0001.tmp", "zebra.jpg")
	})

	t.Run("NewestFirstIsStable", func(t *testing.T) {
		got := Order(inventory, models.SortNewestFirst, 0)
		equalNames(t, got, "zebra.jpg", "IMG_0001.tmp", "Apple.jpg", "nectar.jpg", "mango.mp4")
	})

	t.Run("NameAscAndDescAreReverses", func(t *testing.T) {
		asc := Order(inventory, models.SortNameAsc, 0)
		desc := Order(inventory, models.SortNameDesc, 0)
		if len(asc) != len(desc) {
			t.Fatal("length mismatch")
		}
		for i := range asc {
			if asc[i].Name != desc[len(desc)-1-i].Name {
				t.Fatalf("asc %v is not the reverse of desc %v", names(asc), names(desc))
			}
		}
		// byte order: upper case sorts before lower case
		equalNames(t, asc, "Apple.jpg", "IMG_0001.tmp", "mango.mp4", "nectar.jpg", "zebra.jpg")
	})

	t.Run("LimitAfterSort", func(t *testing.T) {
		records := []models.RemoteFile{
			{Name: "jan.jpg", ModTime: day(2024, 1, 5)},
			{Name: "mar.jpg", ModTime: day(2024, 3, 10)},
		}
		equalNames(t, Order(records, models.SortNewestFirst, 1), "mar.jpg")
		equalNames(t, Order(records, models.SortOldestFirst, 1), "jan.jpg")
		equalNames(t, Order(records, models.SortOldestFirst, 5), "jan.jpg", "mar.jpg")
	})

	t.Run("DoesNotMutateInput", func(t *testing.T) {
		before := names(inventory)
		Order(inventory, models.SortNameDesc, 2)
		equalNames(t, inventory, before...)
	})
}
