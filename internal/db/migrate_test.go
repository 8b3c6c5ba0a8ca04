package db

import (
	"testing"
	"testing/fstest"
)

func TestMigrationNamesSortedAndFiltered(t *testing.T) {
	files := fstest.MapFS{
		"0002_events.sql":       {Data: []byte("SELECT 1;")},
		"0001_init.sql":         {Data: []byte("SELECT 1;")},
		"README.md":             {Data: []byte("notes")},
		"nested/0003_skip.sql":  {Data: []byte("SELECT 1;")},
		"0010_email_ledger.sql": {Data: []byte("SELECT 1;")},
	}

	names, err := migrationNames(files)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []string{"0001_init.sql", "0002_events.sql", "0010_email_ledger.sql"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %s at %d, got %s", want[i], i, names[i])
		}
	}
}
