package migration

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestUp_EmptyDSN(t *testing.T) {
	if err := Up("  "); !errors.Is(err, ErrEmptyDSN) {
		t.Fatalf("Up() error = %v, want ErrEmptyDSN", err)
	}
}

func TestFiles_Paired(t *testing.T) {
	entries, err := fs.ReadDir(files, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected file %q", name)
		}
	}

	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}
