package uid

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestSnowflake_Generate(t *testing.T) {
	gen, err := NewSnowflakeNode(7)
	if err != nil {
		t.Fatalf("NewSnowflakeNode() error = %v", err)
	}

	seen := make(map[int64]struct{}, 1000)
	prev := int64(0)
	for range 1000 {
		id := gen.Generate()
		if id <= prev {
			t.Fatalf("ids must increase: %d after %d", id, prev)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
		prev = id
	}
}

func TestNewSnowflakeNode_OutOfRange(t *testing.T) {
	if _, err := NewSnowflakeNode(4096); err == nil {
		t.Fatal("expected error for node outside 0-1023")
	}
}

func TestUUID_GenerateV7(t *testing.T) {
	raw := NewUUID().Generate()

	id, err := uuid.Parse(raw)
	if err != nil {
		t.Fatalf("uuid.Parse(%q) error = %v", raw, err)
	}
	if id.Version() != 7 {
		t.Fatalf("version = %d, want 7", id.Version())
	}
}

func TestUUID_FallbackV4(t *testing.T) {
	gen := &UUID{newV7: func() (uuid.UUID, error) { return uuid.Nil, errors.New("entropy exhausted") }}

	id, err := uuid.Parse(gen.Generate())
	if err != nil {
		t.Fatalf("uuid.Parse() error = %v", err)
	}
	if id.Version() != 4 {
		t.Fatalf("version = %d, want 4", id.Version())
	}
}

var (
	_ NumberID = (*Snowflake)(nil)
	_ StringID = (*UUID)(nil)
)
