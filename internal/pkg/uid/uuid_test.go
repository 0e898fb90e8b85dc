package uid

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUID_Generate(t *testing.T) {
	gen := NewUUID()

	a, b := gen.Generate(), gen.Generate()

	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}
	id, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Version() != 7 {
		t.Fatalf("version: got %d want 7", id.Version())
	}
}
