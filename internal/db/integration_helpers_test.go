//go:build integration
// +build integration

package db

import (
	"context"
	"testing"

	"github.com/tordrt/colgen/internal/builder"
	"github.com/tordrt/colgen/internal/schema"
)

// verifyEntitiesExist checks that all expected entities were extracted
func verifyEntitiesExist(t *testing.T, entities []schema.Entity, expected []string) {
	t.Helper()

	if len(entities) != len(expected) {
		t.Errorf("Expected %d entities, got %d", len(expected), len(entities))
	}

	for _, name := range expected {
		if findEntity(entities, name) == nil {
			t.Errorf("Expected entity %s not found", name)
		}
	}
}

// verifyKeyMembers checks that an entity has the expected key
func verifyKeyMembers(t *testing.T, entity *schema.Entity, expected []string) {
	t.Helper()

	if len(entity.KeyMembers) != len(expected) {
		t.Errorf("Expected key %v, got %v", expected, entity.KeyMembers)
		return
	}
	for i, k := range expected {
		if entity.KeyMembers[i] != k {
			t.Errorf("Expected key %v, got %v", expected, entity.KeyMembers)
			return
		}
	}
}

// verifyProperty checks that a property exists with the given kind and returns it
func verifyProperty(t *testing.T, entity *schema.Entity, name string, kind schema.PrimitiveKind) *schema.Property {
	t.Helper()

	p, ok := entity.Property(name)
	if !ok {
		t.Fatalf("Expected property %s not found in %s", name, entity.Name)
	}
	if p.Kind != kind {
		t.Errorf("Expected %s.%s to be %s, got %s", entity.Name, name, kind, p.Kind)
	}
	return p
}

// verifyGeneratedColumns builds every entity and runs the result through SQLite
func verifyGeneratedColumns(t *testing.T, entities []schema.Entity) {
	t.Helper()
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, MemoryDSN)
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	defer client.Close()

	verifier := NewVerifier(client)
	for _, entity := range entities {
		columns, err := builder.ForEntity(entity, &schema.Collation{Function: schema.CollationNoCase}).Build()
		if err != nil {
			t.Errorf("Failed to build %s: %v", entity.Name, err)
			continue
		}
		if err := verifier.Verify(ctx, entity.Name, columns); err != nil {
			t.Errorf("Generated columns of %s rejected: %v", entity.Name, err)
		}
	}
}
