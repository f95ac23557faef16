//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/tordrt/colgen/internal/schema"
)

func mysqlTestURL() string {
	// Use environment variable if set, otherwise use default test connection string
	if url := os.Getenv("MYSQL_TEST_URL"); url != "" {
		return url
	}
	return "root:testpassword@tcp(localhost:3306)/testdb"
}

func TestMySQLExtraction(t *testing.T) {
	ctx := context.Background()

	client, err := NewMySQLClient(ctx, mysqlTestURL())
	if err != nil {
		t.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer client.Close()

	entities, err := NewMySQLExtractor(client, "testdb").ExtractEntities(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to extract entities: %v", err)
	}

	verifyEntitiesExist(t, entities, []string{"users", "products", "orders", "order_items"})

	users := findEntity(entities, "users")
	if users == nil {
		t.Fatal("Users entity not found")
	}
	verifyKeyMembers(t, users, []string{"id"})

	id := verifyProperty(t, users, "id", schema.KindInteger)
	if !id.Identity || !id.Decorations.Autoincrement {
		t.Error("Expected users.id to be auto_increment")
	}
	verifyProperty(t, users, "username", schema.KindString)
	// ENUM('active','inactive','banned') holds labels
	verifyProperty(t, users, "status", schema.KindString)

	verifyGeneratedColumns(t, entities)
}

func TestMySQLSpecificTables(t *testing.T) {
	ctx := context.Background()

	client, err := NewMySQLClient(ctx, mysqlTestURL())
	if err != nil {
		t.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer client.Close()

	// Extract only users and products tables
	entities, err := NewMySQLExtractor(client, "testdb").ExtractEntities(ctx, []string{"users", "products"})
	if err != nil {
		t.Fatalf("Failed to extract entities: %v", err)
	}

	verifyEntitiesExist(t, entities, []string{"users", "products"})
	if findEntity(entities, "orders") != nil {
		t.Error("Should not include orders")
	}
}
