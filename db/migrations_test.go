package db

import (
	"strings"
	"testing"
)

func TestUpOrderedAndNonEmpty(t *testing.T) {
	migrations, err := Up()
	if err != nil {
		t.Fatalf("Up() error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatalf("no migrations embedded")
	}
	for i, m := range migrations {
		if !strings.HasSuffix(m.Name, ".up.sql") {
			t.Fatalf("unexpected migration %s", m.Name)
		}
		if strings.TrimSpace(m.SQL) == "" {
			t.Fatalf("migration %s is empty", m.Name)
		}
		if i > 0 && migrations[i-1].Name >= m.Name {
			t.Fatalf("migrations out of order: %s before %s", migrations[i-1].Name, m.Name)
		}
	}
	if !strings.Contains(migrations[0].SQL, "CREATE TABLE IF NOT EXISTS movies") {
		t.Fatalf("first migration should create movies table")
	}
}
