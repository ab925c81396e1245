package testutil

import (
	"context"
	"database/sql/driver"
	"io"
	"testing"
)

func TestStubDBStoresFiltersAndDeletes(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()

	for _, label := range []string{"b", "a"} {
		if _, err := conn.ExecContext(ctx, "INSERT INTO snapshots(label,day) VALUES($1,$2)", []driver.NamedValue{
			{Value: label},
			{Value: int64(1)},
		}); err != nil {
			t.Fatalf("insert %s: %v", label, err)
		}
	}
	if _, err := conn.ExecContext(ctx, "INSERT INTO snapshots(label,day) VALUES($1,$2) ON CONFLICT(label) DO NOTHING", []driver.NamedValue{
		{Value: "a"},
		{Value: int64(9)},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(conn.Tables["snapshots"]) != 2 {
		t.Fatalf("expected upsert to replace the row, got %v", conn.Tables["snapshots"])
	}

	rows, err := conn.QueryContext(ctx, "SELECT label, day FROM snapshots ORDER BY label", nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil || dest[0] != "a" || dest[1] != int64(9) {
		t.Fatalf("expected first ordered row a/9, got %v (%v)", dest, err)
	}

	rows, err = conn.QueryContext(ctx, "SELECT day FROM snapshots WHERE label = $1", []driver.NamedValue{{Value: "b"}})
	if err != nil {
		t.Fatalf("filtered query: %v", err)
	}
	one := make([]driver.Value, 1)
	if err := rows.Next(one); err != nil || one[0] != int64(1) {
		t.Fatalf("expected filtered row, got %v (%v)", one, err)
	}
	if err := rows.Next(one); err != io.EOF {
		t.Fatalf("expected a single filtered row, got %v", err)
	}

	res, err := conn.ExecContext(ctx, "DELETE FROM snapshots WHERE label = $1", []driver.NamedValue{{Value: "zzz"}})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 0 {
		t.Fatalf("expected no rows affected, got %d", n)
	}
}
