package memcatalog

import (
	"testing"

	"akdb/pkg/collab"
	"akdb/pkg/lock"
)

func TestRegisterTableAndBlockAddresses(t *testing.T) {
	c := New()
	if err := c.RegisterTable("users", []string{"id", "name"}, 0, 3); err != nil {
		t.Fatalf("RegisterTable: %v", err)
	}

	addrs, err := c.BlockAddresses("users")
	if err != nil {
		t.Fatalf("BlockAddresses: %v", err)
	}
	want := []lock.BlockAddress{0, 1, 2}
	if len(addrs) != len(want) {
		t.Fatalf("got %v, want %v", addrs, want)
	}
	for i := range want {
		if addrs[i] != want[i] {
			t.Errorf("addrs[%d] = %d, want %d", i, addrs[i], want[i])
		}
	}
}

func TestBlockAddressesUnknownTable(t *testing.T) {
	c := New()
	if _, err := c.BlockAddresses("ghost"); err == nil {
		t.Fatal("expected an error for an unregistered table")
	}
}

func TestRegisterTableRejectsInvalidRange(t *testing.T) {
	c := New()
	if err := c.RegisterTable("bad", nil, 5, 2); err == nil {
		t.Fatal("expected an error for a backwards block range")
	}
	if err := c.RegisterTable("", nil, 0, 1); err == nil {
		t.Fatal("expected an error for an empty table name")
	}
}

func TestSchemaAttrsReturnsACopy(t *testing.T) {
	c := New()
	c.RegisterTable("users", []string{"id", "name"}, 0, 1)

	attrs, err := c.SchemaAttrs("users")
	if err != nil {
		t.Fatalf("SchemaAttrs: %v", err)
	}
	attrs[0] = "mutated"

	again, _ := c.SchemaAttrs("users")
	if again[0] != "id" {
		t.Error("mutating the returned slice should not affect the catalog's copy")
	}
}

func TestExecuteAppliesInsertAndRejectsUnknownTable(t *testing.T) {
	c := New()
	c.RegisterTable("users", []string{"id", "name"}, 0, 1)

	err := c.Execute([]collab.Command{
		{Table: "users", Kind: collab.Insert, Parameters: map[string]any{"id": 1, "name": "alice"}},
		{Table: "users", Kind: collab.Select},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	err = c.Execute([]collab.Command{{Table: "ghost", Kind: collab.Select}})
	if err == nil {
		t.Fatal("expected an error for a command against an unregistered table")
	}
}

func TestTablesReturnsSortedNames(t *testing.T) {
	c := New()
	c.RegisterTable("zebra", nil, 0, 1)
	c.RegisterTable("alpha", nil, 0, 1)

	got := c.Tables()
	want := []string{"alpha", "zebra"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Tables() = %v, want %v", got, want)
	}
}
