// Package memcatalog is an in-memory reference implementation of the
// akdb/pkg/collab interfaces: block address enumeration, schema lookup, and
// command execution. It is sized for tests and the CLI demo, not for
// production storage. A real deployment swaps this package out behind the
// same three interfaces without touching pkg/lock, pkg/txn, or pkg/raopt.
package memcatalog

import (
	"fmt"
	"sort"
	"sync"

	"akdb/pkg/collab"
	"akdb/pkg/lock"
	"akdb/pkg/logging"
)

// TableInfo is the metadata memcatalog keeps per registered table.
type TableInfo struct {
	Name    string
	Columns []string
	From    lock.BlockAddress // inclusive
	To      lock.BlockAddress // exclusive
}

// Catalog is a name-keyed, mutex-guarded table registry that implements
// collab.BlockAddresser, collab.SchemaProvider, and collab.Executor.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*TableInfo
	rows   map[string][]map[string]any // naive in-memory row store for Execute
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{
		tables: make(map[string]*TableInfo),
		rows:   make(map[string][]map[string]any),
	}
}

// RegisterTable adds or replaces a table's metadata.
func (c *Catalog) RegisterTable(name string, columns []string, from, to lock.BlockAddress) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if to < from {
		return fmt.Errorf("block range [%d,%d) for table %q is invalid", from, to, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[name] = &TableInfo{Name: name, Columns: append([]string(nil), columns...), From: from, To: to}
	return nil
}

// BlockAddresses implements collab.BlockAddresser by returning every
// address in the table's registered [From, To) range, ascending. Workers
// acquire locks in this order, so every transaction touching the same table
// walks its blocks the same way.
func (c *Catalog) BlockAddresses(table string) ([]lock.BlockAddress, error) {
	c.mu.RLock()
	info, ok := c.tables[table]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	addrs := make([]lock.BlockAddress, 0, info.To-info.From)
	for a := info.From; a < info.To; a++ {
		addrs = append(addrs, a)
	}
	return addrs, nil
}

// SchemaAttrs implements collab.SchemaProvider.
func (c *Catalog) SchemaAttrs(table string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return append([]string(nil), info.Columns...), nil
}

// Execute implements collab.Executor. It appends each Insert command's
// parameters as a row to an in-memory row store keyed by table name; Select,
// Update and Delete commands are only logged and leave the row store
// unchanged. It exists to give the worker pipeline
// something real to call, not to model SQL semantics.
func (c *Catalog) Execute(commands []collab.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := logging.WithComponent("memcatalog")
	for _, cmd := range commands {
		if _, ok := c.tables[cmd.Table]; !ok {
			return fmt.Errorf("unknown table %q", cmd.Table)
		}
		switch cmd.Kind {
		case collab.Select:
			log.Debug("select", "table", cmd.Table)
		case collab.Insert:
			row, _ := cmd.Parameters.(map[string]any)
			c.rows[cmd.Table] = append(c.rows[cmd.Table], row)
		case collab.Update:
			log.Debug("update", "table", cmd.Table)
		case collab.Delete:
			log.Debug("delete", "table", cmd.Table)
		}
	}
	return nil
}

// Tables returns the registered table names in sorted order, for the CLI's
// demo workload.
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
