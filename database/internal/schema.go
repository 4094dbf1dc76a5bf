package internal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTableMissing is returned by CheckColumns for a table without columns.
var ErrTableMissing = errors.New("table does not exist")

// Column is one column as a backend catalogue reports it.
type Column struct {
	Name     string
	Type     string
	Nullable bool
}

// RegistryColumns is the layout of the object registry table, with column
// types spelled the way a backend catalogue reports them.
func RegistryColumns(text, size, timestamp string) []Column {
	return []Column{
		{Name: "container", Type: text},
		{Name: "id", Type: text},
		{Name: "filename", Type: text},
		{Name: "content_type", Type: text},
		{Name: "etag", Type: text},
		{Name: "size_bytes", Type: size},
		{Name: "created_at", Type: timestamp},
		{Name: "updated_at", Type: timestamp},
	}
}

// SchemaError lists how an existing table differs from the registry layout.
type SchemaError struct {
	Table      string
	Missing    []string
	Mismatched []string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s does not match the registry layout", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing columns: %s", strings.Join(e.Missing, ", "))
	}
	for _, m := range e.Mismatched {
		fmt.Fprintf(&b, "; %s", m)
	}
	return b.String()
}

// CheckColumns compares the columns found for table with want. Types match
// case-insensitively and extra columns are allowed.
func CheckColumns(table string, want, found []Column) error {
	if len(found) == 0 {
		return fmt.Errorf("%w: %s", ErrTableMissing, table)
	}

	byName := make(map[string]Column, len(found))
	for _, c := range found {
		byName[c.Name] = c
	}

	serr := &SchemaError{Table: table}
	for _, w := range want {
		got, ok := byName[w.Name]
		if !ok {
			serr.Missing = append(serr.Missing, w.Name)
			continue
		}
		if !strings.EqualFold(got.Type, w.Type) {
			serr.Mismatched = append(serr.Mismatched,
				fmt.Sprintf("%s: expected %s, got %s", w.Name, w.Type, strings.ToLower(got.Type)))
		}
		if got.Nullable != w.Nullable {
			serr.Mismatched = append(serr.Mismatched,
				fmt.Sprintf("%s: expected nullable=%t, got nullable=%t", w.Name, w.Nullable, got.Nullable))
		}
	}

	if len(serr.Missing) == 0 && len(serr.Mismatched) == 0 {
		return nil
	}
	return serr
}
