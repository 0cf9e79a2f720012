package ddl

// ColumnDef is one rendered column: name, SQL type, and whether it takes part
// in the table's natural key.
type ColumnDef struct {
	Name    string
	SQLType string
	Key     bool
}

// TableDef holds a table name and its ordered column list. Names are emitted
// as-is; the renderer quotes them.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}
