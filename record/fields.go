package record

// FieldMap maps the six logical record fields onto the physical column
// names of a particular backing table. The zero value is not usable;
// start from DefaultFieldMap and override what differs:
//
//	fm := record.DefaultFieldMap()
//	fm.ValidFrom = "effective_from"
//	fm.Value = "rate"
//
// This replaces per-table accessor renaming with plain configuration:
// decoding consults the map once per row, no dynamic dispatch involved.
type FieldMap struct {
	ID         string
	ValidFrom  string
	ValidUntil string
	ReplacedBy string
	Value      string
	IsDefault  string
}

// DefaultFieldMap returns the conventional column names.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		ID:         "id",
		ValidFrom:  "valid_from",
		ValidUntil: "valid_until",
		ReplacedBy: "replaced_by_id",
		Value:      "value",
		IsDefault:  "is_default",
	}
}

// Columns returns the physical column names in canonical order.
func (fm FieldMap) Columns() []string {
	return []string{fm.ID, fm.ValidFrom, fm.ValidUntil, fm.ReplacedBy, fm.Value, fm.IsDefault}
}
