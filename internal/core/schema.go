package core

import (
	"fmt"

	"github.com/JonMunkholm/gridview/internal/view"
)

// Schema builds the view schema for the table's fields.
// Each accessor coerces the row's cell by the field type.
func (d TableDefinition) Schema() (*view.Schema[Row], error) {
	cols := make([]view.Column[Row], len(d.Fields))
	for i, spec := range d.Fields {
		name, typ := spec.Name, spec.Type
		cols[i] = view.Column[Row]{
			ID:         spec.Name,
			Label:      spec.Label,
			Sortable:   spec.Sortable,
			Filterable: spec.Filterable,
			Align:      fieldAlign(spec),
			MinWidth:   spec.MinWidth,
			Accessor: func(r Row) view.Value {
				return CellValue(r[name], typ)
			},
		}
	}

	schema, err := view.NewSchema(cols...)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", d.Info.Key, err)
	}
	return schema, nil
}

// Columns describes the table's fields for rendering.
func (d TableDefinition) Columns() []ColumnInfo {
	out := make([]ColumnInfo, len(d.Fields))
	for i, spec := range d.Fields {
		label := spec.Label
		if label == "" {
			label = spec.Name
		}
		out[i] = ColumnInfo{
			ID:         spec.Name,
			Label:      label,
			Type:       spec.Type,
			Sortable:   spec.Sortable,
			Filterable: spec.Filterable,
			Align:      fieldAlign(spec),
			MinWidth:   spec.MinWidth,
		}
	}
	return out
}

// FormatRows renders rows for display, one string per field in field order.
func (d TableDefinition) FormatRows(rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, len(d.Fields))
		for j, spec := range d.Fields {
			line[j] = FormatCell(row[spec.Name], spec)
		}
		out[i] = line
	}
	return out
}

// Field looks up a field by name.
func (d TableDefinition) Field(name string) (FieldSpec, bool) {
	for _, spec := range d.Fields {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// fieldAlign defaults numeric columns to the right and the rest to the left.
func fieldAlign(spec FieldSpec) view.Align {
	if spec.Align != "" {
		return spec.Align
	}
	if spec.Type == FieldNumeric {
		return view.AlignRight
	}
	return view.AlignLeft
}
