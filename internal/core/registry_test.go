package core

import (
	"errors"
	"testing"
)

func TestRegister(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(TableDefinition{
		Info: TableInfo{Key: "b_table", Group: "Beta", Label: "B"},
		Fields: []FieldSpec{
			{Name: "one"},
			{Name: "two"},
		},
		Source: NewStaticSource(),
	})
	Register(TableDefinition{
		Info:   TableInfo{Key: "a_table", Group: "Beta", Label: "A"},
		Source: NewStaticSource(),
	})
	Register(TableDefinition{
		Info:   TableInfo{Key: "z_table", Group: "Alpha", Label: "Z"},
		Source: NewStaticSource(),
	})

	t.Run("get populates columns from fields", func(t *testing.T) {
		def, ok := Get("b_table")
		if !ok {
			t.Fatal("Get(b_table) not found")
		}
		if len(def.Info.Columns) != 2 || def.Info.Columns[0] != "one" || def.Info.Columns[1] != "two" {
			t.Errorf("Columns = %v, want [one two]", def.Info.Columns)
		}
	})

	t.Run("get unknown", func(t *testing.T) {
		if _, ok := Get("missing"); ok {
			t.Error("Get(missing) found, want not found")
		}
	})

	t.Run("all sorted by group then key", func(t *testing.T) {
		all := All()
		want := []string{"z_table", "a_table", "b_table"}
		if len(all) != len(want) {
			t.Fatalf("All() returned %d tables, want %d", len(all), len(want))
		}
		for i, def := range all {
			if def.Info.Key != want[i] {
				t.Errorf("All()[%d] = %s, want %s", i, def.Info.Key, want[i])
			}
		}
	})

	t.Run("by group", func(t *testing.T) {
		beta := ByGroup("Beta")
		if len(beta) != 2 || beta[0].Info.Key != "a_table" {
			t.Errorf("ByGroup(Beta) = %v", beta)
		}
		if got := ByGroup("Gamma"); len(got) != 0 {
			t.Errorf("ByGroup(Gamma) = %v, want empty", got)
		}
	})

	t.Run("groups", func(t *testing.T) {
		groups := Groups()
		if len(groups) != 2 || groups[0] != "Alpha" || groups[1] != "Beta" {
			t.Errorf("Groups() = %v, want [Alpha Beta]", groups)
		}
		if TableCount() != 3 {
			t.Errorf("TableCount() = %d, want 3", TableCount())
		}
	})
}

func TestRegister_Panics(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(TableDefinition{Info: TableInfo{Key: "dup"}, Source: NewStaticSource()})

	tests := []struct {
		name string
		def  TableDefinition
	}{
		{name: "duplicate key", def: TableDefinition{Info: TableInfo{Key: "dup"}, Source: NewStaticSource()}},
		{name: "nil source", def: TableDefinition{Info: TableInfo{Key: "nosrc"}}},
		{name: "empty key", def: TableDefinition{Source: NewStaticSource()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrInvalidTable) {
					t.Errorf("Register() panic = %v, want ErrInvalidTable", r)
				}
			}()
			Register(tt.def)
		})
	}

	if TableCount() != 1 {
		t.Errorf("TableCount() = %d, want rejected tables left out", TableCount())
	}
}

func TestValidateTable(t *testing.T) {
	src := NewStaticSource()
	fields := []FieldSpec{{Name: "id"}, {Name: "name"}}

	tests := []struct {
		name    string
		def     TableDefinition
		wantErr bool
	}{
		{"valid", TableDefinition{Info: TableInfo{Key: "t"}, Fields: fields, Source: src}, false},
		{"columns subset", TableDefinition{Info: TableInfo{Key: "t", Columns: []string{"name"}}, Fields: fields, Source: src}, false},
		{"no fields", TableDefinition{Info: TableInfo{Key: "t"}, Source: src}, false},
		{"empty key", TableDefinition{Fields: fields, Source: src}, true},
		{"no source", TableDefinition{Info: TableInfo{Key: "t"}, Fields: fields}, true},
		{"empty field name", TableDefinition{Info: TableInfo{Key: "t"}, Fields: []FieldSpec{{Name: ""}}, Source: src}, true},
		{"duplicate field", TableDefinition{Info: TableInfo{Key: "t"}, Fields: []FieldSpec{{Name: "id"}, {Name: "id"}}, Source: src}, true},
		{"unknown column", TableDefinition{Info: TableInfo{Key: "t", Columns: []string{"age"}}, Fields: fields, Source: src}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTable(tt.def)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTable) {
					t.Errorf("ValidateTable() error = %v, want ErrInvalidTable", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateTable() error = %v", err)
			}
		})
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(TableDefinition{Info: TableInfo{Key: "a", Group: "G"}, Source: NewStaticSource()})
	all := All()
	all[0].Info.Key = "changed"

	if _, ok := Get("a"); !ok {
		t.Error("Get(a) not found after mutating All() result")
	}
}
