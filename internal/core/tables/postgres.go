package tables

import (
	"github.com/JonMunkholm/gridview/internal/core"
)

// RegisterPostgres registers the tables read from the database.
// Call it once at startup after the pool is connected.
func RegisterPostgres(db core.DBTX) {
	register := func(info core.TableInfo, table string, fields []core.FieldSpec) {
		core.Register(core.TableDefinition{
			Info:   info,
			Fields: fields,
			Source: &core.PostgresSource{DB: db, Table: table, Fields: fields},
		})
	}

	register(core.TableInfo{
		Key:         "dealer_locations",
		Group:       "Database",
		Label:       "Dealer Locations",
		Description: "Dealer rooftops from the dealer_locations table",
	}, "public.dealer_locations", []core.FieldSpec{
		{Name: "dealer_name", Label: "Dealer", Type: core.FieldText, Sortable: true, Filterable: true, MinWidth: 18},
		{Name: "city", Label: "City", Type: core.FieldText, Sortable: true, Filterable: true},
		{Name: "state", Label: "State", Type: core.FieldEnum, Sortable: true, Filterable: true},
		{Name: "opened_on", Label: "Opened", Type: core.FieldDate, Sortable: true, Filterable: true},
		{Name: "lot_capacity", Label: "Lot Capacity", Type: core.FieldNumeric, Sortable: true},
		{Name: "active", Label: "Active", Type: core.FieldBool, Sortable: true, Filterable: true},
	})

	register(core.TableInfo{
		Key:         "policies",
		Group:       "Database",
		Label:       "Policies",
		Description: "Insurance policies from the policies table",
	}, "public.policies", []core.FieldSpec{
		{Name: "policy_number", Label: "Policy #", Type: core.FieldText, Sortable: true, Filterable: true},
		{Name: "insured_name", Label: "Insured", Type: core.FieldText, Sortable: true, Filterable: true, MinWidth: 20},
		{Name: "line", Label: "Line", Type: core.FieldEnum, Sortable: true, Filterable: true},
		{Name: "effective_date", Label: "Effective", Type: core.FieldDate, Sortable: true, Filterable: true},
		{Name: "expiration_date", Label: "Expires", Type: core.FieldDate, Sortable: true, Filterable: true},
		{Name: "premium", Label: "Premium", Type: core.FieldNumeric, Sortable: true, Render: core.Currency},
	})
}
