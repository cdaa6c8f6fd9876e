package tables

import (
	"github.com/JonMunkholm/gridview/internal/core"
	"github.com/JonMunkholm/gridview/internal/view"
)

func init() {
	registerDealers()
	registerManufacturerAllocations()
	registerPremiumVehicles()
}

func registerDealers() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         "dealers",
			Group:       "Dealers",
			Label:       "Dealer Inventory",
			Description: "Quarterly new and used inventory per dealer",
		},
		Fields: []core.FieldSpec{
			{Name: "dealer_name", Label: "Dealer", Type: core.FieldText, Sortable: true, Filterable: true, MinWidth: 18},
			{Name: "period", Label: "Period", Type: core.FieldText, Filterable: true, MinWidth: 18},
			{Name: "new_inventory", Label: "New", Type: core.FieldNumeric, Sortable: true, Filterable: true},
			{Name: "used_inventory", Label: "Used", Type: core.FieldNumeric, Sortable: true, Filterable: true},
			{Name: "demo_vehicles", Label: "Demo", Type: core.FieldNumeric, Sortable: true},
			{Name: "shop_rentals", Label: "Shop Rentals", Type: core.FieldNumeric, Sortable: true},
			{Name: "company_owned", Label: "Company Owned", Type: core.FieldNumeric, Sortable: true},
		},
		Source: core.NewStaticSource(dealerRows()...),
	})
}

// dealerRows expands each dealer's four quarters into one row per quarter.
func dealerRows() []core.Row {
	type quarter struct {
		period    string
		new, used int
	}
	dealers := []struct {
		name                      string
		demo, rentals, companyOwn int
		quarters                  [4]quarter
	}{
		{"Dealer A", 5, 3, 8, [4]quarter{
			{"Jan. - March 2023", 50, 25}, {"April - June 2023", 40, 50},
			{"July - Sept. 2023", 75, 40}, {"Oct. - Dec. 2023", 60, 75},
		}},
		{"Dealer B", 2, 1, 4, [4]quarter{
			{"Jan. - March 2023", 30, 45}, {"April - June 2023", 35, 40},
			{"July - Sept. 2023", 20, 38}, {"Oct. - Dec. 2023", 42, 51},
		}},
		{"Lakeside Motors", 7, 0, 12, [4]quarter{
			{"Jan. - March 2023", 88, 64}, {"April - June 2023", 91, 70},
			{"July - Sept. 2023", 102, 66}, {"Oct. - Dec. 2023", 95, 80},
		}},
		{"Summit Auto Group", 4, 6, 9, [4]quarter{
			{"Jan. - March 2023", 61, 30}, {"April - June 2023", 58, 27},
			{"July - Sept. 2023", 64, 33}, {"Oct. - Dec. 2023", 70, 29},
		}},
	}

	rows := make([]core.Row, 0, len(dealers)*4)
	for _, d := range dealers {
		for _, q := range d.quarters {
			rows = append(rows, core.Row{
				"dealer_name":    d.name,
				"period":         q.period,
				"new_inventory":  q.new,
				"used_inventory": q.used,
				"demo_vehicles":  d.demo,
				"shop_rentals":   d.rentals,
				"company_owned":  d.companyOwn,
			})
		}
	}
	return rows
}

func registerManufacturerAllocations() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         "manufacturer_allocations",
			Group:       "Dealers",
			Label:       "Manufacturer Allocations",
			Description: "Share of each dealer's inventory per manufacturer",
		},
		Fields: []core.FieldSpec{
			{Name: "dealer_name", Label: "Dealer", Type: core.FieldText, Sortable: true, Filterable: true, MinWidth: 18},
			{Name: "manufacturer", Label: "Manufacturer", Type: core.FieldText, Sortable: true, Filterable: true},
			{Name: "percentage", Label: "Percentage", Type: core.FieldNumeric, Sortable: true, Render: core.Percent},
		},
		Source: core.NewStaticSource(
			core.Row{"dealer_name": "Dealer A", "manufacturer": "Toyota", "percentage": 25},
			core.Row{"dealer_name": "Dealer A", "manufacturer": "Ford", "percentage": 10},
			core.Row{"dealer_name": "Dealer A", "manufacturer": "Honda", "percentage": 15},
			core.Row{"dealer_name": "Dealer B", "manufacturer": "Chevrolet", "percentage": 40},
			core.Row{"dealer_name": "Dealer B", "manufacturer": "Ford", "percentage": 35},
			core.Row{"dealer_name": "Lakeside Motors", "manufacturer": "Subaru", "percentage": 55},
			core.Row{"dealer_name": "Lakeside Motors", "manufacturer": "Mazda", "percentage": 20.5},
			core.Row{"dealer_name": "Summit Auto Group", "manufacturer": "BMW", "percentage": 30},
			core.Row{"dealer_name": "Summit Auto Group", "manufacturer": "Audi", "percentage": 30},
			core.Row{"dealer_name": "Summit Auto Group", "manufacturer": "Porsche", "percentage": 12.5},
		),
	})
}

func registerPremiumVehicles() {
	// Values arrive as strings, the way the dealer forms submit them;
	// the field types coerce them for sorting.
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         "premium_vehicles",
			Group:       "Dealers",
			Label:       "Premium Vehicles",
			Description: "High-value vehicles held by dealers",
		},
		Fields: []core.FieldSpec{
			{Name: "vin", Label: "VIN", Type: core.FieldText, Sortable: true, Filterable: true, MinWidth: 17},
			{Name: "year", Label: "Year", Type: core.FieldNumeric, Sortable: true, Filterable: true, Align: view.AlignCenter},
			{Name: "make", Label: "Make", Type: core.FieldText, Sortable: true, Filterable: true},
			{Name: "model", Label: "Model", Type: core.FieldText, Sortable: true, Filterable: true},
			{Name: "wholesale_value", Label: "Wholesale Value", Type: core.FieldNumeric, Sortable: true, Render: core.Currency},
			{Name: "over_200k", Label: "Over $200K", Type: core.FieldBool, Sortable: true, Filterable: true},
			{Name: "owned_by_dealership", Label: "Owned", Type: core.FieldBool, Sortable: true, Filterable: true},
			{Name: "stored_at_dealership", Label: "Stored On Site", Type: core.FieldBool, Sortable: true, Filterable: true},
			{Name: "storage", Label: "Storage", Type: core.FieldText, Filterable: true},
			{Name: "primary_use", Label: "Primary Use", Type: core.FieldText, Filterable: true},
		},
		Source: core.NewStaticSource(
			vehicle("1234567899", "2022", "Toyota", "Camry", "25000", "No", "Yes", "Yes", "Indoor storage", "Test drives"),
			vehicle("WP0AB2A93KS114520", "2019", "Porsche", "911 Carrera", "$98,500", "No", "Yes", "Yes", "Indoor storage", "Showroom"),
			vehicle("ZFF79ALA4J0231744", "2018", "Ferrari", "GTC4Lusso", "$212,000", "Yes", "No", "Yes", "Climate controlled bay", "Consignment"),
			vehicle("SCA665C50LU101284", "2020", "Rolls-Royce", "Cullinan", "$305,000", "Yes", "Yes", "Yes", "Climate controlled bay", "Showroom"),
			vehicle("1G1YB2D40M5100731", "2021", "Chevrolet", "Corvette", "71,900", "No", "Yes", "No", "Off-site lot", "Demo"),
			vehicle("WBSJF0C51JB282216", "2018", "BMW", "M5", "", "No", "Yes", "Yes", "Outdoor covered", "Test drives"),
		),
	})
}

func vehicle(vin, year, make, model, value, over200k, owned, stored, storage, use string) core.Row {
	return core.Row{
		"vin":                  vin,
		"year":                 year,
		"make":                 make,
		"model":                model,
		"wholesale_value":      value,
		"over_200k":            over200k,
		"owned_by_dealership":  owned,
		"stored_at_dealership": stored,
		"storage":              storage,
		"primary_use":          use,
	}
}
