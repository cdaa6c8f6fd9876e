package tables

import (
	"github.com/JonMunkholm/gridview/internal/core"
)

func init() {
	registerCustomers()
	registerInsureds()
}

func registerCustomers() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         "customers",
			Group:       "Accounts",
			Label:       "Customers",
			Description: "Customer contacts and outstanding balances",
		},
		Fields: []core.FieldSpec{
			{Name: "name", Label: "Name", Type: core.FieldText, Sortable: true, Filterable: true, MinWidth: 16},
			{Name: "age", Label: "Age", Type: core.FieldNumeric, Sortable: true, Filterable: true},
			{Name: "email", Label: "Email", Type: core.FieldText, Sortable: true, Filterable: true, MinWidth: 24},
			{Name: "balance", Label: "Balance", Type: core.FieldNumeric, Sortable: true, Render: core.Currency},
			{Name: "since", Label: "Customer Since", Type: core.FieldDate, Sortable: true, Filterable: true},
		},
		Source: core.NewStaticSource(
			customer("John Doe", 28, "john@example.com", 1250.50, "2019-03-14"),
			customer("Jane Smith", 34, "jane@example.com", 980.00, "2020-07-01"),
			customer("Alex Johnson", 41, "alex@example.com", 15000.75, "2015-11-23"),
			customer("Maria Lopez", 25, "maria@example.com", 0, "2023-01-09"),
			customer("Wei Chen", 52, "wei.chen@example.com", -320.10, "2012-05-30"),
			customer("Fatima Noor", 37, "fatima@example.com", 4410.00, "2018-09-17"),
			customer("Tom O'Brien", 63, "tobrien@example.com", 212.99, "2010-02-02"),
			customer("Sofia Rossi", 29, "sofia.rossi@example.com", 7800.00, "2021-12-12"),
			customer("Kenji Sato", 45, "kenji@example.com", 56.25, "2016-04-04"),
			customer("Olga Petrova", 31, "olga@example.com", 3025.40, "2022-06-21"),
			customer("Samuel Adeyemi", 48, "samuel@example.com", 910.00, "2014-08-08"),
			customer("Lena Fischer", 22, "lena@example.com", 18.00, "2024-03-03"),
		),
	})
}

func customer(name string, age int, email string, balance float64, since string) core.Row {
	return core.Row{
		"name":    name,
		"age":     age,
		"email":   email,
		"balance": balance,
		"since":   since,
	}
}

func registerInsureds() {
	// Addresses are captured with full state names in places; the table
	// always shows the two-letter code.
	rows := []core.Row{
		insured("1001", "Company", "Acme Manufacturing", "120 Industrial Way", "Dayton", "Ohio", "45402"),
		insured("1002", "Individual", "Grace Hopper", "44 Harbor St", "Arlington", "VA", "22201"),
		insured("1003", "Company", "Blue Ridge Logistics", "9 Summit Rd", "Asheville", "north carolina", "28801"),
		insured("1004", "Individual", "Carlos Mendes", "731 Palm Ave", "Miami", "Florida", "33101"),
		insured("1005", "Company", "Northwind Traders", "500 Pike St", "Seattle", "WA", "98101"),
		insured("1006", "Individual", "Ada Lovelace", "12 Elm Ct", "Boston", "Massachusetts", "02108"),
		insured("1007", "Company", "Prairie Grain Co-op", "1 Silo Ln", "Fargo", "nd", "58102"),
		insured("1008", "Individual", "Hiro Tanaka", "88 Aloha Blvd", "Honolulu", "Hawaii", "96813"),
		insured("1009", "Company", "Desert Sun Solar", "2400 Mesa Dr", "Phoenix", " Arizona ", "85001"),
		insured("1010", "Individual", "Nora Quinn", "301 Lake Shore Dr", "Chicago", "IL", "60601"),
		insured("1011", "Company", "Granite State Insurance Brokers", "77 Main St", "Concord", "New Hampshire", "03301"),
	}
	normalizeField(rows, "state", StateCode)

	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         "insureds",
			Group:       "Accounts",
			Label:       "Insureds",
			Description: "Insured parties and their mailing addresses",
		},
		Fields: []core.FieldSpec{
			{Name: "id", Label: "ID", Type: core.FieldText, Sortable: true, Filterable: true},
			{Name: "type", Label: "Type", Type: core.FieldEnum, Sortable: true, Filterable: true},
			{Name: "name", Label: "Name", Type: core.FieldText, Sortable: true, Filterable: true, MinWidth: 20},
			{Name: "address", Label: "Address", Type: core.FieldText, Filterable: true, MinWidth: 20},
			{Name: "city", Label: "City", Type: core.FieldText, Sortable: true, Filterable: true},
			{Name: "state", Label: "State", Type: core.FieldEnum, Sortable: true, Filterable: true},
			{Name: "zip", Label: "Zip", Type: core.FieldText, Sortable: true, Filterable: true},
		},
		Source: core.NewStaticSource(rows...),
	})
}

func insured(id, typ, name, address, city, state, zip string) core.Row {
	return core.Row{
		"id":      id,
		"type":    typ,
		"name":    name,
		"address": address,
		"city":    city,
		"state":   state,
		"zip":     zip,
	}
}
