package tables

import (
	"sort"
	"strings"

	"github.com/JonMunkholm/gridview/internal/core"
)

// Privileges grantable to a user, in display order.
var privileges = []string{"Read", "Write", "Admin", "Delete"}

func init() {
	registerUserPrivileges()
}

func registerUserPrivileges() {
	grants := map[string][]string{
		"John Doe":     {"Read", "Admin"},
		"Jane Smith":   {"Write"},
		"Priya Raman":  {"Read", "Write"},
		"Marcus Lee":   {"Read", "Write", "Delete"},
		"Elena Garcia": {},
	}

	users := make([]string, 0, len(grants))
	for u := range grants {
		users = append(users, u)
	}
	sort.Strings(users)

	rows := make([]core.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, privilegeRow(u, grants[u]))
	}

	fields := []core.FieldSpec{
		{Name: "user", Label: "User", Type: core.FieldText, Sortable: true, Filterable: true, MinWidth: 14},
		{Name: "privileges", Label: "Privileges", Type: core.FieldText, Filterable: true, MinWidth: 20},
		{Name: "privilege_count", Label: "Count", Type: core.FieldNumeric, Sortable: true},
	}
	for _, p := range privileges {
		fields = append(fields, core.FieldSpec{
			Name:       strings.ToLower(p),
			Label:      p,
			Type:       core.FieldBool,
			Sortable:   true,
			Filterable: true,
		})
	}

	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         "user_privileges",
			Group:       "Access",
			Label:       "User Privileges",
			Description: "Privileges granted to each user",
		},
		Fields: fields,
		Source: core.NewStaticSource(rows...),
	})
}

// privilegeRow flattens a user's grants into one boolean column per privilege.
func privilegeRow(user string, granted []string) core.Row {
	row := core.Row{
		"user":            user,
		"privileges":      strings.Join(granted, ", "),
		"privilege_count": len(granted),
	}
	for _, p := range privileges {
		row[strings.ToLower(p)] = false
	}
	for _, g := range granted {
		row[strings.ToLower(g)] = true
	}
	return row
}
