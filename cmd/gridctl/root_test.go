package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestViewFlagsRequest(t *testing.T) {
	tests := []struct {
		name    string
		flags   viewFlags
		wantErr bool
	}{
		{name: "defaults", flags: viewFlags{page: 1}},
		{name: "sorted descending", flags: viewFlags{sort: "city", desc: true, page: 2, size: 10}},
		{name: "filters", flags: viewFlags{page: 1, filters: []string{"city=Austin", "state=TX", "city=Dallas"}}},
		{name: "empty filter text", flags: viewFlags{page: 1, filters: []string{"city="}}},
		{name: "page zero", flags: viewFlags{page: 0}, wantErr: true},
		{name: "filter without column", flags: viewFlags{page: 1, filters: []string{"=x"}}, wantErr: true},
		{name: "filter without equals", flags: viewFlags{page: 1, filters: []string{"city"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.flags.request()
			if tt.wantErr {
				if err == nil {
					t.Errorf("request() = %+v, want error", req)
				}
				return
			}
			if err != nil {
				t.Fatalf("request() error = %v", err)
			}
			if req.Page != tt.flags.page-1 {
				t.Errorf("Page = %d, want %d", req.Page, tt.flags.page-1)
			}
			if tt.flags.desc && req.Dir != "desc" {
				t.Errorf("Dir = %q, want desc", req.Dir)
			}
			if len(tt.flags.filters) == 3 && req.Filters["city"] != "Dallas" {
				t.Errorf("Filters = %v, want the last city to win", req.Filters)
			}
		})
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTablesCommand(t *testing.T) {
	out, err := run(t, "tables")
	if err != nil {
		t.Fatalf("tables: %v", err)
	}
	for _, want := range []string{"KEY", "dealers", "customers"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "dealer_locations") {
		t.Errorf("database tables listed without a database:\n%s", out)
	}
}

func TestPrintCommand(t *testing.T) {
	out, err := run(t, "print", "dealers", "--size", "5")
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out, "page 1 of") {
		t.Errorf("output missing footer:\n%s", out)
	}
}

func TestPrintCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown table", []string{"print", "missing"}, "TBL001"},
		{"page size not offered", []string{"print", "dealers", "--size", "500"}, "Page size is not allowed"},
		{"bad filter flag", []string{"print", "dealers", "--filter", "nope"}, "column=text"},
		{"missing argument", []string{"print"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
