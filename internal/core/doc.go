// Package core serves sorted, filtered and paginated views of registered tables.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web server, the gridctl CLI and the terminal browser all use it
// unchanged.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Table Definitions: Registered via the registry, each table has field
//     specs and a [Source] that loads its rows.
//   - Service: The main entry point for all operations (list, query, sessions, export).
//   - Sessions: Long-lived views whose sort, filter and page state lives on
//     the server, one [view.Engine] per session.
//   - Record Cache: Loaded rows are kept for a TTL and shared read-only by
//     every view of the table.
//
// # Table Registry
//
// Tables are registered at init time using [Register]. Each [TableDefinition]
// contains everything needed to serve one table:
//
//	core.Register(core.TableDefinition{
//	    Info: core.TableInfo{Key: "customers", Group: "Accounts", Label: "Customers"},
//	    Fields: []core.FieldSpec{
//	        {Name: "name", Type: core.FieldText, Sortable: true, Filterable: true},
//	        {Name: "balance", Type: core.FieldNumeric, Sortable: true, Render: core.Currency},
//	    },
//	    Source: core.NewStaticSource(rows...),
//	})
//
// # Views
//
// Every view runs the same pipeline: rows are sorted by at most one column,
// filtered by case-insensitive substring per column, then paginated.
// [Service.QueryView] computes a view from a [ViewRequest] alone;
// [Service.OpenSession] keeps the state so later calls only send the change:
//
//	res, _ := svc.OpenSession(ctx, "dealers", core.ViewRequest{PageSize: 10})
//	res, _ = svc.SortSession(ctx, res.SessionID, "dealer_name")
//	res, _ = svc.FilterSession(ctx, res.SessionID, "dealer_name", "motors")
//
// When a filter change shrinks the result below the current page, the page
// is pulled back to the last one that exists.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VIEW001-VIEW004: Table configuration errors
//   - SORT001-SORT002, FILT001, PAGE001-PAGE002: Invalid view requests
//   - SES001-SES002: Session errors (expired, limit reached)
//   - TBL001-TBL002: Table errors (not found, source unavailable)
//   - DB004-DB006: Database errors (connections, timeouts)
//
// # Thread Safety
//
// The Service is safe for concurrent use. The session map is protected by
// a RWMutex and each session serialises its own requests.
package core
