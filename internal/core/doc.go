// Package core clones the FERC Form 1 archive into a relational store and
// serves filtered extracts from it.
//
// # Archive
//
// Each reporting year is a directory holding a FoxPro database container
// (F1_PUB.DBC) and one .DBF data file per table. [Archive] locates them and
// carries the table-to-file map and the field type map.
//
// # Clone
//
// [Service.Clone] drops every table in the store, reconstructs the catalog
// of the reference year, synthesizes the schema from that year's headers,
// and loads every requested year into it:
//
//	result, err := svc.Clone(ctx, core.CloneOptions{})
//	// result.RunID identifies the run in the logs
//
// # Extract
//
// Extract definitions are registered at init time using [Register], one per
// downstream table, and pair a cloned table with a quality predicate:
//
//	core.Register(core.TableDefinition{
//	    Key:    "fuel_ferc1",
//	    Source: "f1_fuel",
//	    Filter: store.And{store.C("fuel_quantity", store.OpGt, 0)},
//	})
//
// [Service.Extract] validates the requested tables and years, then selects
// the rows passing the predicate, the year restriction and the bad
// respondent exclusion.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]; see
// error_messages.go for the code reference.
package core
