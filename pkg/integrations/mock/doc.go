// Package mock provides an in-process lineage source backed by a TOML
// catalog.
//
// The mock answers FetchLineage exactly like the REST backend would: a
// breadth-first walk from the requested entity honoring direction and
// depth, encoded as either payload shape. Unknown entities fail with
// NOT_FOUND. An embedded demo catalog (a small retail-banking estate) is
// used unless another one is supplied:
//
//	cat, err := mock.LoadCatalog("catalog.toml")
//	src, err := mock.New(mock.Options{Catalog: cat, Shape: normalize.ShapeLegacy})
//
// Catalog format:
//
//	[[entities]]
//	id = "tbl_customers"
//	name = "customers"
//	type = "table"
//	columns = [{ name = "customer_id", data_type = "bigint" }]
//
//	[[relationships]]
//	id = "rel_1"
//	source = "src_crm_contacts"
//	target = "tbl_customers"
//	type = "transformation"
package mock
