// Package dbcapabilities provides a shared registry describing the
// connection-policy traits of the database engines this module manages.
// The connection core imports it to detect the product behind a live
// connection or a driver name, to derive topology facts (embedded engines,
// in-memory sharing semantics, lazily started instances), and to validate
// isolation levels per engine.
//
// Minimal usage example:
//
//	import "github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
//
//	func isEmbedded(name string) bool {
//	    id, ok := dbcapabilities.ParseProduct(name)
//	    return ok && dbcapabilities.IsEmbeddedOnly(id)
//	}
//
// Detection matches tokens case-insensitively in the fixed DetectionOrder,
// first match wins:
//
//	product, ok := dbcapabilities.MatchProductName("PostgreSQL 16.3 on x86_64")
//	// product == dbcapabilities.PostgreSQL
//
// Topology is derived once per data source and is immutable afterward:
//
//	topo := dbcapabilities.DeriveTopology(dbcapabilities.SQLite, "file::memory:?cache=shared")
//	// topo.Embedded == true, topo.MemoryKind == dbcapabilities.MemoryShared
//
// The package exposes constants for products (e.g., dbcapabilities.PostgreSQL)
// and a registry `All` for advanced consumers.
package dbcapabilities
