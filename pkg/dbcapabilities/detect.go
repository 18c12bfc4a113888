package dbcapabilities

import (
	"context"
	"database/sql"
	"strings"
)

// DetectionOrder fixes the order in which product token tables are consulted.
// First match wins, so products whose tokens are substrings of another
// product's metadata come first: CockroachDB reports a version string of its
// own but is wire-compatible with PostgreSQL drivers, and MariaDB version
// strings may mention MySQL. Callers must not rely on any ordering among
// tokens of the same product.
var DetectionOrder = []Product{
	CockroachDB,
	MariaDB,
	PostgreSQL,
	MySQL,
	SQLServer,
	SQLite,
	DuckDB,
	Firebird,
	Oracle,
	ClickHouse,
	Snowflake,
	HANA,
	DB2,
}

// VersionProbes are cheap statements tried in order against a live
// connection to obtain a product-name string. Engines that do not implement
// a probe fail it; failures are expected and swallowed by the caller. The
// result of the first probe whose output matches a metadata token decides
// the product; unmatched probe output is still useful as version metadata.
var VersionProbes = []string{
	"SELECT version()",
	"SELECT @@VERSION",
	"SELECT @@version_comment",
	"SELECT banner FROM v$version WHERE ROWNUM = 1",
	"SELECT VERSION FROM SYS.M_DATABASE",
	"SELECT sqlite_version()",
}

// RowQuerier is the single-row query surface ProbeProduct needs. *sql.DB,
// *sql.Conn, and *sql.Tx all satisfy it.
type RowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ProbeProduct runs the version probes against a live connection and matches
// the output against the metadata token tables. It returns the detected
// product, the raw string returned by the first probe that succeeded, and
// whether any probe output matched a token. Probes keep running past
// successful-but-unmatched output: a bare version number identifies nothing,
// while a later probe may name the product outright. The raw string from the
// first success is kept as version metadata either way.
func ProbeProduct(ctx context.Context, q RowQuerier) (Product, string, bool) {
	var firstRaw string
	for _, probe := range VersionProbes {
		var raw string
		if err := q.QueryRowContext(ctx, probe).Scan(&raw); err != nil {
			continue
		}
		if firstRaw == "" {
			firstRaw = raw
		}
		if p, ok := MatchProductName(raw); ok {
			return p, firstRaw, true
		}
	}
	return Unknown, firstRaw, false
}

// MatchProductName matches server metadata (a version or product-name
// string) against the metadata token tables, case-insensitively, in
// DetectionOrder. Returns Unknown and false when nothing matches.
func MatchProductName(metadata string) (Product, bool) {
	return matchTokens(metadata, func(c Capability) []string { return c.MetadataTokens })
}

// MatchDriverName matches a driver or factory name against the driver token
// tables, case-insensitively, in DetectionOrder. Returns Unknown and false
// when nothing matches.
func MatchDriverName(name string) (Product, bool) {
	return matchTokens(name, func(c Capability) []string { return c.DriverTokens })
}

func matchTokens(input string, tokens func(Capability) []string) (Product, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return Unknown, false
	}
	for _, id := range DetectionOrder {
		cap, ok := Get(id)
		if !ok {
			continue
		}
		for _, tok := range tokens(cap) {
			if tok != "" && strings.Contains(s, tok) {
				return id, true
			}
		}
	}
	return Unknown, false
}
