package dialect

import (
	"strconv"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

type oracle struct{ base }

func newOracle() Dialect {
	return oracle{base{product: dbcapabilities.Oracle, name: "oracle"}}
}

func (d oracle) SessionSettings(readOnly bool) []string {
	// Pin the session formats so date/timestamp text round-trips the same
	// way regardless of server NLS defaults.
	return []string{
		"ALTER SESSION SET NLS_DATE_FORMAT = 'YYYY-MM-DD HH24:MI:SS'",
		"ALTER SESSION SET NLS_TIMESTAMP_FORMAT = 'YYYY-MM-DD HH24:MI:SS.FF'",
	}
}

func (d oracle) SearchPathStatement(path string) string {
	schema := firstPathElement(path)
	if schema == "" {
		return ""
	}
	return "ALTER SESSION SET CURRENT_SCHEMA = " + d.QuoteIdentifier(schema)
}

func (oracle) Placeholder(n int) string { return ":" + strconv.Itoa(n) }
