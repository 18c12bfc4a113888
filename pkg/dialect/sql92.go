package dialect

import "github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"

type sql92 struct{ base }

// NewSQL92 returns the generic fallback dialect: ANSI quoting, '?'
// placeholders, no session settings. It needs no live connection, so it is
// always constructible, and it backs every engine detection cannot name.
func NewSQL92() Dialect {
	return sql92{base{product: dbcapabilities.Unknown, name: "sql92"}}
}
