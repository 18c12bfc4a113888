package dialect

import (
	"strconv"
	"strings"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

type postgres struct{ base }

func newPostgres() Dialect {
	return postgres{base{product: dbcapabilities.PostgreSQL, name: "postgres"}}
}

// newCockroach returns the PostgreSQL dialect rebadged: CockroachDB speaks
// the same wire SQL for everything this layer touches.
func newCockroach() Dialect {
	return postgres{base{product: dbcapabilities.CockroachDB, name: "cockroach"}}
}

func (d postgres) SessionSettings(readOnly bool) []string {
	settings := []string{
		"SET standard_conforming_strings = on",
		"SET client_min_messages = WARNING",
	}
	if readOnly {
		settings = append(settings, "SET default_transaction_read_only = on")
	}
	return settings
}

// SearchPathStatement quotes every element of the comma-separated path;
// search_path is the one session default here that takes a list.
func (d postgres) SearchPathStatement(path string) string {
	var quoted []string
	for _, part := range strings.Split(path, ",") {
		if part = strings.TrimSpace(part); part != "" {
			quoted = append(quoted, d.QuoteIdentifier(part))
		}
	}
	if len(quoted) == 0 {
		return ""
	}
	return "SET search_path TO " + strings.Join(quoted, ", ")
}

func (postgres) Placeholder(n int) string { return "$" + strconv.Itoa(n) }
