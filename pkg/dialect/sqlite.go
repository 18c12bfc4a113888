package dialect

import "github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"

type sqlite struct{ base }

func newSQLite() Dialect {
	return sqlite{base{product: dbcapabilities.SQLite, name: "sqlite"}}
}

func (d sqlite) SessionSettings(readOnly bool) []string {
	settings := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if readOnly {
		settings = append(settings, "PRAGMA query_only = ON")
	}
	return settings
}
