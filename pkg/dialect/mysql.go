package dialect

import (
	"strings"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

type mysql struct{ base }

func newMySQL() Dialect {
	return mysql{base{product: dbcapabilities.MySQL, name: "mysql"}}
}

// newMariaDB returns the MySQL dialect rebadged; the session surface this
// layer uses is identical.
func newMariaDB() Dialect {
	return mysql{base{product: dbcapabilities.MariaDB, name: "mariadb"}}
}

func (d mysql) SessionSettings(readOnly bool) []string {
	// ANSI_QUOTES makes double-quoted identifiers valid alongside the
	// native backticks, so SQL built for other engines keeps working.
	settings := []string{
		"SET SESSION sql_mode = CONCAT(@@sql_mode, ',ANSI_QUOTES')",
	}
	if readOnly {
		settings = append(settings, "SET SESSION TRANSACTION READ ONLY")
	}
	return settings
}

func (mysql) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
