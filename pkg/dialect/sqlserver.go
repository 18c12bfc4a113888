package dialect

import (
	"context"
	"strconv"
	"strings"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

type sqlserver struct{ base }

func newSQLServer() Dialect {
	return sqlserver{base{product: dbcapabilities.SQLServer, name: "sqlserver"}}
}

func (d sqlserver) SessionSettings(readOnly bool) []string {
	return []string{
		"SET NOCOUNT ON",
		"SET ANSI_NULLS ON",
		"SET ANSI_PADDING ON",
		"SET ANSI_WARNINGS ON",
		"SET ARITHABORT ON",
		"SET CONCAT_NULL_YIELDS_NULL ON",
		"SET QUOTED_IDENTIFIER ON",
		"SET NUMERIC_ROUNDABORT OFF",
	}
}

func (sqlserver) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (sqlserver) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

// IsReadCommittedSnapshotOn probes the current database's RCSI flag. Errors
// read as false: the caller only uses this to pick transaction defaults.
func (sqlserver) IsReadCommittedSnapshotOn(ctx context.Context, q Querier) bool {
	var on bool
	err := q.QueryRowContext(ctx,
		"SELECT is_read_committed_snapshot_on FROM sys.databases WHERE name = DB_NAME()",
	).Scan(&on)
	return err == nil && on
}
