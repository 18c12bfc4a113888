package main

// Engines available in the default build. Each import registers its factory
// with the driver registry as a side effect.
import (
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/clickhouse"
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/duckdb"
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/firebird"
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/hana"
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/mssql"
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/mysql"
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/postgres"
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/snowflake"
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/sqlite"
)
