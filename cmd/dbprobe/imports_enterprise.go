//go:build enterprise

package main

// Engines whose drivers link against vendor client libraries (Oracle instant
// client, IBM Db2 CLI). Built only with the enterprise tag.
import (
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/db2"
	_ "github.com/pengdows/pengdows.crud-sub014/pkg/drivers/oracle"
)
