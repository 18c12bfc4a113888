package oracle

import (
	"github.com/godror/godror/dsn"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// Builder edits Oracle connection strings through godror's ConnectionParams.
// godror's DSN grammar is closed, so only the keys its parameter model
// carries can be set; anything else is dropped.
type Builder struct {
	params dsn.ConnectionParams
}

// Parse loads a logfmt connection string or the "user/pass@db" shorthand.
func (b *Builder) Parse(connString string) error {
	params, err := dsn.Parse(connString)
	if err != nil {
		return err
	}
	b.params = params
	return nil
}

// Set replaces a known parameter. "database" and "datasource" alias the
// connect string.
func (b *Builder) Set(key, value string) {
	switch dbcapabilities.NormalizeKey(key) {
	case "user":
		b.params.Username = value
	case "password":
		b.params.Password = dsn.NewPassword(value)
	case "database", "datasource", "connectstring":
		b.params.ConnectString = value
	case "libdir":
		b.params.LibDir = value
	case "configdir":
		b.params.ConfigDir = value
	}
}

// Get returns a known parameter by normalized key.
func (b *Builder) Get(key string) (string, bool) {
	switch dbcapabilities.NormalizeKey(key) {
	case "user":
		return b.params.Username, b.params.Username != ""
	case "password":
		secret := b.params.Password.Secret()
		return secret, secret != ""
	case "database", "datasource", "connectstring":
		return b.params.ConnectString, b.params.ConnectString != ""
	case "libdir":
		return b.params.LibDir, b.params.LibDir != ""
	case "configdir":
		return b.params.ConfigDir, b.params.ConfigDir != ""
	}
	return "", false
}

// String renders the logfmt connection string, password included.
func (b *Builder) String() string {
	return b.params.StringWithPassword()
}

// Redacted renders with godror's own password masking.
func (b *Builder) Redacted() string {
	return b.params.String()
}
