package snowflake

import (
	"strconv"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// Builder edits Snowflake DSNs through gosnowflake's Config type.
type Builder struct {
	cfg *sf.Config
}

func (b *Builder) config() *sf.Config {
	if b.cfg == nil {
		b.cfg = &sf.Config{Params: make(map[string]*string)}
	}
	return b.cfg
}

// Parse loads a DSN in the driver's "user:pass@account/db/schema" form.
func (b *Builder) Parse(dsn string) error {
	cfg, err := sf.ParseDSN(dsn)
	if err != nil {
		return err
	}
	b.cfg = cfg
	return nil
}

// Set adds or replaces a key. Component keys address Config fields;
// anything else becomes a session parameter.
func (b *Builder) Set(key, value string) {
	cfg := b.config()
	switch dbcapabilities.NormalizeKey(key) {
	case "account":
		cfg.Account = value
	case "user":
		cfg.User = value
	case "password":
		cfg.Password = value
	case "host":
		cfg.Host = value
	case "port":
		if p, err := strconv.Atoi(value); err == nil {
			cfg.Port = p
		}
	case "database":
		cfg.Database = value
	case "schema":
		cfg.Schema = value
	case "warehouse":
		cfg.Warehouse = value
	case "role":
		cfg.Role = value
	default:
		if cfg.Params == nil {
			cfg.Params = make(map[string]*string)
		}
		v := value
		cfg.Params[key] = &v
	}
}

// Get returns a component or session parameter by normalized key.
func (b *Builder) Get(key string) (string, bool) {
	cfg := b.config()
	switch dbcapabilities.NormalizeKey(key) {
	case "account":
		return cfg.Account, cfg.Account != ""
	case "user":
		return cfg.User, cfg.User != ""
	case "password":
		return cfg.Password, cfg.Password != ""
	case "host":
		return cfg.Host, cfg.Host != ""
	case "port":
		if cfg.Port == 0 {
			return "", false
		}
		return strconv.Itoa(cfg.Port), true
	case "database":
		return cfg.Database, cfg.Database != ""
	case "schema":
		return cfg.Schema, cfg.Schema != ""
	case "warehouse":
		return cfg.Warehouse, cfg.Warehouse != ""
	case "role":
		return cfg.Role, cfg.Role != ""
	}
	norm := dbcapabilities.NormalizeKey(key)
	for k, v := range cfg.Params {
		if dbcapabilities.NormalizeKey(k) == norm && v != nil {
			return *v, true
		}
	}
	return "", false
}

// String renders the DSN, credentials included. A config the driver cannot
// render (missing account or user) comes back empty.
func (b *Builder) String() string {
	dsn, err := sf.DSN(b.config())
	if err != nil {
		return ""
	}
	return dsn
}

// Redacted renders the DSN with the password and sensitive parameter values
// replaced, for logs.
func (b *Builder) Redacted() string {
	clone := *b.config()
	if clone.Password != "" {
		clone.Password = "*****"
	}
	if len(clone.Params) > 0 {
		params := make(map[string]*string, len(clone.Params))
		for k, v := range clone.Params {
			if v != nil && dbcapabilities.IsSensitiveKey(k) {
				masked := "*****"
				params[k] = &masked
				continue
			}
			params[k] = v
		}
		clone.Params = params
	}
	dsn, err := sf.DSN(&clone)
	if err != nil {
		return ""
	}
	return dsn
}
